package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/models"
	"storefront/services"
	"storefront/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	products := store.NewMemoryProductStore()
	catalog := services.NewCatalogService(products, nil, nil)
	carts := services.NewCartService(store.NewMemoryCartStore(), products, nil)

	pc := NewProductController(catalog, carts, zap.NewNop())
	cc := NewCartController(carts, zap.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/products", pc.GetProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products", pc.CreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products/addProduct", pc.AddProductToCart).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{pid}", pc.GetProductByID).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{pid}", pc.UpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/api/products/{pid}", pc.DeleteProduct).Methods(http.MethodDelete)
	r.HandleFunc("/api/carts", cc.GetCarts).Methods(http.MethodGet)
	r.HandleFunc("/api/carts", cc.CreateCart).Methods(http.MethodPost)
	r.HandleFunc("/api/carts/{cid}", cc.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/carts/{cid}", cc.ReplaceCart).Methods(http.MethodPut)
	r.HandleFunc("/api/carts/{cid}", cc.EmptyCart).Methods(http.MethodDelete)
	r.HandleFunc("/api/carts/{cid}/product/{pid}", cc.AddToCart).Methods(http.MethodPost)
	r.HandleFunc("/api/carts/{cid}/product/{pid}", cc.UpdateQuantity).Methods(http.MethodPut)
	r.HandleFunc("/api/carts/{cid}/product/{pid}", cc.RemoveFromCart).Methods(http.MethodDelete)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func productBody(code string, price float64) map[string]any {
	return map[string]any{
		"title":       "Product " + code,
		"description": "A product",
		"price":       price,
		"code":        code,
		"stock":       10,
		"category":    "tools",
	}
}

func createProduct(t *testing.T, h http.Handler, code string, price float64) models.Product {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/products", productBody(code, price))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Product](t, rec)
}

func createCart(t *testing.T, h http.Handler) models.CartDetails {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/carts", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.CartDetails](t, rec)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"store", services.ErrStore, http.StatusInternalServerError},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
	assert.Equal(t, "Internal server error", PublicMessage(services.ErrStore))
}

func TestCreateProduct(t *testing.T) {
	r := newTestRouter(t)

	p := createProduct(t, r, "A1", 12.5)
	assert.False(t, p.ID.IsZero())
	assert.True(t, p.Status)
	assert.Empty(t, p.Thumbnails)

	rec := do(t, r, http.MethodPost, "/api/products", productBody("A1", 3))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode[errorResponse](t, rec).Status)

	body := productBody("B1", 3)
	delete(body, "title")
	rec = do(t, r, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProducts(t *testing.T) {
	r := newTestRouter(t)
	for i, price := range []float64{30, 10, 20} {
		createProduct(t, r, string(rune('a'+i)), price)
	}

	rec := do(t, r, http.MethodGet, "/api/products?limit=2&page=1&sort=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[productListResponse](t, rec)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Payload, 2)
	assert.Equal(t, 10.0, resp.Payload[0].Price)
	assert.Equal(t, 20.0, resp.Payload[1].Price)
	assert.Equal(t, 2, resp.TotalPages)
	assert.True(t, resp.HasNextPage)
	assert.False(t, resp.HasPrevPage)
	assert.Nil(t, resp.PrevLink)
	require.NotNil(t, resp.NextLink)
	assert.Equal(t, "/api/products?limit=2&page=2&query=&sort=asc", *resp.NextLink)

	rec = do(t, r, http.MethodGet, "/api/products?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/products?page=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductsEmptyPayload(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payload":[]`)
}

func TestProductByIDLifecycle(t *testing.T) {
	r := newTestRouter(t)
	p := createProduct(t, r, "A1", 5)
	path := "/api/products/" + p.ID.Hex()

	rec := do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A1", decode[models.Product](t, rec).Code)

	rec = do(t, r, http.MethodPut, path, map[string]any{"price": 7.5})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Product](t, rec)
	assert.Equal(t, 7.5, updated.Price)
	assert.Equal(t, "A1", updated.Code)

	rec = do(t, r, http.MethodPut, path, map[string]any{"price": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", decode[messageResponse](t, rec).Message)

	rec = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/products/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddProductToCartByBody(t *testing.T) {
	r := newTestRouter(t)
	p := createProduct(t, r, "A1", 5)
	c := createCart(t, r)

	rec := do(t, r, http.MethodPost, "/api/products/addProduct", map[string]string{
		"productId": p.ID.Hex(),
		"cartId":    c.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/carts/"+c.ID, nil)
	cart := decode[models.CartDetails](t, rec)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 1, cart.Products[0].Quantity)

	rec = do(t, r, http.MethodPost, "/api/products/addProduct", map[string]string{"cartId": c.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	r := newTestRouter(t)
	a := createProduct(t, r, "A1", 2.5)
	b := createProduct(t, r, "B1", 4)
	c := createCart(t, r)
	assert.Empty(t, c.Products)
	itemPath := "/api/carts/" + c.ID + "/product/" + a.ID.Hex()

	do(t, r, http.MethodPost, itemPath, nil)
	rec := do(t, r, http.MethodPost, itemPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[models.CartDetails](t, rec)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 2, cart.Products[0].Quantity)
	assert.Equal(t, 5.0, cart.TotalPrice)

	rec = do(t, r, http.MethodPut, itemPath, map[string]int{"quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[models.CartDetails](t, rec).TotalQuantity)

	rec = do(t, r, http.MethodPut, itemPath, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/carts/"+c.ID, map[string]any{
		"products": []map[string]any{{"product": b.ID.Hex(), "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decode[models.CartDetails](t, rec)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, b.ID.Hex(), cart.Products[0].ID)
	assert.Equal(t, 12.0, cart.TotalPrice)

	rec = do(t, r, http.MethodDelete, "/api/carts/"+c.ID+"/product/"+b.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CartDetails](t, rec).Products)

	do(t, r, http.MethodPost, itemPath, nil)
	rec = do(t, r, http.MethodDelete, "/api/carts/"+c.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CartDetails](t, rec).Products)

	rec = do(t, r, http.MethodGet, "/api/carts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.CartDetails](t, rec), 1)
}

func TestCartEndpointsNotFound(t *testing.T) {
	r := newTestRouter(t)
	p := createProduct(t, r, "A1", 1)
	missing := "0123456789abcdef01234567"

	rec := do(t, r, http.MethodGet, "/api/carts/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/carts/"+missing+"/product/"+p.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c := createCart(t, r)
	rec = do(t, r, http.MethodPost, "/api/carts/"+c.ID+"/product/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decode[errorResponse](t, rec).Status)
}
