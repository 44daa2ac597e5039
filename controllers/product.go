package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"storefront/models"
	"storefront/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Catalog is the product service used by the HTTP layer.
type Catalog interface {
	Add(ctx context.Context, in models.ProductInput) (models.Product, error)
	List(ctx context.Context, opts services.ListOptions) (models.ProductPage, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error)
	Remove(ctx context.Context, id string) error
}

// ProductController handles product-related requests
type ProductController struct {
	Catalog Catalog
	Carts   Carts
	logger  *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(catalog Catalog, carts Carts, logger *zap.Logger) *ProductController {
	return &ProductController{
		Catalog: catalog,
		Carts:   carts,
		logger:  logger.Named("products"),
	}
}

type productListResponse struct {
	Status      string           `json:"status"`
	Payload     []models.Product `json:"payload"`
	TotalPages  int              `json:"totalPages"`
	PrevPage    *int             `json:"prevPage"`
	NextPage    *int             `json:"nextPage"`
	Page        int              `json:"page"`
	HasPrevPage bool             `json:"hasPrevPage"`
	HasNextPage bool             `json:"hasNextPage"`
	PrevLink    *string          `json:"prevLink"`
	NextLink    *string          `json:"nextLink"`
}

// ListOptionsFromQuery reads limit, page, sort and query from the URL.
// Sort defaults to defaultSort when absent. Range checks are left to the
// catalog service.
func ListOptionsFromQuery(values url.Values, defaultLimit int, defaultSort string) (services.ListOptions, error) {
	opts := services.ListOptions{
		Limit: defaultLimit,
		Page:  services.DefaultPage,
		Sort:  values.Get("sort"),
		Query: values.Get("query"),
	}
	if opts.Sort == "" {
		opts.Sort = defaultSort
	}

	var err error
	if v := values.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil {
			return opts, errInvalidParam("limit")
		}
	}
	if v := values.Get("page"); v != "" {
		if opts.Page, err = strconv.Atoi(v); err != nil {
			return opts, errInvalidParam("page")
		}
	}
	return opts, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e) + " parameter"
}

// ProductsLink formats a page link of the products API.
func ProductsLink(link *models.PageLink) *string {
	if link == nil {
		return nil
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(link.Limit))
	values.Set("page", strconv.Itoa(link.Page))
	values.Set("sort", link.Sort)
	values.Set("query", link.Query)
	s := "/api/products?" + values.Encode()
	return &s
}

// GetProducts lists products with pagination, sorting and filtering
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	opts, err := ListOptionsFromQuery(r.URL.Query(), services.DefaultLimit, services.SortAsc)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page, err := pc.Catalog.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}

	if page.Docs == nil {
		page.Docs = []models.Product{}
	}
	writeJSON(w, http.StatusOK, productListResponse{
		Status:      "success",
		Payload:     page.Docs,
		TotalPages:  page.TotalPages,
		PrevPage:    page.PrevPage,
		NextPage:    page.NextPage,
		Page:        page.Page,
		HasPrevPage: page.HasPrevPage,
		HasNextPage: page.HasNextPage,
		PrevLink:    ProductsLink(page.PrevLink),
		NextLink:    ProductsLink(page.NextLink),
	})
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Catalog.GetByID(r.Context(), mux.Vars(r)["pid"])
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "Invalid input")
		return
	}

	product, err := pc.Catalog.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct applies a partial update to a product
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "Invalid input")
		return
	}

	product, err := pc.Catalog.Update(r.Context(), mux.Vars(r)["pid"], patch)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.Catalog.Remove(r.Context(), mux.Vars(r)["pid"]); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

// AddProductToCart adds one unit of a product to a cart, both named in the body
func (pc *ProductController) AddProductToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		CartID    string `json:"cartId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid input")
		return
	}
	if req.ProductID == "" || req.CartID == "" {
		writeBadRequest(w, "Product ID and Cart ID are required")
		return
	}

	if _, err := pc.Carts.AddProduct(r.Context(), req.CartID, req.ProductID); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product added to cart"})
}
