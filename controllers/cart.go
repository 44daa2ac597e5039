package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Carts is the cart service used by the HTTP layer.
type Carts interface {
	Create(ctx context.Context) (models.CartDetails, error)
	GetByID(ctx context.Context, id string) (models.CartDetails, error)
	AddProduct(ctx context.Context, cartID, productID string) (models.CartDetails, error)
	UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (models.CartDetails, error)
	RemoveItem(ctx context.Context, cartID, productID string) (models.CartDetails, error)
	ReplaceContents(ctx context.Context, cartID string, entries []models.CartItemInput) (models.CartDetails, error)
	Empty(ctx context.Context, cartID string) (models.CartDetails, error)
	ListAll(ctx context.Context) ([]models.CartDetails, error)
}

// CartController handles cart-related requests
type CartController struct {
	Carts  Carts
	logger *zap.Logger
}

// NewCartController creates a new CartController
func NewCartController(carts Carts, logger *zap.Logger) *CartController {
	return &CartController{
		Carts:  carts,
		logger: logger.Named("carts"),
	}
}

// GetCarts lists every cart with its products and total quantity
func (cc *CartController) GetCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := cc.Carts.ListAll(r.Context())
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// CreateCart creates an empty cart
func (cc *CartController) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.Create(r.Context())
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

// GetCart retrieves a cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.GetByID(r.Context(), mux.Vars(r)["cid"])
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddToCart adds one unit of a product to the cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cart, err := cc.Carts.AddProduct(r.Context(), vars["cid"], vars["pid"])
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// UpdateQuantity sets the quantity of a product already in the cart
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid quantity")
		return
	}

	vars := mux.Vars(r)
	cart, err := cc.Carts.UpdateQuantity(r.Context(), vars["cid"], vars["pid"], req.Quantity)
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a product from the cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cart, err := cc.Carts.RemoveItem(r.Context(), vars["cid"], vars["pid"])
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// ReplaceCart replaces the whole product list of the cart
func (cc *CartController) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Products []models.CartItemInput `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid input")
		return
	}

	cart, err := cc.Carts.ReplaceContents(r.Context(), mux.Vars(r)["cid"], req.Products)
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// EmptyCart removes every product from the cart
func (cc *CartController) EmptyCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.Empty(r.Context(), mux.Vars(r)["cid"])
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
