// Package store is the document store adapter for products and carts.
package store

import (
	"context"
	"errors"
	"strings"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names
const (
	ProductsCollection = "products"
	CartsCollection    = "carts"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// SortOrder orders products by price.
type SortOrder int

const (
	SortNone SortOrder = 0
	SortAsc  SortOrder = 1
	SortDesc SortOrder = -1
)

// ProductQuery selects a window of products.
//
// Search matches the category as a case-insensitive substring. The literal
// "available" additionally matches every product whose status is true.
// A zero Limit means no limit.
type ProductQuery struct {
	Search string
	Sort   SortOrder
	Skip   int64
	Limit  int64
}

// ProductStore is the typed access to the products collection.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductRef, error)
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Count(ctx context.Context, q ProductQuery) (int64, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// CartStore is the typed access to the carts collection.
//
// IncrementItem and AppendItem are conditional single-document writes; the
// boolean result reports whether the condition matched.
type CartStore interface {
	Insert(ctx context.Context, c *models.Cart) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Cart, error)
	FindAll(ctx context.Context) ([]models.Cart, error)
	IncrementItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error)
	AppendItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error)
	SetItemQuantity(ctx context.Context, cartID, productID primitive.ObjectID, quantity int) (models.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID primitive.ObjectID) (models.Cart, error)
	SetItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error)
}

func matchesAvailable(search string) bool {
	return strings.EqualFold(strings.TrimSpace(search), "available")
}
