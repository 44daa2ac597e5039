package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one entry of a cart. ProductID is a weak reference to a Product.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart represents a shopping cart
type Cart struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Products []CartItem         `bson:"products" json:"products"`
}

// CartItemInput is an entry supplied by a client when replacing a cart's contents.
type CartItemInput struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// CartLine is a cart entry with its product resolved.
type CartLine struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartDetails is the populated view of a cart returned by every cart read.
type CartDetails struct {
	ID            string     `json:"id"`
	Products      []CartLine `json:"products"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    float64    `json:"totalPrice"`
}
