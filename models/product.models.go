package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents an item of the catalog
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Img         string             `bson:"img,omitempty" json:"img,omitempty"`
	Code        string             `bson:"code" json:"code"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	Status      bool               `bson:"status" json:"status"`
	Thumbnails  []string           `bson:"thumbnails" json:"thumbnails"`
}

// ProductInput carries the fields accepted when a product is created.
// Price and Stock are pointers so that a missing value can be told apart from zero.
type ProductInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Img         string   `json:"img,omitempty"`
	Code        string   `json:"code" validate:"required"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Thumbnails  []string `json:"thumbnails,omitempty"`
}

// ProductPatch holds a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Img         *string   `json:"img,omitempty"`
	Code        *string   `json:"code,omitempty" validate:"omitempty,min=1"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,min=1"`
	Status      *bool     `json:"status,omitempty"`
	Thumbnails  *[]string `json:"thumbnails,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Img == nil &&
		p.Code == nil && p.Stock == nil && p.Category == nil && p.Status == nil && p.Thumbnails == nil
}

// ProductRef is the read-only projection of a product joined into a cart.
type ProductRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Price float64            `bson:"price" json:"price"`
}
