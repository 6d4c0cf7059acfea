package domain

import "errors"

// ErrProductNotFound is returned when the catalog has no product with the requested id.
var ErrProductNotFound = errors.New("product not found")

// Product is a catalog record as served by the product API.
type Product struct {
	ID          int64   `json:"id"          yaml:"id"`
	Title       string  `json:"title"       yaml:"title"`
	Price       float64 `json:"price"       yaml:"price"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category"    yaml:"category"`
	Image       string  `json:"image"       yaml:"image"`
}
