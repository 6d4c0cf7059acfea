package domain

import "errors"

var (
	// ErrLineNotFound is returned when no cart line exists for the product.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
)

// CartLine is the single aggregated entry for one product in the cart.
// Quantity is always at least 1.
type CartLine struct {
	ProductID int64   `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// NewCartLine starts a line for the product with quantity 1.
func NewCartLine(product Product) CartLine {
	return CartLine{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
}

// Subtotal returns price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
