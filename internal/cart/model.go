package cart

import (
	"time"

	"github.com/ecomkit/storefront/internal/product"
)

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is a cart item joined with its live product, priced at read time.
type Line struct {
	ID       string          `json:"id"`
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal string          `json:"subtotal"`
}

// View is the whole cart as the storefront renders it.
// swagger:model CartView
type View struct {
	Items      []Line `json:"items"`
	Total      string `json:"total"`
	TotalItems int    `json:"total_items"`
}

// AddRequest payload for adding to the cart.
// swagger:model AddToCartRequest
type AddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" example:"1"`
}

// UpdateRequest payload for changing a line's quantity.
// swagger:model UpdateCartItemRequest
type UpdateRequest struct {
	Quantity int `json:"quantity" example:"2"`
}
