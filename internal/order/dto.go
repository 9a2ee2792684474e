package order

import "time"

// CreateOrderItem is one requested line item.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// CreateOrderRequest payload for order creation. user_id comes from the
// session when present; guests supply contact info instead.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items"`
	ShippingAddress Address           `json:"shipping_address"`
	ContactInfo     Contact           `json:"contact_info"`
	PaymentMethod   string            `json:"payment_method"`
	Notes           string            `json:"notes"`
}

// Summary is what order creation returns to the storefront.
// swagger:model OrderSummary
type Summary struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      Status    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
