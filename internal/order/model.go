package order

import "time"

type Address struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
	Detail   string `json:"detail"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Snapshot freezes mutable product data at order-creation time so historical
// orders survive product edits and deletion.
type Snapshot struct {
	Name           string            `json:"name"`
	Image          string            `json:"image"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id,omitempty"`
	GuestEmail  string `json:"guest_email,omitempty"`
	Status      Status `json:"status"`
	// NUMERIC -> string
	TotalAmount     string     `json:"total_amount"`
	ShippingAddress Address    `json:"shipping_address"`
	ContactInfo     Contact    `json:"contact_info"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentStatus   string     `json:"payment_status"`
	TrackingNumber  string     `json:"tracking_number,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// Item is immutable once created.
type Item struct {
	ID        string   `json:"id"`
	OrderID   string   `json:"order_id"`
	ProductID string   `json:"product_id"`
	Snapshot  Snapshot `json:"product_snapshot"`
	Quantity  int      `json:"quantity"`
	Price     string   `json:"price"`
	Subtotal  string   `json:"subtotal"`
}
