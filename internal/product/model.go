package product

import "time"

type Image struct {
	URL string `json:"url"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Price as string to avoid rounding errors (NUMERIC in Postgres).
	Price          string            `json:"price"`
	Stock          int               `json:"stock"`
	SalesCount     int               `json:"sales_count"`
	CategoryID     string            `json:"category_id,omitempty"`
	Images         []Image           `json:"images"`
	Specifications map[string]string `json:"specifications,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// PrimaryImage is what gets frozen into an order-item snapshot.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string    `json:"q,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name           string            `json:"name"        example:"Desk Figurine"`
	Description    string            `json:"description" example:"Hand painted, 12cm"`
	Price          string            `json:"price"       example:"199.90"`
	Stock          int               `json:"stock"       example:"10"`
	CategoryID     string            `json:"category_id"`
	Images         []Image           `json:"images"`
	Specifications map[string]string `json:"specifications"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          string            `json:"price"`
	Stock          *int              `json:"stock"`
	CategoryID     string            `json:"category_id"`
	Images         []Image           `json:"images"`
	Specifications map[string]string `json:"specifications"`
}
