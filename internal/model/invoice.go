package model

import "time"

// Invoice is a purchase record owned by one user. ImageKey is the S3 object
// key of the uploaded picture, kept so the object can be removed when the
// invoice is deleted; it is nil for manually entered invoices without an
// image. Products are loaded by the repository whenever an invoice is read.
//
// The total is stored as supplied on creation and only recomputed from the
// product list when the invoice is edited.
type Invoice struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	ImageKey  *string   `json:"image_key,omitempty"`
	Total     float64   `json:"total"`
	Date      time.Time `json:"date"`
	Place     string    `json:"place"`
	Products  []Product `json:"products"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is one line item of an invoice. Quantity and Price are floats so
// weighed goods (0.5 kg) survive extraction unchanged.
type Product struct {
	ID        uint64  `json:"id"`
	InvoiceID uint64  `json:"invoice_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}
