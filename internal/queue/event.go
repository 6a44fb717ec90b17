// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for invoice lifecycle events.
const (
	InvoiceCreatedQueue = "invoice.created"
	InvoiceDeletedQueue = "invoice.deleted"
)

// Sources of an invoice.created event.
const (
	SourceManual    = "manual"
	SourceExtracted = "extracted"
)

// InvoiceCreatedEvent is published after an invoice has been persisted,
// whether entered by hand or extracted from an image. It carries enough
// information for downstream consumers to log or run analytics without
// querying the primary database.
type InvoiceCreatedEvent struct {
	InvoiceID    uint64  `json:"invoice_id"`
	UserID       uint64  `json:"user_id"`
	Place        string  `json:"place"`
	Date         string  `json:"date"`
	Total        float64 `json:"total"`
	ProductCount int     `json:"product_count"`
	Source       string  `json:"source"`
	CreatedAt    string  `json:"created_at"`
}

// InvoiceDeletedEvent is published after an invoice and its products have
// been removed. ImageKey is the object-storage key whose best-effort
// deletion was attempted, empty when the invoice had no stored image.
type InvoiceDeletedEvent struct {
	InvoiceID uint64 `json:"invoice_id"`
	UserID    uint64 `json:"user_id"`
	ImageKey  string `json:"image_key,omitempty"`
	DeletedAt string `json:"deleted_at"`
}
