// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios and map them onto
// specific HTTP statuses instead of collapsing everything into a 500.
package repository

import "errors"

// ErrInvoiceNotFound is returned when an invoice id does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrEmailExists is returned when registering an email address that is
// already taken. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
