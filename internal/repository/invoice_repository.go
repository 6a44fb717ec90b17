package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/invoice-archive/internal/model"
)

// ProductInput is a line item as submitted by a client or extracted from an
// image, before it has a database identity.
type ProductInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

// Create persists an invoice and its products in a single transaction. The
// supplied total is stored as-is: the creation path never recomputes it
// from the product list. Only the edit path (Replace) does.
func (r *InvoiceRepo) Create(ctx context.Context, userID uint64, imageURL string, imageKey *string, total float64, date time.Time, place string, products []ProductInput) (model.Invoice, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Invoice{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO invoices (user_id, image_url, image_key, total, date, place) VALUES (?,?,?,?,?,?)",
		userID, imageURL, imageKey, total, date, place)
	if err != nil {
		return model.Invoice{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Invoice{}, err
	}

	items, err := insertProducts(ctx, tx, uint64(id), products)
	if err != nil {
		return model.Invoice{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Invoice{}, err
	}
	return model.Invoice{
		ID:       uint64(id),
		UserID:   userID,
		ImageURL: imageURL,
		ImageKey: imageKey,
		Total:    total,
		Date:     date,
		Place:    place,
		Products: items,
	}, nil
}

// ListByUser returns all invoices belonging to a user, products populated.
func (r *InvoiceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Invoice, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,image_url,image_key,total,date,place,created_at,updated_at FROM invoices WHERE user_id=? ORDER BY id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Invoice{}
	for rows.Next() {
		var inv model.Invoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.loadProducts(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Products = items
	}
	return out, nil
}

// GetByID returns a single invoice with its products or ErrInvoiceNotFound.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (model.Invoice, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,image_url,image_key,total,date,place,created_at,updated_at FROM invoices WHERE id=? LIMIT 1",
		id)
	var inv model.Invoice
	if err := scanInvoice(row, &inv); err != nil {
		if err == sql.ErrNoRows {
			return model.Invoice{}, ErrInvoiceNotFound
		}
		return model.Invoice{}, err
	}
	items, err := r.loadProducts(ctx, id)
	if err != nil {
		return model.Invoice{}, err
	}
	inv.Products = items
	return inv, nil
}

// Replace swaps the full product list of an invoice and updates date and
// place in one transaction. The stored total becomes the sum of
// quantity×price over the new products, whatever total the invoice carried
// before. Validation of the product list happens at the handler boundary.
func (r *InvoiceRepo) Replace(ctx context.Context, id uint64, date time.Time, place string, products []ProductInput) (model.Invoice, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Invoice{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var inv model.Invoice
	err = tx.QueryRowContext(ctx,
		"SELECT id,user_id,image_url,image_key FROM invoices WHERE id=? LIMIT 1",
		id).Scan(&inv.ID, &inv.UserID, &inv.ImageURL, &inv.ImageKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Invoice{}, ErrInvoiceNotFound
		}
		return model.Invoice{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE invoice_id=?", id); err != nil {
		return model.Invoice{}, err
	}

	total := 0.0
	for _, p := range products {
		total += p.Quantity * p.Price
	}

	items, err := insertProducts(ctx, tx, id, products)
	if err != nil {
		return model.Invoice{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE invoices SET date=?, place=?, total=? WHERE id=?",
		date, place, total, id); err != nil {
		return model.Invoice{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Invoice{}, err
	}
	inv.Date = date
	inv.Place = place
	inv.Total = total
	inv.Products = items
	return inv, nil
}

// Delete removes an invoice and its products in one transaction and hands
// back the stored image key, if any, so the caller can clean up object
// storage afterwards. Returns ErrInvoiceNotFound for unknown ids without
// touching anything.
func (r *InvoiceRepo) Delete(ctx context.Context, id uint64) (*string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var imageKey *string
	err = tx.QueryRowContext(ctx,
		"SELECT image_key FROM invoices WHERE id=? LIMIT 1", id).Scan(&imageKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE invoice_id=?", id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM invoices WHERE id=?", id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return imageKey, nil
}

// insertProducts writes the submitted line items under an invoice and
// returns them with their generated ids.
func insertProducts(ctx context.Context, tx *sql.Tx, invoiceID uint64, products []ProductInput) ([]model.Product, error) {
	items := make([]model.Product, 0, len(products))
	for _, p := range products {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO products (invoice_id, name, quantity, price) VALUES (?,?,?,?)",
			invoiceID, p.Name, p.Quantity, p.Price)
		if err != nil {
			return nil, err
		}
		pid, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		items = append(items, model.Product{
			ID:        uint64(pid),
			InvoiceID: invoiceID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Price:     p.Price,
		})
	}
	return items, nil
}

func (r *InvoiceRepo) loadProducts(ctx context.Context, invoiceID uint64) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,invoice_id,name,quantity,price FROM products WHERE invoice_id=? ORDER BY id",
		invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Name, &p.Quantity, &p.Price); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows for scanInvoice.
type scanner interface{ Scan(dest ...any) error }

func scanInvoice(s scanner, inv *model.Invoice) error {
	var date sql.NullTime
	if err := s.Scan(&inv.ID, &inv.UserID, &inv.ImageURL, &inv.ImageKey,
		&inv.Total, &date, &inv.Place, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return err
	}
	if date.Valid {
		inv.Date = date.Time
	}
	return nil
}
