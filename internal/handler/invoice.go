package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-archive/internal/middleware"
	"github.com/iliyamo/invoice-archive/internal/queue"
	"github.com/iliyamo/invoice-archive/internal/repository"
	qp "github.com/iliyamo/invoice-archive/internal/service"
	"github.com/iliyamo/invoice-archive/internal/storage"
)

// dateLayout is the wire format for invoice dates, matching the schema the
// extraction prompt pins down.
const dateLayout = "2006-01-02"

// InvoiceHandler bundles dependencies for invoice CRUD endpoints.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Images   storage.ImageStore
}

func NewInvoiceHandler(inv *repository.InvoiceRepo, img storage.ImageStore) *InvoiceHandler {
	return &InvoiceHandler{Invoices: inv, Images: img}
}

// ----- DTOs -----

type createInvoiceReq struct {
	ImageURL string                    `json:"imageUrl"`
	ImageKey string                    `json:"imageKey"`
	Total    float64                   `json:"total"`
	Date     string                    `json:"date"`
	Place    string                    `json:"place"`
	Products []repository.ProductInput `json:"products"`
}

type updateInvoiceReq struct {
	Date     string                    `json:"date"`
	Place    string                    `json:"place"`
	Products []repository.ProductInput `json:"products"`
}

// Create handles POST /api/invoices. The invoice is stored for the
// authenticated caller; any userId in the body is ignored. The submitted
// total is persisted untouched — only the edit path recomputes it from the
// product list.
func (h *InvoiceHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var key *string
	if req.ImageKey != "" {
		key = &req.ImageKey
	}
	inv, err := h.Invoices.Create(ctx, userID, req.ImageURL, key, req.Total, date, req.Place, req.Products)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invoice failed"})
	}

	_ = qp.PublishInvoiceCreated(ctx, queue.InvoiceCreatedEvent{
		InvoiceID:    inv.ID,
		UserID:       inv.UserID,
		Place:        inv.Place,
		Date:         inv.Date.Format(dateLayout),
		Total:        inv.Total,
		ProductCount: len(inv.Products),
		Source:       queue.SourceManual,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, inv)
}

// List handles GET /api/invoices and returns the caller's invoices with
// products populated.
func (h *InvoiceHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Invoices.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list invoices failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/invoices/:id. Every invoice belongs to exactly one
// user; reading someone else's is a 403 regardless of the id being valid.
func (h *InvoiceHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if inv.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, inv)
}

// Update handles PUT /api/invoices/:id. The product list is replaced
// wholesale and the total recomputed as the sum of quantity×price; an empty
// list is rejected before any storage call so the existing invoice stays
// untouched.
func (h *InvoiceHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "products must be a non-empty list"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if current.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	inv, err := h.Invoices.Replace(ctx, id, date, req.Place, req.Products)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, inv)
}

// Delete handles DELETE /api/invoices/:id. Products and the invoice row go
// in one transaction; the stored image is removed from object storage
// afterwards, best-effort. A missing id is a 404 and triggers no storage
// calls at all.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if current.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	imageKey, err := h.Invoices.Delete(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if imageKey != nil && *imageKey != "" {
		h.Images.Delete(ctx, *imageKey)
	}

	ev := queue.InvoiceDeletedEvent{
		InvoiceID: id,
		UserID:    userID,
		DeletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if imageKey != nil {
		ev.ImageKey = *imageKey
	}
	_ = qp.PublishInvoiceDeleted(ctx, ev)

	return c.JSON(http.StatusOK, echo.Map{"message": "invoice deleted"})
}
