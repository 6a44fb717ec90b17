package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-archive/internal/extractor"
	"github.com/iliyamo/invoice-archive/internal/middleware"
	"github.com/iliyamo/invoice-archive/internal/queue"
	"github.com/iliyamo/invoice-archive/internal/repository"
	qp "github.com/iliyamo/invoice-archive/internal/service"
)

// ExtractHandler runs the AI extraction pipeline and persists the result.
type ExtractHandler struct {
	Invoices *repository.InvoiceRepo
	Pipeline *extractor.Pipeline
}

func NewExtractHandler(inv *repository.InvoiceRepo, p *extractor.Pipeline) *ExtractHandler {
	return &ExtractHandler{Invoices: inv, Pipeline: p}
}

type extractReq struct {
	ImageURL string `json:"imageUrl"`
	ImageKey string `json:"imageKey"`
}

// Extract handles POST /api/invoices/extract. The completion service gets
// one shot plus one repair pass; when both outputs fail to parse the client
// receives a 400 carrying both raw texts and nothing is persisted. A
// successful parse is stored for the caller with whatever total the model
// reported — the creation path never recomputes totals.
func (h *ExtractHandler) Extract(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req extractReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imageUrl required"})
	}

	res, err := h.Pipeline.Extract(c.Request().Context(), req.ImageURL)
	if err != nil {
		var perr *extractor.ParseError
		if errors.As(err, &perr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message":  "could not convert the response into valid JSON",
				"original": perr.Original,
				"cleaned":  perr.Cleaned,
			})
		}
		log.Printf("extract: completion failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "extraction failed"})
	}

	// The model may answer null for the date; fall back to the epoch the
	// way a null date has always been stored.
	date, derr := time.Parse(dateLayout, res.Date)
	if derr != nil {
		date = time.Unix(0, 0).UTC()
	}

	products := make([]repository.ProductInput, 0, len(res.Products))
	for _, p := range res.Products {
		products = append(products, repository.ProductInput{Name: p.Name, Quantity: p.Quantity, Price: p.Price})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var key *string
	if req.ImageKey != "" {
		key = &req.ImageKey
	}
	inv, err := h.Invoices.Create(ctx, userID, req.ImageURL, key, res.Total, date, res.Place, products)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save invoice failed"})
	}

	_ = qp.PublishInvoiceCreated(ctx, queue.InvoiceCreatedEvent{
		InvoiceID:    inv.ID,
		UserID:       inv.UserID,
		Place:        inv.Place,
		Date:         inv.Date.Format(dateLayout),
		Total:        inv.Total,
		ProductCount: len(inv.Products),
		Source:       queue.SourceExtracted,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, inv)
}
