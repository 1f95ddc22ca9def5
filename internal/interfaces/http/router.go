package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/mvdwalt/sidebill/internal/application/billing"
	"github.com/mvdwalt/sidebill/internal/domain/entity"
)

// InvoicePDFGenerator renders one invoice as PDF bytes.
type InvoicePDFGenerator interface {
	Generate(ctx context.Context, inv entity.Invoice) ([]byte, error)
}

// RouterDeps dependencies for the router.
type RouterDeps struct {
	Store *billing.Store
	PDF   InvoicePDFGenerator
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	invoices := api.Group("/invoices")
	h := NewInvoiceHandler(deps.Store, deps.PDF)
	invoices.Get("/", h.List)
	invoices.Post("/", h.Create)
	invoices.Get("/:id", h.GetByID)
	invoices.Put("/:id", h.Upsert)
	invoices.Delete("/:id", h.Delete)
	invoices.Get("/:id/totals", h.Totals)
	invoices.Get("/:id/pdf", h.PDF)
}
