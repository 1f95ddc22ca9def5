package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/mvdwalt/sidebill/internal/application/billing"
	"github.com/mvdwalt/sidebill/internal/domain"
	"github.com/mvdwalt/sidebill/internal/domain/entity"
	"github.com/mvdwalt/sidebill/pkg/money"
)

// ErrorResponse is the JSON error body of every failing route.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvoiceHandler exposes the invoice store over HTTP. Handlers stay thin:
// parse, delegate, map errors.
type InvoiceHandler struct {
	store *billing.Store
	pdf   InvoicePDFGenerator
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(store *billing.Store, pdf InvoicePDFGenerator) *InvoiceHandler {
	return &InvoiceHandler{store: store, pdf: pdf}
}

// List returns the collection, newest first. ?q= filters on number and
// party names.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"invoices": h.store.ListInvoices(c.Query("q"))})
}

// Create builds a new draft invoice and returns it.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	inv, err := h.store.CreateInvoice(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GetByID returns one invoice.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.store.GetInvoice(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(inv)
}

// Upsert saves an edited invoice. A known id replaces the entry in place;
// an unknown one is stored as new.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Upsert(c *fiber.Ctx) error {
	var inv entity.Invoice
	if err := c.BodyParser(&inv); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "invalid invoice body"})
	}
	id := c.Params("id")
	if inv.ID == "" {
		inv.ID = id
	}
	if inv.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "body id does not match path id"})
	}

	saved, err := h.store.UpsertInvoice(c.Context(), inv)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(saved)
}

// Delete removes an invoice. Deleting an unknown id is a no-op; both cases
// answer 204.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.DeleteInvoice(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Totals returns the derived totals of one invoice, recomputed on every
// call, plus a formatted grand total.
// GET /api/invoices/:id/totals
func (h *InvoiceHandler) Totals(c *fiber.Ctx) error {
	inv, err := h.store.GetInvoice(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	totals := entity.CalcTotals(inv)
	return c.JSON(fiber.Map{
		"totals":         totals,
		"formattedTotal": money.Format(totals.Total.InexactFloat64(), inv.Currency),
	})
}

// PDF renders the persisted invoice as a PDF document.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	inv, err := h.store.GetInvoice(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	doc, err := h.pdf.Generate(c.Context(), inv)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "PDF", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", inv.Number+".pdf"))
	return c.Send(doc)
}
