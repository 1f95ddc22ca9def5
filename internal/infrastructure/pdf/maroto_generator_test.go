package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdwalt/sidebill/internal/domain/entity"
)

func TestGenerate_PopulatedInvoice(t *testing.T) {
	inv := entity.NewInvoice(entity.Invoice{
		Number: "INV-2026-03-01-1200",
		From:   entity.Party{Name: "Acme Pty", Email: "billing@acme.test", Address: "1 Main Rd, Cape Town"},
		To:     entity.Party{Name: "Jane Roe", Email: "jane@example.test"},
		Items: []entity.LineItem{
			{ID: "i1", Description: "Design work", Quantity: 10, UnitPrice: 450},
			{ID: "i2", Description: "Hosting", Quantity: 1, UnitPrice: 120.5},
		},
		TaxRate:  15,
		Discount: 200,
		Notes:    "Payable within 30 days.",
	})

	doc, err := NewGenerator().Generate(context.Background(), inv)

	require.NoError(t, err)
	assert.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]), "output must be a PDF document")
}

func TestGenerate_EmptyItemsStillRenders(t *testing.T) {
	inv := entity.NewInvoice(entity.Invoice{})
	inv.Items = nil // items may become empty through editing

	doc, err := NewGenerator().Generate(context.Background(), inv)

	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}
