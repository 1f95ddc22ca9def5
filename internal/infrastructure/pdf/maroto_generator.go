// Package pdf renders an invoice as an A4 PDF using Maroto v2. This is the
// export path: the document is always built from the persisted invoice, so
// what prints is what was saved.
//
// Page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Number + status        │  Issue date / Due date    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FROM: name / email / address                               │
//	│  TO:   name / email / address                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Qty | Description | Unit price | Amount             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: Subtotal / Discount / Tax / TOTAL DUE              │
//	│  NOTES                                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/mvdwalt/sidebill/internal/domain/entity"
	"github.com/mvdwalt/sidebill/pkg/money"
)

var (
	colorPrimary = &props.Color{Red: 15, Green: 23, Blue: 42}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Generator renders invoices with Maroto v2.
type Generator struct{}

// NewGenerator builds the generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate renders the invoice and returns the PDF bytes.
func (g *Generator) Generate(_ context.Context, inv entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+inv.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow("FROM", inv.From))
	m.AddRows(partyRow("TO", inv.To))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(inv) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	if strings.TrimSpace(inv.Notes) != "" {
		m.AddRows(notesRows(inv.Notes)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: invoice number + status on the left, dates on the right.
func headerRow(inv entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 5,
			}),
			text.New(strings.ToUpper(inv.Status), props.Text{
				Size: 8, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Issue date: "+inv.IssueDate, props.Text{
				Size: 8, Align: align.Right, Top: 5, Color: colorGray,
			}),
			text.New("Due date: "+inv.DueDate, props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// partyRow: one side of the invoice (issuer or recipient).
func partyRow(label string, p entity.Party) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(p.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s   |   %s",
				nonEmpty(p.Email, "—"),
				nonEmpty(p.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: line-item table header.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Description", 6, align.Left),
		h("Unit price", 2, align.Right),
		h("Amount", 3, align.Right),
	)
}

// itemRows: one row per line item, amounts in the invoice currency.
func itemRows(inv entity.Invoice) []core.Row {
	result := make([]core.Row, 0, len(inv.Items))
	for _, it := range inv.Items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%g", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				money.Format(it.UnitPrice, inv.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				money.Format(it.Quantity*it.UnitPrice, inv.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: derived totals block, right-aligned.
func totalsRow(inv entity.Invoice) core.Row {
	totals := entity.CalcTotals(inv)

	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, bold fontstyle.Type) core.Component {
		return text.New(s, props.Text{
			Style: bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	fmtDec := func(d decimal.Decimal) string {
		return money.Format(d.InexactFloat64(), inv.Currency)
	}

	return row.New(30).Add(
		col.New(4),
		col.New(4).Add(
			label("Subtotal:"),
			label("Discount:"),
			label("Tax ("+totals.TaxRate.StringFixed(0)+"%):"),
			grand("TOTAL DUE:", fontstyle.Bold),
		),
		col.New(4).Add(
			value(fmtDec(totals.Subtotal)),
			value(fmtDec(totals.Discount)),
			value(fmtDec(totals.Tax)),
			grand(fmtDec(totals.Total), fontstyle.Bold),
		),
	)
}

// notesRows: free-text notes under the totals.
func notesRows(notes string) []core.Row {
	return []core.Row{
		row.New(4),
		row.New(5).Add(col.New(12).Add(
			text.New("NOTES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(10).Add(col.New(12).Add(
			text.New(notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)),
	}
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
