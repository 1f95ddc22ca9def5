package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current stored invoice shape. Bump it together with a
// new entry in the billing migration table.
const SchemaVersion = 1

// Invoice statuses. Free-form transitions: any status may be set at any time.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
)

// DefaultCurrency is used when an invoice does not specify one.
const DefaultCurrency = "ZAR"

// Party is one side of an invoice (issuer or recipient). All fields are
// free text.
type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// LineItem is one billable row of an invoice. Quantity and UnitPrice are
// stored as entered; non-finite values are coerced to zero at computation
// time only, never rewritten in place.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Invoice is a billable document. Totals are always derived via CalcTotals
// and never stored.
type Invoice struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id"`
	Number        string `json:"number"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"` // ISO-8601
	UpdatedAt     string `json:"updatedAt"` // ISO-8601, stamped on every save

	From Party `json:"from"`
	To   Party `json:"to"`

	IssueDate string `json:"issueDate"` // YYYY-MM-DD
	DueDate   string `json:"dueDate"`   // YYYY-MM-DD
	Currency  string `json:"currency"`

	Items []LineItem `json:"items"`

	Notes    string  `json:"notes"`
	TaxRate  float64 `json:"taxRate"`  // percent, e.g. 15 for VAT
	Discount float64 `json:"discount"` // absolute amount in invoice currency
}

// NewInvoice builds a fully populated invoice, filling every zero-valued
// field of partial with its default. Pass Invoice{} for a fresh draft:
// new id, number derived from the creation timestamp, one default line item.
func NewInvoice(partial Invoice) Invoice {
	now := time.Now()
	iso := now.Format(time.RFC3339)
	today := now.Format("2006-01-02")

	inv := partial
	inv.SchemaVersion = SchemaVersion
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Number == "" {
		inv.Number = "INV-" + now.Format("2006-01-02-1504")
	}
	if inv.Status == "" {
		inv.Status = StatusDraft
	}
	if inv.CreatedAt == "" {
		inv.CreatedAt = iso
	}
	if inv.UpdatedAt == "" {
		inv.UpdatedAt = iso
	}
	if inv.IssueDate == "" {
		inv.IssueDate = today
	}
	if inv.DueDate == "" {
		inv.DueDate = today
	}
	if inv.Currency == "" {
		inv.Currency = DefaultCurrency
	}
	if len(inv.Items) == 0 {
		inv.Items = []LineItem{NewLineItem()}
	} else {
		inv.Items = cloneItems(inv.Items)
		for i := range inv.Items {
			if inv.Items[i].ID == "" {
				inv.Items[i].ID = uuid.New().String()
			}
		}
	}
	return inv
}

// NewLineItem builds a default line item with a fresh id: empty description,
// quantity 1, unit price 0.
func NewLineItem() LineItem {
	return LineItem{
		ID:       uuid.New().String(),
		Quantity: 1,
	}
}

// NormalizeCurrency uppercases and trims a currency code, falling back to
// the default for an empty value.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

// Clone returns a deep copy. The items slice is the only reference field.
func (i Invoice) Clone() Invoice {
	out := i
	out.Items = cloneItems(i.Items)
	return out
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
