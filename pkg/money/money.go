// Package money renders amounts under an ISO-4217 currency code.
package money

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders amount under the given currency code using locale-aware
// formatting. Unknown codes fall back to "<CODE> <amount>" with two decimals
// so a bad code never breaks a render. Non-finite amounts are treated as 0.
func Format(amount float64, code string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", code, amount)
	}

	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
