package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

const (
	currencySymbol = "₹"
	dateLayout     = "2/1/2006"
	idPrefixLen    = 8
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Format renders the one-line announcement of a mutation.
func Format(kind models.Kind, action models.Action, rec models.Record, actor string) (string, error) {
	if rec == nil {
		return "", common.Invalid("record", "is required")
	}
	if rec.Kind() != kind {
		return "", common.Invalid("kind", fmt.Sprintf("%s does not match a %s record", kind, rec.Kind()))
	}

	switch r := rec.(type) {
	case models.Expense:
		return formatExpense(action, r, actor)
	case *models.Expense:
		return formatExpense(action, *r, actor)
	case models.Payment:
		return formatPayment(action, r, actor)
	case *models.Payment:
		return formatPayment(action, *r, actor)
	}
	return "", common.Invalid("record", fmt.Sprintf("unsupported type %T", rec))
}

func formatExpense(action models.Action, e models.Expense, actor string) (string, error) {
	amount := formatAmount(e.Amount)
	var villa string
	if e.UnitReference != "" {
		villa = fmt.Sprintf(" (Villa %s)", e.UnitReference)
	}

	switch action {
	case models.ActionCreated:
		return fmt.Sprintf("[Expense Added] %s — %s on %s%s (by %s).",
			amount, e.Description, formatDate(e.Date), villa, actor), nil
	case models.ActionUpdated:
		return fmt.Sprintf("[Expense Updated] ID %s — %s — %s on %s%s (by %s).",
			shortID(e.ID), e.Description, amount, formatDate(e.Date), villa, actor), nil
	case models.ActionDeleted:
		return fmt.Sprintf("[Expense Deleted] ID %s — %s — %s (by %s).",
			shortID(e.ID), e.Description, amount, actor), nil
	}
	return "", unknownAction(action)
}

func formatPayment(action models.Action, p models.Payment, actor string) (string, error) {
	amount := formatAmount(p.Amount)
	var mode, ref string
	if p.PaymentMode != "" {
		mode = fmt.Sprintf(" (%s)", p.PaymentMode)
	}
	if p.ReferenceNumber != "" {
		ref = " Ref: " + p.ReferenceNumber
	}

	switch action {
	case models.ActionCreated:
		return fmt.Sprintf("[Payment Received] Villa %s — %s on %s%s%s (by %s).",
			p.UnitReference, amount, formatDate(p.Date), mode, ref, actor), nil
	case models.ActionUpdated:
		return fmt.Sprintf("[Payment Updated] Villa %s — %s on %s%s%s (by %s).",
			p.UnitReference, amount, formatDate(p.Date), mode, ref, actor), nil
	case models.ActionDeleted:
		return fmt.Sprintf("[Payment Deleted] Villa %s — %s on %s (by %s).",
			p.UnitReference, amount, formatDate(p.Date), actor), nil
	}
	return "", unknownAction(action)
}

// formatAmount groups digits the Indian way (12,34,567.5) with at most
// three fraction digits. Only the integer part goes through the printer;
// the fraction is taken from the decimal so no digit is lost to float64.
func formatAmount(d decimal.Decimal) string {
	var sign string
	r := d.Round(3)
	if r.IsNegative() {
		sign, r = "-", r.Neg()
	}
	s := sign + currencySymbol + printer.Sprint(number.Decimal(r.IntPart()))
	if _, frac, ok := strings.Cut(r.StringFixed(3), "."); ok {
		if frac = strings.TrimRight(frac, "0"); frac != "" {
			s += "." + frac
		}
	}
	return s
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(dateLayout)
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > idPrefixLen {
		return id[:idPrefixLen]
	}
	return id
}

func unknownAction(a models.Action) error {
	return common.Invalid("action", fmt.Sprintf("unknown action %q", a))
}
