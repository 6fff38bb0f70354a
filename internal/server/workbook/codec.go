package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// codec binds a record type R and its patch type P to a sheet schema.
type codec[R, P any] interface {
	schema() schema
	entry(r *R) *models.Entry
	validate(r R) error
	validatePatch(p P) error
	apply(r *R, p P) error
	encode(r R) []any
	decode(cell func(col string) string) (R, error)
}

type expenseCodec struct{}

func (expenseCodec) schema() schema { return expenseSchema }
func (expenseCodec) entry(e *models.Expense) *models.Entry { return &e.Entry }
func (expenseCodec) validate(e models.Expense) error { return e.Validate() }
func (expenseCodec) validatePatch(p models.ExpensePatch) error { return p.Validate() }
func (expenseCodec) apply(e *models.Expense, p models.ExpensePatch) error { return p.Apply(e) }

// encode follows expenseSchema.header.
func (expenseCodec) encode(e models.Expense) []any {
	return []any{
		e.ID, e.Description, amountCell(e.Amount), e.Date.String(), e.UnitReference,
		e.CreatedBy, timeCell(e.CreatedAt), optStringCell(e.ModifiedBy), optTimeCell(e.ModifiedAt),
		e.Deleted, e.Notes,
	}
}

func (expenseCodec) decode(cell func(string) string) (models.Expense, error) {
	entry, err := decodeEntry(cell)
	if err != nil {
		return models.Expense{}, err
	}
	return models.Expense{
		Entry:         entry,
		Description:   cell(colDescription),
		UnitReference: cell(colUnitReference),
		Notes:         cell(colNotes),
	}, nil
}

type paymentCodec struct{}

func (paymentCodec) schema() schema { return paymentSchema }
func (paymentCodec) entry(p *models.Payment) *models.Entry { return &p.Entry }
func (paymentCodec) validate(p models.Payment) error { return p.Validate() }
func (paymentCodec) validatePatch(p models.PaymentPatch) error { return p.Validate() }
func (paymentCodec) apply(p *models.Payment, patch models.PaymentPatch) error { return patch.Apply(p) }

// encode follows paymentSchema.header.
func (paymentCodec) encode(p models.Payment) []any {
	return []any{
		p.ID, p.UnitReference, amountCell(p.Amount), p.Date.String(), string(p.PaymentMode),
		p.CreatedBy, timeCell(p.CreatedAt), optStringCell(p.ModifiedBy), optTimeCell(p.ModifiedAt),
		p.Deleted, p.ReferenceNumber,
	}
}

func (paymentCodec) decode(cell func(string) string) (models.Payment, error) {
	entry, err := decodeEntry(cell)
	if err != nil {
		return models.Payment{}, err
	}
	return models.Payment{
		Entry:           entry,
		UnitReference:   cell(colUnitReference),
		PaymentMode:     models.PaymentMode(cell(colPaymentMode)),
		ReferenceNumber: cell(colReferenceNumber),
	}, nil
}

func decodeEntry(cell func(string) string) (models.Entry, error) {
	var e models.Entry
	var err error

	e.ID = strings.TrimSpace(cell(colID))

	if e.Amount, err = parseAmount(cell(colAmount)); err != nil {
		return e, err
	}
	if e.Date, err = models.ParseDate(strings.TrimSpace(cell(colDate))); err != nil {
		return e, err
	}
	e.CreatedBy = cell(colCreatedBy)
	if e.CreatedAt, err = parseTime(cell(colCreatedAt)); err != nil {
		return e, fmt.Errorf("created_at: %w", err)
	}
	if v := cell(colModifiedBy); v != "" {
		e.ModifiedBy = &v
	}
	if v := cell(colModifiedAt); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return e, fmt.Errorf("modified_at: %w", err)
		}
		e.ModifiedAt = &t
	}
	if e.Deleted, err = parseBool(cell(colDeleted)); err != nil {
		return e, fmt.Errorf("deleted: %w", err)
	}
	return e, nil
}

// Amounts are stored as numbers so the sheet stays summable in a
// spreadsheet tool.
// amountCell stores d as a number. Validation caps amounts at
// models.MaxAmountDigits significant digits, which float64 keeps exactly.
func amountCell(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, err)
	}
	return d, nil
}

func timeCell(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func optTimeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeCell(*t)
}

func optStringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
