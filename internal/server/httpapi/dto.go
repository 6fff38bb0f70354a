package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type newExpenseRequest struct {
	Description string `json:"description"`
	// ExpenseDesc is the field name older clients send.
	ExpenseDesc   string           `json:"expense_desc"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *models.Date     `json:"date"`
	UnitReference string           `json:"unit_reference"`
	Notes         string           `json:"notes"`
}

type newPaymentRequest struct {
	UnitReference   string           `json:"unit_reference"`
	Amount          *decimal.Decimal `json:"amount"`
	Date            *models.Date     `json:"date"`
	PaymentMode     string           `json:"payment_mode"`
	ReferenceNumber string           `json:"reference_number"`
}

type backupResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type backupURLResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type auditEntryResponse struct {
	ID       string          `json:"id"`
	At       string          `json:"at"`
	Actor    string          `json:"actor"`
	Kind     models.Kind     `json:"kind"`
	Action   models.Action   `json:"action"`
	RecordID string          `json:"record_id"`
	Payload  json.RawMessage `json:"payload"`
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", common.ErrValidation, err)
	}
	return nil
}

func requireAmountAndDate(amount *decimal.Decimal, date *models.Date) error {
	if amount == nil {
		return common.Invalid("amount", "is required")
	}
	if date == nil {
		return common.Invalid("date", "is required")
	}
	return nil
}

func decodeNewExpense(r *http.Request) (models.Expense, error) {
	var req newExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		return models.Expense{}, err
	}
	if err := requireAmountAndDate(req.Amount, req.Date); err != nil {
		return models.Expense{}, err
	}
	if req.Description == "" {
		req.Description = req.ExpenseDesc
	}
	return models.Expense{
		Entry:         models.Entry{Amount: *req.Amount, Date: *req.Date},
		Description:   req.Description,
		UnitReference: req.UnitReference,
		Notes:         req.Notes,
	}, nil
}

func decodeNewPayment(r *http.Request) (models.Payment, error) {
	var req newPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		return models.Payment{}, err
	}
	if err := requireAmountAndDate(req.Amount, req.Date); err != nil {
		return models.Payment{}, err
	}
	return models.Payment{
		Entry:           models.Entry{Amount: *req.Amount, Date: *req.Date},
		UnitReference:   req.UnitReference,
		PaymentMode:     models.NormalizeMode(req.PaymentMode),
		ReferenceNumber: req.ReferenceNumber,
	}, nil
}

func decodeExpensePatch(r *http.Request) (models.ExpensePatch, error) {
	var p models.ExpensePatch
	err := decodeBody(r, &p)
	return p, err
}

func decodePaymentPatch(r *http.Request) (models.PaymentPatch, error) {
	var p models.PaymentPatch
	if err := decodeBody(r, &p); err != nil {
		return p, err
	}
	if p.PaymentMode != nil {
		mode := models.NormalizeMode(string(*p.PaymentMode))
		p.PaymentMode = &mode
	}
	return p, nil
}
