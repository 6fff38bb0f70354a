package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMode is how an inflow was received.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "cash"
	PaymentCheque       PaymentMode = "cheque"
	PaymentUPI          PaymentMode = "upi"
	PaymentBankTransfer PaymentMode = "bank_transfer"
	PaymentCard         PaymentMode = "card"
	PaymentOther        PaymentMode = "other"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case "", PaymentCash, PaymentCheque, PaymentUPI, PaymentBankTransfer, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// Payment is an inflow record.
type Payment struct {
	Entry
	UnitReference   string      `json:"unit_reference"`
	PaymentMode     PaymentMode `json:"payment_mode,omitempty"`
	ReferenceNumber string      `json:"reference_number,omitempty"`
}

func (Payment) Kind() Kind { return KindInflow }

func (p Payment) Validate() error {
	if blank(p.UnitReference) {
		return invalidField("unit_reference", "is required")
	}
	if !p.PaymentMode.Valid() {
		return invalidField("payment_mode", "is not a known mode")
	}
	err := checkTexts(
		textField{"unit_reference", &p.UnitReference},
		textField{"reference_number", &p.ReferenceNumber},
	)
	if err != nil {
		return err
	}
	return p.Entry.validate()
}

// NormalizeMode lower-cases and trims a user supplied mode.
func NormalizeMode(s string) PaymentMode {
	return PaymentMode(strings.ToLower(strings.TrimSpace(s)))
}

// PaymentPatch carries the fields of a partial update; nil means untouched.
type PaymentPatch struct {
	ReadOnly
	UnitReference   *string          `json:"unit_reference,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Date            *Date            `json:"date,omitempty"`
	PaymentMode     *PaymentMode     `json:"payment_mode,omitempty"`
	ReferenceNumber *string          `json:"reference_number,omitempty"`
}

func (p PaymentPatch) Validate() error {
	if err := p.ReadOnly.Check(); err != nil {
		return err
	}
	if p.UnitReference != nil && blank(*p.UnitReference) {
		return invalidField("unit_reference", "must not be empty")
	}
	if p.PaymentMode != nil && !p.PaymentMode.Valid() {
		return invalidField("payment_mode", "is not a known mode")
	}
	err := checkTexts(
		textField{"unit_reference", p.UnitReference},
		textField{"reference_number", p.ReferenceNumber},
	)
	if err != nil {
		return err
	}
	return checkCommon(p.Amount, p.Date)
}

func (p PaymentPatch) Apply(pay *Payment) error {
	if err := p.ReadOnly.Check(); err != nil {
		return err
	}
	applyCommon(&pay.Entry, p.Amount, p.Date)
	set(&pay.UnitReference, p.UnitReference)
	set(&pay.PaymentMode, p.PaymentMode)
	set(&pay.ReferenceNumber, p.ReferenceNumber)
	return nil
}
