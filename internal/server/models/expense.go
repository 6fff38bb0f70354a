package models

import "github.com/shopspring/decimal"

// Expense is an outflow record.
type Expense struct {
	Entry
	Description   string `json:"description"`
	UnitReference string `json:"unit_reference,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (Expense) Kind() Kind { return KindOutflow }

func (e Expense) Validate() error {
	if blank(e.Description) {
		return invalidField("description", "is required")
	}
	err := checkTexts(
		textField{"description", &e.Description},
		textField{"unit_reference", &e.UnitReference},
		textField{"notes", &e.Notes},
	)
	if err != nil {
		return err
	}
	return e.Entry.validate()
}

// ExpensePatch carries the fields of a partial update; nil means untouched.
type ExpensePatch struct {
	ReadOnly
	Description   *string          `json:"description,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Date          *Date            `json:"date,omitempty"`
	UnitReference *string          `json:"unit_reference,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// Validate checks the provided fields on their own, before any stored
// record is involved.
func (p ExpensePatch) Validate() error {
	if err := p.ReadOnly.Check(); err != nil {
		return err
	}
	if p.Description != nil && blank(*p.Description) {
		return invalidField("description", "must not be empty")
	}
	err := checkTexts(
		textField{"description", p.Description},
		textField{"unit_reference", p.UnitReference},
		textField{"notes", p.Notes},
	)
	if err != nil {
		return err
	}
	return checkCommon(p.Amount, p.Date)
}

// Apply merges p into e.
func (p ExpensePatch) Apply(e *Expense) error {
	if err := p.ReadOnly.Check(); err != nil {
		return err
	}
	applyCommon(&e.Entry, p.Amount, p.Date)
	set(&e.Description, p.Description)
	set(&e.UnitReference, p.UnitReference)
	set(&e.Notes, p.Notes)
	return nil
}
