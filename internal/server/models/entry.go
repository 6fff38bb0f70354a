// Package models defines the ledger records stored in the workbook and the
// small value types shared by the store, the notifier and the HTTP layer.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

// Kind names the table a record lives in.
type Kind string

const (
	KindOutflow Kind = "outflow"
	KindInflow  Kind = "inflow"
)

// Action names a mutation.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Record is implemented by Expense and Payment.
type Record interface {
	Kind() Kind
	Common() Entry
}

// Entry holds the fields every ledger row carries.
type Entry struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       Date            `json:"date"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedBy *string         `json:"modified_by"`
	ModifiedAt *time.Time      `json:"modified_at"`
	Deleted    bool            `json:"deleted"`
}

func (e Entry) Common() Entry { return e }

// Stamp records actor as the last modifier. modified_at never goes below
// created_at, even if the clock stepped back.
func (e *Entry) Stamp(actor string, now time.Time) {
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	e.ModifiedBy = &actor
	e.ModifiedAt = &now
}

func (e Entry) validate() error {
	if err := checkAmount(e.Amount); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return common.Invalid("date", "is required")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
