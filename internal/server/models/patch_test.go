package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

func ptr[T any](v T) *T { return &v }

func TestExpensePatch_Apply(t *testing.T) {
	e := validExpense()
	e.Notes = "monthly"

	p := ExpensePatch{Amount: ptr(decimal.RequireFromString("1600")), UnitReference: ptr("Common")}
	require.NoError(t, p.Validate())
	require.NoError(t, p.Apply(&e))

	assert.Equal(t, "1600", e.Amount.String())
	assert.Equal(t, "Common", e.UnitReference)
	assert.Equal(t, "Gardener", e.Description, "untouched fields keep their values")
	assert.Equal(t, "monthly", e.Notes)
}

func TestExpensePatch_Validate(t *testing.T) {
	tests := []struct {
		name  string
		patch ExpensePatch
		field string
	}{
		{name: "blank description", patch: ExpensePatch{Description: ptr("")}, field: "description"},
		{name: "negative amount", patch: ExpensePatch{Amount: ptr(decimal.NewFromInt(-5))}, field: "amount"},
		{name: "zero date", patch: ExpensePatch{Date: &Date{}}, field: "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.field, fieldOf(t, tt.patch.Validate()))
		})
	}
	assert.NoError(t, ExpensePatch{}.Validate())
}

func TestReadOnly_Check(t *testing.T) {
	tests := []struct {
		name string
		ro   ReadOnly
	}{
		{"id", ReadOnly{ID: ptr("x")}},
		{"created_by", ReadOnly{CreatedBy: ptr("x")}},
		{"modified_by", ReadOnly{ModifiedBy: ptr("x")}},
		{"deleted", ReadOnly{Deleted: ptr(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ro.Check()
			require.ErrorIs(t, err, common.ErrImmutableField)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.name)
		})
	}

	e := validExpense()
	err := ExpensePatch{ReadOnly: ReadOnly{ID: ptr("other")}}.Apply(&e)
	assert.ErrorIs(t, err, common.ErrImmutableField)
	assert.Empty(t, e.ID)
}

func TestPaymentPatch(t *testing.T) {
	p := validPayment()

	patch := PaymentPatch{PaymentMode: ptr(PaymentCheque), ReferenceNumber: ptr("CHQ-1")}
	require.NoError(t, patch.Validate())
	require.NoError(t, patch.Apply(&p))
	assert.Equal(t, PaymentCheque, p.PaymentMode)
	assert.Equal(t, "CHQ-1", p.ReferenceNumber)
	assert.Equal(t, "B-204", p.UnitReference)

	assert.Equal(t, "payment_mode", fieldOf(t, PaymentPatch{PaymentMode: ptr(PaymentMode("gold"))}.Validate()))
	assert.Equal(t, "unit_reference", fieldOf(t, PaymentPatch{UnitReference: ptr(" ")}.Validate()))
}
