package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

func validExpense() Expense {
	return Expense{
		Entry:       Entry{Amount: decimal.RequireFromString("1500"), Date: MustParseDate("2024-03-01")},
		Description: "Gardener",
	}
}

func validPayment() Payment {
	return Payment{
		Entry:         Entry{Amount: decimal.RequireFromString("2500"), Date: MustParseDate("2024-03-02")},
		UnitReference: "B-204",
		PaymentMode:   PaymentUPI,
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestExpense_Validate(t *testing.T) {
	require.NoError(t, validExpense().Validate())

	e := validExpense()
	e.Description = "  "
	assert.Equal(t, "description", fieldOf(t, e.Validate()))

	e = validExpense()
	e.Amount = decimal.NewFromInt(-1)
	assert.Equal(t, "amount", fieldOf(t, e.Validate()))

	e = validExpense()
	e.Date = Date{}
	assert.Equal(t, "date", fieldOf(t, e.Validate()))

	e = validExpense()
	e.Amount = decimal.Zero
	assert.NoError(t, e.Validate(), "zero is a valid amount")
}

func TestPayment_Validate(t *testing.T) {
	require.NoError(t, validPayment().Validate())

	p := validPayment()
	p.UnitReference = ""
	assert.Equal(t, "unit_reference", fieldOf(t, p.Validate()))

	p = validPayment()
	p.PaymentMode = "barter"
	assert.Equal(t, "payment_mode", fieldOf(t, p.Validate()))

	p = validPayment()
	p.PaymentMode = ""
	assert.NoError(t, p.Validate(), "mode is optional")
}

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, PaymentBankTransfer, NormalizeMode(" Bank_Transfer "))
}

func TestEntry_Stamp(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := Entry{CreatedAt: created}

	e.Stamp("treasurer", created.Add(time.Hour))
	require.NotNil(t, e.ModifiedBy)
	assert.Equal(t, "treasurer", *e.ModifiedBy)
	assert.Equal(t, created.Add(time.Hour), *e.ModifiedAt)

	e.Stamp("admin", created.Add(-time.Hour))
	assert.Equal(t, created, *e.ModifiedAt, "modified_at never precedes created_at")
}

func TestActor_CanWrite(t *testing.T) {
	assert.True(t, Actor{Role: RoleAdmin}.CanWrite())
	assert.True(t, Actor{Role: RoleTreasurer}.CanWrite())
	assert.False(t, Actor{Role: RoleResident}.CanWrite())
}
