package workbook

import (
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// clock advances by one second on every reading so backup names never
// collide within a test.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestFile(t *testing.T, mutate ...func(*Options)) *File {
	t.Helper()

	dir := t.TempDir()
	opts := Options{
		Path: filepath.Join(dir, "mysociety_data.xlsx"),
		Now:  newClock().Now,
	}
	for _, m := range mutate {
		m(&opts)
	}

	f, err := Open(opts)
	require.NoError(t, err)
	return f
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) models.Date {
	return models.MustParseDate(s)
}

func datePtr(s string) *models.Date {
	d := date(s)
	return &d
}

func ptr[T any](v T) *T {
	return &v
}

func expense(desc, amt, day string) models.Expense {
	return models.Expense{
		Entry:       models.Entry{Amount: amount(amt), Date: date(day)},
		Description: desc,
	}
}

func payment(unit, amt, day string, mode models.PaymentMode) models.Payment {
	return models.Payment{
		Entry:         models.Entry{Amount: amount(amt), Date: date(day)},
		UnitReference: unit,
		PaymentMode:   mode,
	}
}

func collect[R any](t *testing.T, seq iter.Seq[R]) []R {
	t.Helper()
	var out []R
	for r := range seq {
		out = append(out, r)
	}
	return out
}
