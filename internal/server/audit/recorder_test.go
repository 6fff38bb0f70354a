package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

type memJournal struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (m *memJournal) Record(_ context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) List(context.Context, string, int) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditEntry(nil), m.entries...), nil
}

func TestRecorder_EnqueueAndClose(t *testing.T) {
	j := &memJournal{}
	r := NewRecorder(j, logging.Nop())

	r.Enqueue(models.KindOutflow, models.ActionCreated, testExpense(), "admin")
	r.Enqueue(models.KindOutflow, models.ActionDeleted, testExpense(), "treasurer")
	require.NoError(t, r.Close(context.Background()))

	got, err := j.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "e-1", e.RecordID)
	}
}

func TestRecorder_FailuresAreSwallowed(t *testing.T) {
	r := NewRecorder(&memJournal{err: errors.New("db down")}, nil)

	r.Enqueue(models.KindOutflow, models.ActionCreated, testExpense(), "admin")
	assert.NoError(t, r.Close(context.Background()))
}

func TestRecorder_DefaultsToNop(t *testing.T) {
	r := NewRecorder(nil, nil)
	assert.IsType(t, NopJournal{}, r.Journal())
}
