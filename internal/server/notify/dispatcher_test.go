package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// flakyTransport fails the first failures calls.
type flakyTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []string
	block    chan struct{}
}

func (f *flakyTransport) Name() string { return "flaky" }

func (f *flakyTransport) Send(ctx context.Context, text, from, to string) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("provider unavailable")
	}
	f.sent = append(f.sent, from+"->"+to+": "+text)
	return "msg-1", nil
}

func (f *flakyTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type waits struct {
	mu  sync.Mutex
	got []time.Duration
}

func (w *waits) record(_ int, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.got = append(w.got, d)
}

func newTestDispatcher(t Transport, base time.Duration) (*Dispatcher, *waits) {
	d := New(t, Config{From: "+100", To: "group-1", RetryBase: base, MaxRetries: DefaultMaxRetries}, logging.Nop())
	w := &waits{}
	d.onRetry = w.record
	return d, w
}

func TestNotify_MockSucceedsFirstAttempt(t *testing.T) {
	d, w := newTestDispatcher(NewMockTransport(logging.Nop()), time.Hour)

	start := time.Now()
	out, err := d.Notify(context.Background(), models.KindOutflow, models.ActionCreated, testExpense(), "admin")
	require.NoError(t, err)

	assert.Equal(t, ProviderMock, out.Provider)
	assert.Equal(t, 1, out.Attempts)
	assert.True(t, strings.HasPrefix(out.MessageID, "mock-"))
	assert.Contains(t, out.Text, "[Expense Added]")
	assert.Empty(t, w.got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotify_RetriesWithDoublingDelay(t *testing.T) {
	const base = 5 * time.Millisecond
	tr := &flakyTransport{failures: 2}
	d, w := newTestDispatcher(tr, base)

	out, err := d.Notify(context.Background(), models.KindInflow, models.ActionCreated, testPayment(), "treasurer")
	require.NoError(t, err)

	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, "msg-1", out.MessageID)
	assert.Equal(t, []time.Duration{base, 2 * base}, w.got)
	assert.Equal(t, 3, tr.count())
	require.Len(t, tr.sent, 1)
	assert.True(t, strings.HasPrefix(tr.sent[0], "+100->group-1: [Payment Received]"))
}

func TestNotify_GivesUpAfterMaxRetries(t *testing.T) {
	const base = time.Millisecond
	tr := &flakyTransport{failures: 100}
	d, w := newTestDispatcher(tr, base)

	out, err := d.Notify(context.Background(), models.KindOutflow, models.ActionDeleted, testExpense(), "admin")
	require.Error(t, err)
	assert.Nil(t, out)

	assert.ErrorIs(t, err, common.ErrNotification)
	var nerr *common.NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 4, nerr.Attempts)
	assert.Equal(t, "flaky", nerr.Provider)
	assert.EqualError(t, nerr.Err, "provider unavailable")

	assert.Equal(t, []time.Duration{base, 2 * base, 4 * base}, w.got)
	assert.Equal(t, 4, tr.count())
}

func TestNotify_NoRetries(t *testing.T) {
	tr := &flakyTransport{failures: 1}
	d := New(tr, Config{RetryBase: time.Millisecond}, logging.Nop())

	_, err := d.Notify(context.Background(), models.KindOutflow, models.ActionCreated, testExpense(), "admin")
	assert.ErrorIs(t, err, common.ErrNotification)
	assert.Equal(t, 1, tr.count())
}

func TestNotify_FormatErrorIsNotSent(t *testing.T) {
	tr := &flakyTransport{}
	d, _ := newTestDispatcher(tr, time.Millisecond)

	_, err := d.Notify(context.Background(), models.KindInflow, models.ActionCreated, testExpense(), "admin")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, tr.count())
}

func TestEnqueue_CloseWaits(t *testing.T) {
	tr := &flakyTransport{failures: 1}
	d, _ := newTestDispatcher(tr, time.Millisecond)

	d.Enqueue(models.KindOutflow, models.ActionCreated, testExpense(), "admin")
	d.Enqueue(models.KindInflow, models.ActionDeleted, testPayment(), "admin")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Len(t, tr.sent, 2)
}

func TestClose_HonoursContext(t *testing.T) {
	tr := &flakyTransport{block: make(chan struct{})}
	d, _ := newTestDispatcher(tr, time.Millisecond)

	d.Enqueue(models.KindOutflow, models.ActionCreated, testExpense(), "admin")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(tr.block)
	require.NoError(t, d.Close(context.Background()))
}

func TestNewTransport(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "debug")

	assert.IsType(t, &TwilioTransport{}, NewTransport(Config{Provider: "twilio"}, log))
	assert.IsType(t, &MockTransport{}, NewTransport(Config{Provider: " Mock "}, log))
	assert.IsType(t, &MockTransport{}, NewTransport(Config{}, log))
	assert.Empty(t, buf.String())

	assert.IsType(t, &MockTransport{}, NewTransport(Config{Provider: "pigeon"}, log))
	assert.Contains(t, buf.String(), "unknown notification provider")
	assert.Contains(t, buf.String(), "pigeon")
}

func TestFromConfig_DefaultRetries(t *testing.T) {
	d := FromConfig(Config{}, nil)
	assert.Equal(t, uint64(DefaultMaxRetries), d.maxRetries)
	assert.Equal(t, DefaultRetryBase, d.base)
	assert.Equal(t, ProviderMock, d.transport.Name())
}
