// Package notify announces ledger mutations over a messaging channel.
//
// Delivery is best-effort: a Dispatcher retries a failing transport with
// exponential backoff and then gives up with an error that callers only
// log. It never reaches back into the store.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

const (
	DefaultRetryBase  = time.Second
	DefaultMaxRetries = 3
	defaultTimeout    = 2 * time.Minute
)

// Config selects the transport and the retry policy.
type Config struct {
	Provider string
	// From and To are the sender and the recipient, e.g. a WhatsApp
	// number or group id.
	From string
	To   string

	Twilio TwilioConfig

	// RetryBase is the wait before the first retry; it doubles for every
	// retry after that.
	RetryBase  time.Duration
	MaxRetries int
	// Timeout bounds one Enqueue'd notification, retries included.
	Timeout time.Duration
}

// Outcome describes a delivered notification.
type Outcome struct {
	Provider  string `json:"provider"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	Attempts  int    `json:"attempts"`
}

type Dispatcher struct {
	transport  Transport
	from, to   string
	base       time.Duration
	maxRetries uint64
	timeout    time.Duration

	log logging.Logger
	// onRetry, when set, is called before every wait.
	onRetry func(retry int, wait time.Duration)

	inflight sync.WaitGroup
}

func New(t Transport, cfg Config, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	if t == nil {
		t = NewMockTransport(log)
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRetryBase
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Dispatcher{
		transport:  t,
		from:       cfg.From,
		to:         cfg.To,
		base:       cfg.RetryBase,
		maxRetries: uint64(cfg.MaxRetries),
		timeout:    cfg.Timeout,
		log:        log.With("module", "notify", "provider", t.Name()),
	}
}

// FromConfig builds the transport named in cfg and a Dispatcher over it.
// A zero MaxRetries means the default of three.
func FromConfig(cfg Config, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return New(NewTransport(cfg, log), cfg, log)
}

// Notify formats the announcement and delivers it, retrying transport
// failures. After the last retry it returns a *common.NotificationError.
func (d *Dispatcher) Notify(ctx context.Context, kind models.Kind, action models.Action, rec models.Record, actor string) (*Outcome, error) {
	text, err := Format(kind, action, rec, actor)
	if err != nil {
		return nil, err
	}

	attempts := 0
	var id string
	err = retry.Do(ctx, d.backoff(ctx), func(ctx context.Context) error {
		attempts++
		var err error
		id, err = d.transport.Send(ctx, text, d.from, d.to)
		if err != nil {
			d.log.Warn(ctx, "notification attempt failed", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		nerr := &common.NotificationError{Provider: d.transport.Name(), Attempts: attempts, Err: err}
		d.log.Error(ctx, "notification failed", "kind", kind, "action", action, "record_id", rec.Common().ID, "attempts", attempts, "error", err)
		return nil, nerr
	}

	d.log.Debug(ctx, "notification sent", "kind", kind, "action", action, "message_id", id, "attempts", attempts)
	return &Outcome{Provider: d.transport.Name(), MessageID: id, Text: text, Attempts: attempts}, nil
}

// backoff waits base, 2*base, 4*base... before retries 1, 2, 3...
func (d *Dispatcher) backoff(ctx context.Context) retry.Backoff {
	next := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.base))
	n := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		wait, stop := next.Next()
		if stop {
			return 0, true
		}
		n++
		d.log.Info(ctx, "retrying notification", "retry", n, "wait", wait)
		if d.onRetry != nil {
			d.onRetry(n, wait)
		}
		return wait, false
	})
}

// Enqueue runs Notify in the background. The outcome is only logged.
func (d *Dispatcher) Enqueue(kind models.Kind, action models.Action, rec models.Record, actor string) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if _, err := d.Notify(ctx, kind, action, rec, actor); err != nil && !errors.Is(err, common.ErrNotification) {
			d.log.Error(ctx, "notification not sent", "kind", kind, "action", action, "error", err)
		}
	}()
}

// Close waits for enqueued notifications or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
