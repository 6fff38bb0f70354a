package audit

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// Recorder writes journal entries in the background so a slow database
// never delays a request.
type Recorder struct {
	journal Journal
	log     logging.Logger
	now     func() time.Time
	timeout time.Duration

	inflight sync.WaitGroup
}

func NewRecorder(j Journal, log logging.Logger) *Recorder {
	if j == nil {
		j = NopJournal{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Recorder{journal: j, log: log.With("module", "audit"), now: time.Now, timeout: 10 * time.Second}
}

func (r *Recorder) Journal() Journal { return r.journal }

// Enqueue journals one mutation. Failures are logged.
func (r *Recorder) Enqueue(kind models.Kind, action models.Action, rec models.Record, actor string) {
	e, err := NewEntry(kind, action, rec, actor, r.now())
	if err != nil {
		r.log.Error(context.Background(), "audit entry not built", "error", err)
		return
	}

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.journal.Record(ctx, e); err != nil {
			r.log.Error(ctx, "audit entry not recorded", "record_id", e.RecordID, "action", e.Action, "error", err)
		}
	}()
}

// Close waits for pending writes or until ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
