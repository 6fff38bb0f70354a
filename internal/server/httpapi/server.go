// Package httpapi exposes the ledger over a JSON HTTP API.
//
// Routes:
//
//	GET    /health
//	POST   /api/v1/auth/login
//	GET    /api/v1/auth/me
//	POST   /api/v1/expenses          GET /api/v1/expenses?from=&to=
//	GET    /api/v1/expenses/{id}     PUT, DELETE /api/v1/expenses/{id}
//	       (same for /api/v1/payments)
//	GET    /api/v1/admin/file/download
//	POST   /api/v1/admin/backup
//	GET    /api/v1/admin/backups
//	GET    /api/v1/admin/backups/{name}/url
//	GET    /api/v1/admin/audit?record_id=
//
// Requests under /api/v1 are rate limited per client IP when configured.
// Everything under /api/v1 except login needs a bearer token. Mutations
// and admin routes need the admin or treasurer role.
package httpapi

import (
	"context"
	"errors"
	"io"
	"iter"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
	"github.com/dmitrijs2005/mysociety/internal/server/workbook"
)

// Authenticator issues and checks access tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, models.User, error)
	Verify(token string) (models.Actor, error)
	Lookup(username string) (models.User, bool)
}

// Ledger is one table of records.
type Ledger[R, P any] interface {
	Create(ctx context.Context, fields R, actor string) (R, error)
	List(ctx context.Context, from, to *models.Date) (iter.Seq[R], error)
	GetByID(ctx context.Context, id string) (R, error)
	Update(ctx context.Context, id string, patch P, actor string) (R, error)
	SoftDelete(ctx context.Context, id string, actor string) (R, error)
}

// Archive gives access to the workbook file and its backups.
type Archive interface {
	Path() string
	Snapshot(ctx context.Context) (io.ReadCloser, error)
	CreateBackup(ctx context.Context) (*workbook.Backup, error)
	ListBackups() ([]workbook.Backup, error)
	LookupBackup(name string) (*workbook.Backup, error)
}

// Announcer is told about every successful mutation. Implementations must
// not block.
type Announcer interface {
	Enqueue(kind models.Kind, action models.Action, rec models.Record, actor string)
}

// Presigner hands out temporary download links for mirrored backups.
type Presigner interface {
	PresignGetURL(ctx context.Context, name string) (string, error)
}

// AuditLog lists journaled mutations of one record.
type AuditLog interface {
	List(ctx context.Context, recordID string, limit int) ([]models.AuditEntry, error)
}

type Deps struct {
	Auth     Authenticator
	Expenses Ledger[models.Expense, models.ExpensePatch]
	Payments Ledger[models.Payment, models.PaymentPatch]
	Archive  Archive

	// Announcers are optional.
	Announcers []Announcer
	// Presigner is nil when backups are not mirrored.
	Presigner Presigner
	// Audit is nil when the journal is disabled.
	Audit AuditLog

	AllowedOrigins []string
	RateLimit      RateLimit
	Logger         logging.Logger
	Now            func() time.Time
}

// RateLimit caps the /api/v1 requests a client IP may make per window.
// The zero value disables limiting.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

func (l RateLimit) enabled() bool { return l.Requests > 0 && l.Window > 0 }

type Server struct {
	deps    Deps
	log     logging.Logger
	now     func() time.Time
	handler http.Handler
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		deps: deps,
		log:  deps.Logger.With("module", "http_server"),
		now:  deps.Now,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on addr until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listen, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen, shutdownTimeout)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
