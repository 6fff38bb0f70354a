package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", common.AuthorizationHeaderName, "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	expenses := &resource[models.Expense, models.ExpensePatch]{
		server:      s,
		kind:        models.KindOutflow,
		noun:        "expense",
		ledger:      s.deps.Expenses,
		decodeNew:   decodeNewExpense,
		decodePatch: decodeExpensePatch,
	}
	payments := &resource[models.Payment, models.PaymentPatch]{
		server:      s,
		kind:        models.KindInflow,
		noun:        "payment",
		ledger:      s.deps.Payments,
		decodeNew:   decodeNewPayment,
		decodePatch: decodePaymentPatch,
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.deps.RateLimit.enabled() {
			r.Use(s.rateLimit(s.deps.RateLimit))
		}

		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.me)

			r.Route("/expenses", expenses.mount)
			r.Route("/payments", payments.mount)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireWriter)

				r.Get("/file/download", s.downloadFile)
				r.Post("/backup", s.createBackup)
				r.Get("/backups", s.listBackups)
				r.Get("/backups/{name}/url", s.backupURL)
				r.Get("/audit", s.auditTrail)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}
