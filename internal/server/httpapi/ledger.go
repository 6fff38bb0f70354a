package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// resource serves CRUD routes for one ledger table.
type resource[R models.Record, P any] struct {
	server      *Server
	kind        models.Kind
	noun        string
	ledger      Ledger[R, P]
	decodeNew   func(*http.Request) (R, error)
	decodePatch func(*http.Request) (P, error)
}

func (res *resource[R, P]) mount(r chi.Router) {
	r.Get("/", res.list)
	r.Get("/{id}", res.get)

	r.Group(func(r chi.Router) {
		r.Use(requireWriter)
		r.Post("/", res.create)
		r.Put("/{id}", res.update)
		r.Delete("/{id}", res.remove)
	})
}

func (res *resource[R, P]) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	fields, err := res.decodeNew(r)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	rec, err := res.ledger.Create(r.Context(), fields, actor.Username)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	res.server.log.Info(r.Context(), res.noun+" created", "id", rec.Common().ID, "actor", actor.Username)
	res.announce(models.ActionCreated, rec, actor.Username)
	writeJSON(w, http.StatusCreated, rec)
}

func (res *resource[R, P]) list(w http.ResponseWriter, r *http.Request) {
	from, err := dateParam(r, "from")
	if err != nil {
		res.server.fail(w, r, err)
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	seq, err := res.ledger.List(r.Context(), from, to)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	out := make([]R, 0)
	for rec := range seq {
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (res *resource[R, P]) get(w http.ResponseWriter, r *http.Request) {
	rec, err := res.ledger.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		res.server.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (res *resource[R, P]) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	patch, err := res.decodePatch(r)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	rec, err := res.ledger.Update(r.Context(), chi.URLParam(r, "id"), patch, actor.Username)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	res.server.log.Info(r.Context(), res.noun+" updated", "id", rec.Common().ID, "actor", actor.Username)
	res.announce(models.ActionUpdated, rec, actor.Username)
	writeJSON(w, http.StatusOK, rec)
}

func (res *resource[R, P]) remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	rec, err := res.ledger.SoftDelete(r.Context(), chi.URLParam(r, "id"), actor.Username)
	if err != nil {
		res.server.fail(w, r, err)
		return
	}

	res.server.log.Info(r.Context(), res.noun+" deleted", "id", rec.Common().ID, "actor", actor.Username)
	res.announce(models.ActionDeleted, rec, actor.Username)
	w.WriteHeader(http.StatusNoContent)
}

func (res *resource[R, P]) announce(action models.Action, rec R, actor string) {
	for _, a := range res.server.deps.Announcers {
		a.Enqueue(res.kind, action, rec, actor)
	}
}

func dateParam(r *http.Request, name string) (*models.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, common.Invalid(name, "must be a valid date")
	}
	return &d, nil
}
