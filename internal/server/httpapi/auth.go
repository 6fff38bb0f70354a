package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Username == "" {
		s.fail(w, r, common.Invalid("username", "is required"))
		return
	}
	if req.Password == "" {
		s.fail(w, r, common.Invalid("password", "is required"))
		return
	}

	token, user, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			s.log.Warn(r.Context(), "login rejected", "username", req.Username)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.fail(w, r, err)
		return
	}

	s.log.Info(r.Context(), "logged in", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	if user, ok := s.deps.Auth.Lookup(actor.Username); ok {
		writeJSON(w, http.StatusOK, user)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}
