package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	rc, err := s.deps.Archive.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(s.deps.Archive.Path())))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		s.log.Error(r.Context(), "download interrupted", "error", err)
	}
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Archive.CreateBackup(r.Context())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no file to backup")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backupResponse{Message: "Backup created", Filename: b.Name, Path: b.Path})
}

func (s *Server) listBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.deps.Archive.ListBackups()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

func (s *Server) backupURL(w http.ResponseWriter, r *http.Request) {
	if s.deps.Presigner == nil {
		writeError(w, http.StatusNotImplemented, "backup mirror is not configured")
		return
	}

	b, err := s.deps.Archive.LookupBackup(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	url, err := s.deps.Presigner.PresignGetURL(r.Context(), b.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backupURLResponse{Filename: b.Name, URL: url})
}

func (s *Server) auditTrail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Audit == nil {
		writeError(w, http.StatusNotImplemented, "audit journal is not configured")
		return
	}

	// An empty record_id lists the most recent entries of all records.
	recordID := r.URL.Query().Get("record_id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, common.Invalid("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.deps.Audit.List(r.Context(), recordID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:       e.ID,
			At:       e.At.UTC().Format(time.RFC3339Nano),
			Actor:    e.Actor,
			Kind:     e.Kind,
			Action:   e.Action,
			RecordID: e.RecordID,
			Payload:  e.Payload,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
