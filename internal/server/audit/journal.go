// Package audit keeps an append-only journal of ledger mutations in
// PostgreSQL. The workbook stays the source of truth; the journal answers
// "who changed what, when" without digging through backups.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mysociety/internal/dbx"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

const DefaultListLimit = 100

// Journal stores audit entries.
type Journal interface {
	Record(ctx context.Context, e models.AuditEntry) error
	// List returns entries newest first. An empty recordID lists all.
	List(ctx context.Context, recordID string, limit int) ([]models.AuditEntry, error)
}

// NewEntry builds the journal entry for a mutation; the record is kept as
// its JSON form.
func NewEntry(kind models.Kind, action models.Action, rec models.Record, actor string, at time.Time) (models.AuditEntry, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return models.AuditEntry{}, fmt.Errorf("marshal record: %w", err)
	}
	return models.AuditEntry{
		ID:       uuid.NewString(),
		At:       at.UTC(),
		Actor:    actor,
		Kind:     kind,
		Action:   action,
		RecordID: rec.Common().ID,
		Payload:  payload,
	}, nil
}

type PostgresJournal struct {
	db dbx.DBTX
}

func NewPostgresJournal(db dbx.DBTX) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) Record(ctx context.Context, e models.AuditEntry) error {
	query := `INSERT INTO audit_log (id, at, actor, kind, action, record_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := j.db.ExecContext(ctx, query, e.ID, e.At, e.Actor, string(e.Kind), string(e.Action), e.RecordID, string(e.Payload))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (j *PostgresJournal) List(ctx context.Context, recordID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if recordID == "" {
		query := `SELECT id, at, actor, kind, action, record_id, payload FROM audit_log
			ORDER BY at DESC LIMIT $1`
		rows, err = j.db.QueryContext(ctx, query, limit)
	} else {
		query := `SELECT id, at, actor, kind, action, record_id, payload FROM audit_log
			WHERE record_id = $1 ORDER BY at DESC LIMIT $2`
		rows, err = j.db.QueryContext(ctx, query, recordID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	defer rows.Close()

	result := []models.AuditEntry{}
	for rows.Next() {
		var (
			e            models.AuditEntry
			kind, action string
		)
		if err := rows.Scan(&e.ID, &e.At, &e.Actor, &kind, &action, &e.RecordID, &e.Payload); err != nil {
			return nil, err
		}
		e.Kind, e.Action = models.Kind(kind), models.Action(action)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// NopJournal is used when no database is configured.
type NopJournal struct{}

func (NopJournal) Record(context.Context, models.AuditEntry) error { return nil }

func (NopJournal) List(context.Context, string, int) ([]models.AuditEntry, error) {
	return []models.AuditEntry{}, nil
}
