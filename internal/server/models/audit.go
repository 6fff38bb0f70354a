package models

import "time"

// AuditEntry is one row of the mutation journal.
type AuditEntry struct {
	ID       string
	At       time.Time
	Actor    string
	Kind     Kind
	Action   Action
	RecordID string
	Payload  []byte
}
