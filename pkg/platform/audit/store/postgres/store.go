package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "chronoledger/pkg/domain"
	audit "chronoledger/pkg/platform/audit"
)

// Store implements audit.Store on a Postgres table. Each event gets a uuid
// primary key and a bigserial sequence number that fixes append order.
type Store struct {
	db *sql.DB
}

// New creates a Postgres audit store. Call EnsureSchema once before use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const schema = `
	CREATE TABLE IF NOT EXISTS ledger_audit_events (
		seq        BIGSERIAL PRIMARY KEY,
		id         UUID NOT NULL UNIQUE,
		timestamp  TIMESTAMPTZ NOT NULL,
		action     TEXT NOT NULL,
		kind       TEXT NOT NULL,
		record_id  BIGINT NOT NULL,
		principal  TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT '',
		detail     TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS ledger_audit_events_record_idx
		ON ledger_audit_events (kind, record_id, seq);
`

// EnsureSchema creates the audit table and index if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts an audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO ledger_audit_events (id, timestamp, action, kind, record_id, principal, request_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.Action,
		string(event.Kind),
		int64(event.RecordID),
		string(event.Principal),
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectColumns = `SELECT timestamp, action, kind, record_id, principal, request_id, detail FROM ledger_audit_events`

// ListAll returns every event in append order.
func (s *Store) ListAll(ctx context.Context) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByRecord returns the events for one record in append order.
func (s *Store) ListByRecord(ctx context.Context, kind audit.RecordKind, recordID uint64) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE kind = $1 AND record_id = $2 ORDER BY seq`,
		string(kind), int64(recordID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns at most limit of the newest events, oldest first. A
// non-positive limit returns everything.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		return s.ListAll(ctx)
	}
	query := `
		SELECT timestamp, action, kind, record_id, principal, request_id, detail FROM (
			SELECT seq, timestamp, action, kind, record_id, principal, request_id, detail
			FROM ledger_audit_events
			ORDER BY seq DESC
			LIMIT $1
		) recent
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e         audit.Event
			kind      string
			recordID  int64
			principal string
		)
		if err := rows.Scan(&e.Timestamp, &e.Action, &kind, &recordID, &principal, &e.RequestID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Kind = audit.RecordKind(kind)
		e.RecordID = uint64(recordID)
		e.Principal = id.Principal(principal)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
