package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

const kvSlotsSchema = `CREATE TABLE IF NOT EXISTS kv_slots (
	slot_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLSlot stores the slot as one row of the kv_slots table. Queries are written with '?'
// and rebound for the driver, so SQLite and PostgreSQL share them.
type SQLSlot struct {
	db  *sqlx.DB
	key string
	now func() time.Time
}

// NewSQLSlot constructs a SQL backed slot.
func NewSQLSlot(db *sqlx.DB, key string) *SQLSlot {
	return &SQLSlot{db: db, key: key, now: time.Now}
}

// EnsureSchema creates the kv_slots table when missing.
func (s *SQLSlot) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, kvSlotsSchema); err != nil {
		return fmt.Errorf("create kv_slots: %w", err)
	}
	return nil
}

// Read fetches the stored payload.
func (s *SQLSlot) Read(ctx context.Context) ([]byte, error) {
	query := s.db.Rebind(`SELECT payload FROM kv_slots WHERE slot_key = ?`)
	var payload string
	if err := s.db.GetContext(ctx, &payload, query, s.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}
	return []byte(payload), nil
}

// Write upserts the stored payload.
func (s *SQLSlot) Write(ctx context.Context, data []byte) error {
	query := s.db.Rebind(`INSERT INTO kv_slots (slot_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (slot_key)
DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, s.key, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return nil
}

// Remove deletes the row.
func (s *SQLSlot) Remove(ctx context.Context) error {
	query := s.db.Rebind(`DELETE FROM kv_slots WHERE slot_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, s.key); err != nil {
		return fmt.Errorf("remove slot %s: %w", s.key, err)
	}
	return nil
}
