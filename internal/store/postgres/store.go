// Package postgres implements the store contracts on PostgreSQL via
// database/sql and lib/pq.
//
// Records live in one table with their attributes as JSONB; attachment
// metadata lives in a second table keyed by owner and collection. A save
// writes the parent row and applies the queued post-commit actions inside
// one transaction, so a failing action rolls back the parent write too.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lib/pq"
	"github.com/panelforge/panelforge/internal/store"
)

const (
	recordsTable     = "panelforge_records"
	attachmentsTable = "panelforge_attachments"
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// Store is a PostgreSQL-backed record and attachment store.
type Store struct {
	dsn    string
	openDB sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// New returns a store for the given DSN. The connection is opened and the
// schema ensured lazily on first use.
func New(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: dsn must not be empty")
	}
	return &Store{dsn: dsn, openDB: sql.Open}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureReady(ctx context.Context) error {
	s.initOnce.Do(func() {
		db, err := s.openDB("postgres", s.dsn)
		if err != nil {
			s.initErr = err
			return
		}
		s.db = db
		s.initErr = s.ensureSchema(ctx)
	})
	return s.initErr
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			resource TEXT NOT NULL,
			attrs JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, recordsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL DEFAULT 0,
			collection TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0,
			props JSONB NOT NULL DEFAULT '{}'::jsonb
		)`, attachmentsTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_collection_idx
			ON %s (owner_id, collection)`, attachmentsTable, attachmentsTable),
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// Create implements store.RecordStore.
func (s *Store) Create(ctx context.Context, resource string, attrs map[string]any, actions []store.PostCommitAction) (store.Record, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encoding attributes: %w", err)
	}

	var rec store.Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		query := fmt.Sprintf(
			"INSERT INTO %s (resource, attrs) VALUES ($1, $2) RETURNING id", recordsTable)
		if err := tx.QueryRowContext(ctx, query, resource, string(payload)).Scan(&id); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}

		rec = &record{id: id, attrs: attrs}
		return applyActions(ctx, tx, rec, actions)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update implements store.RecordStore.
func (s *Store) Update(ctx context.Context, resource string, id int64, attrs map[string]any, actions []store.PostCommitAction) (store.Record, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encoding attributes: %w", err)
	}

	var rec store.Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(
			"UPDATE %s SET attrs = $1, updated_at = NOW() WHERE id = $2 AND resource = $3", recordsTable)
		result, err := tx.ExecContext(ctx, query, string(payload), id, resource)
		if err != nil {
			return fmt.Errorf("updating record: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("record %d of resource %q not found", id, resource)
		}

		rec = &record{id: id, attrs: attrs}
		return applyActions(ctx, tx, rec, actions)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get implements store.RecordStore.
func (s *Store) Get(ctx context.Context, resource string, id int64) (store.Record, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT attrs FROM %s WHERE id = $1 AND resource = $2", recordsTable)
	var payload string
	err := s.db.QueryRowContext(ctx, query, id, resource).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d of resource %q not found", id, resource)
	}
	if err != nil {
		return nil, err
	}

	var attrs map[string]any
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return &record{id: id, attrs: attrs}, nil
}

// Media implements store.RecordStore.
func (s *Store) Media() store.AttachmentStore {
	return &media{acquire: func(ctx context.Context) (querier, error) {
		if err := s.ensureReady(ctx); err != nil {
			return nil, err
		}
		return s.db, nil
	}}
}

// AddAttachment registers a fresh attachment row (typically unowned) and
// returns its identifier. The upload endpoint of the embedding application
// owns this step.
func (s *Store) AddAttachment(ctx context.Context, att store.Attachment) (int64, error) {
	if err := s.ensureReady(ctx); err != nil {
		return 0, err
	}

	props, err := json.Marshal(att.Props)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (owner_id, collection, file_name, position, props) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		attachmentsTable)
	var id int64
	err = s.db.QueryRowContext(ctx, query, att.OwnerID, att.Collection, att.FileName, att.Position, string(props)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// applyActions runs the queued post-commit actions in enqueue order against
// a transaction-scoped attachment view.
func applyActions(ctx context.Context, tx *sql.Tx, rec store.Record, actions []store.PostCommitAction) error {
	txMedia := &media{acquire: func(context.Context) (querier, error) { return tx, nil }}
	for _, action := range actions {
		if err := action.Apply(ctx, txMedia, rec); err != nil {
			return fmt.Errorf("post-commit action failed: %w", err)
		}
	}
	return nil
}

// querier abstracts *sql.DB and *sql.Tx for the attachment view.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// media implements store.AttachmentStore on top of a querier acquired per
// call: either the shared pool (readiness ensured lazily) or a transaction.
type media struct {
	acquire func(ctx context.Context) (querier, error)
}

func (m *media) CountByCollection(ctx context.Context, ownerID int64, collection string) (int, error) {
	q, err := m.acquire(ctx)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE owner_id = $1 AND collection = $2", attachmentsTable)
	var count int
	if err := q.QueryRowContext(ctx, query, ownerID, collection).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (m *media) ListByCollection(ctx context.Context, ownerID int64, collection string) ([]store.Attachment, error) {
	q, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"SELECT id, owner_id, collection, file_name, position, props FROM %s WHERE owner_id = $1 AND collection = $2 ORDER BY position, id",
		attachmentsTable)
	rows, err := q.QueryContext(ctx, query, ownerID, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []store.Attachment
	for rows.Next() {
		var att store.Attachment
		var props string
		if err := rows.Scan(&att.ID, &att.OwnerID, &att.Collection, &att.FileName, &att.Position, &props); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(props), &att.Props); err != nil {
			return nil, fmt.Errorf("decoding attachment props: %w", err)
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

func (m *media) Delete(ctx context.Context, collection string, ids []int64) error {
	q, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE collection = $1 AND id = ANY($2)", attachmentsTable)
	_, err = q.ExecContext(ctx, query, collection, pq.Array(ids))
	return err
}

func (m *media) Reparent(ctx context.Context, ids []int64, ownerID int64, collection string) error {
	q, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		"UPDATE %s SET owner_id = $1, collection = $2 WHERE id = ANY($3)", attachmentsTable)
	result, err := q.ExecContext(ctx, query, ownerID, collection, pq.Array(ids))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(ids)) {
		return &store.MissingAttachmentError{Collection: collection}
	}
	return nil
}

func (m *media) SetPosition(ctx context.Context, id int64, position int) error {
	q, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET position = $1 WHERE id = $2", attachmentsTable)
	_, err = q.ExecContext(ctx, query, position, id)
	return err
}

func (m *media) MergeProps(ctx context.Context, id int64, props map[string]any) error {
	q, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(props)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET props = props || $1::jsonb WHERE id = $2", attachmentsTable)
	_, err = q.ExecContext(ctx, query, string(payload), id)
	return err
}

// record is the postgres-backed store.Record.
type record struct {
	id    int64
	attrs map[string]any
}

func (r *record) ID() int64 { return r.id }

func (r *record) Get(key string) any { return r.attrs[key] }

func (r *record) Set(key string, value any) {
	if r.attrs == nil {
		r.attrs = map[string]any{}
	}
	r.attrs[key] = value
}

func (r *record) Has(key string) bool {
	_, ok := r.attrs[key]
	return ok
}

func (r *record) Attributes() map[string]any { return r.attrs }
