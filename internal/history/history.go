package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"sqladvisor-go/internal/model"
)

// Store records completed analyses. Writes are best effort and reads serve
// only the history endpoint; analysis output never depends on a Store.
type Store interface {
	Save(ctx context.Context, rec *model.HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]*model.HistoryRecord, error)
}

const memoryStoreCap = 200

// MemoryStore keeps the most recent records in process memory. Used when no
// DATABASE_URL is configured, and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []*model.HistoryRecord
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends a record, evicting the oldest beyond the cap.
func (s *MemoryStore) Save(ctx context.Context, rec *model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > memoryStoreCap {
		s.records = s.records[len(s.records)-memoryStoreCap:]
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]*model.HistoryRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// PostgresStore persists history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, verifies the connection, and ensures the
// history table exists.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id BIGSERIAL PRIMARY KEY,
		dbms TEXT NOT NULL,
		sql_text TEXT NOT NULL,
		summary TEXT NOT NULL,
		findings INT NOT NULL,
		augmented BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure history table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Save inserts one record.
func (s *PostgresStore) Save(ctx context.Context, rec *model.HistoryRecord) error {
	query := `
	INSERT INTO analysis_history (dbms, sql_text, summary, findings, augmented, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.DBMS, rec.SQLText, rec.Summary, rec.Findings, rec.Augmented, rec.CreatedAt)
	return err
}

// Recent returns up to limit records, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	query := `
	SELECT dbms, sql_text, summary, findings, augmented, created_at
	FROM analysis_history
	ORDER BY id DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.HistoryRecord
	for rows.Next() {
		rec := &model.HistoryRecord{}
		if err := rows.Scan(&rec.DBMS, &rec.SQLText, &rec.Summary, &rec.Findings, &rec.Augmented, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
