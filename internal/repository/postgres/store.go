package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"eventlottery/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS counters (
	collection TEXT PRIMARY KEY,
	value      BIGINT NOT NULL
);
`

// Open connects to Postgres through lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Store keeps every collection in one JSONB documents table. Ids come from a
// counters row incremented by a single upsert, so concurrent callers never share an id.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB: db,
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	query := `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var body []byte
	err := s.DB.QueryRowContext(ctx, query, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	query := `
		INSERT INTO documents (collection, id, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`
	_, err := s.DB.ExecContext(ctx, query, collection, id, string(doc))
	return err
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	res, err := s.DB.ExecContext(ctx, query, collection, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	query := `
		SELECT body
		FROM documents
		WHERE collection = $1
		ORDER BY id
	`
	rows, err := s.DB.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = [][]byte{}
	}
	return out, nil
}

func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	query := `
		INSERT INTO counters (collection, value)
		VALUES ($1, 1)
		ON CONFLICT (collection) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`
	var id int
	if err := s.DB.QueryRowContext(ctx, query, collection).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Clear deletes the collection's documents and counter in one transaction.
func (s *Store) Clear(ctx context.Context, collection string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, collection); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM counters WHERE collection = $1`, collection); err != nil {
		return err
	}
	return tx.Commit()
}
