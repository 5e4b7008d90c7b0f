package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.DocumentStore = (*documentStore)(nil)

// querier is the subset of pgxpool.Pool the store uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

type documentStore struct {
	db querier
}

func NewDocumentStore(pool *pgxpool.Pool) *documentStore {
	return &documentStore{db: pool}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS giveaway_documents (
  name       TEXT PRIMARY KEY,
  body       JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the documents table if it does not exist.
func (s *documentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *documentStore) Load(ctx context.Context, name string) ([]byte, error) {
	const q = `SELECT body::text FROM giveaway_documents WHERE name = $1;`
	var body string
	if err := s.db.QueryRow(ctx, q, name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return []byte(body), nil
}

// Save replaces the whole document; there is no merge with the stored body.
func (s *documentStore) Save(ctx context.Context, name string, body []byte) error {
	const q = `
INSERT INTO giveaway_documents (name, body, updated_at)
VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (name) DO UPDATE SET
  body = EXCLUDED.body,
  updated_at = EXCLUDED.updated_at;
`
	if _, err := s.db.Exec(ctx, q, name, string(body)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
