// Package postgres implements the remote document store on a PostgreSQL
// jsonb table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/migration"
	"github.com/julianstephens/carelog/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var _ docstore.Store = (*Store)(nil)

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr)}
}

// NewWithDB wraps an already opened connection. Migrations are not run.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects, creates the application schema and applies migrations.
func Open(connStr string) (*Store, error) {
	s := New(connStr)
	if err := s.Init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.db = db

	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	if _, err := migration.NewRunnerWithDialect(s.db, subFS, migration.Postgres).ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	return decode(collection, id, data)
}

// Query pushes each filter down as a jsonb equality on the top-level field,
// matching docstore.Matches for scalar and structured values alike.
func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Where) ([]docstore.Snapshot, error) {
	if collection == "" {
		return nil, docstore.ErrInvalidKey
	}

	query := "SELECT id, data FROM documents WHERE collection = $1"
	args := []any{collection}
	for _, f := range filters {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter %s: %w", f.Field, err)
		}
		query += fmt.Sprintf(" AND data -> $%d = $%d::jsonb", len(args)+1, len(args)+2)
		args = append(args, f.Field, string(value))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		doc, err := decode(collection, id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

// Set upserts a document. Merge uses the jsonb || operator, which
// replaces top-level keys of the stored document.
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Document, opts docstore.SetOptions) error {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}
	if fields == nil {
		fields = docstore.Document{}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	update := "excluded.data"
	if opts.Merge {
		update = "documents.data || excluded.data"
	}
	query := `INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, now(), now())
		ON CONFLICT (collection, id) DO UPDATE SET data = ` + update + `, updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, collection, id, string(data)); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func decode(collection, id string, data []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, nil
}
