// Package sqlite implements the local document store on an embedded SQLite
// database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/migration"
	"github.com/julianstephens/carelog/migrations"
)

var errNotOpen = errors.New("storage not opened, call Init or Load first")

type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

var _ docstore.Store = (*Store)(nil)

func New(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and checks its schema version.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db

	return s.validateSchemaVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	_, err = migration.NewRunner(s.db, subFS).ApplyMigrations()
	return err
}

func (s *Store) validateSchemaVersion() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS).ValidateVersion()
}

func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying database connection, or nil before Init/Load.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	if err := docstore.ValidateKey(collection, id); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	return unmarshal(collection, id, data)
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Where) ([]docstore.Snapshot, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	if collection == "" {
		return nil, docstore.ErrInvalidKey
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? ORDER BY id", collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		doc, err := unmarshal(collection, id, data)
		if err != nil {
			return nil, err
		}
		if docstore.Matches(doc, filters) {
			out = append(out, docstore.Snapshot{ID: id, Data: doc})
		}
	}
	return out, rows.Err()
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Document, opts docstore.SetOptions) error {
	if s.db == nil {
		return errNotOpen
	}
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	doc := fields
	if opts.Merge {
		var existing string
		err := tx.QueryRowContext(ctx,
			"SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
		default:
			current, err := unmarshal(collection, id, existing)
			if err != nil {
				return err
			}
			doc = docstore.MergeFields(current, fields)
		}
	}
	if doc == nil {
		doc = docstore.Document{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(data), now, now); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}

	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if s.db == nil {
		return errNotOpen
	}
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
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

func unmarshal(collection, id, data string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, nil
}
