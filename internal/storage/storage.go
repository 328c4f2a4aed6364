// Package storage opens the local and remote document stores and keeps the
// application settings document.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/docstore/postgres"
	redisstore "github.com/julianstephens/carelog/internal/docstore/redis"
	"github.com/julianstephens/carelog/internal/docstore/sqlite"
)

type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindRedis    Kind = "redis"
)

// KindOf classifies a connection string. Anything that is not a postgres
// or redis URL or DSN is treated as a SQLite file path.
func KindOf(dsn string) Kind {
	switch {
	case postgres.IsConnString(dsn):
		return KindPostgres
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return KindRedis
	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		return KindPostgres
	default:
		return KindSQLite
	}
}

// OpenLocal loads an initialized SQLite store.
func OpenLocal(path string) (*sqlite.Store, error) {
	s := sqlite.New(path)
	if err := s.Load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// InitLocal creates or migrates the SQLite store at path.
func InitLocal(path string) (*sqlite.Store, error) {
	s := sqlite.New(path)
	if err := s.Init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenRemote opens the store answers sync to. An empty dsn means the
// local store doubles as the remote; closing the returned store then
// leaves local open.
func OpenRemote(ctx context.Context, dsn string, local docstore.Store) (docstore.Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return shared{local}, nil
	}

	switch KindOf(dsn) {
	case KindPostgres:
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.Open(dsn)
	case KindRedis:
		return redisstore.Dial(ctx, dsn)
	default:
		return InitLocal(dsn)
	}
}

// Describe returns a form of dsn that is safe to print.
func Describe(dsn string) string {
	if strings.TrimSpace(dsn) == "" {
		return "local"
	}
	switch KindOf(dsn) {
	case KindPostgres, KindRedis:
		u, err := url.Parse(dsn)
		if err != nil || u.Host == "" {
			return string(KindOf(dsn))
		}
		return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
	default:
		return dsn
	}
}

// HasEmbeddedCredentials reports whether dsn carries a password that
// should be moved to the keyring or a pgpass file.
func HasEmbeddedCredentials(dsn string) bool {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			return true
		}
	}
	for _, part := range strings.Fields(dsn) {
		if strings.HasPrefix(strings.ToLower(part), "password=") {
			return true
		}
	}
	return false
}

type shared struct {
	docstore.Store
}

func (shared) Close() error { return nil }
