// Package redis implements the remote document store with one Redis hash
// per collection. Hash fields are document ids and values are JSON.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
)

type Store struct {
	client *redis.Client
	prefix string
}

var _ docstore.Store = (*Store)(nil)

func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Dial connects to a redis:// or rediss:// URL and checks the connection.
func Dial(ctx context.Context, rawURL string) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = constants.RedisDialTimeout

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(client, constants.RedisKeyPrefix), nil
}

func (s *Store) key(collection string) string {
	return s.prefix + collection
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return nil, err
	}

	raw, err := s.client.HGet(ctx, s.key(collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	return decode(collection, id, raw)
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Where) ([]docstore.Snapshot, error) {
	if collection == "" {
		return nil, docstore.ErrInvalidKey
	}

	all, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []docstore.Snapshot
	for _, id := range ids {
		doc, err := decode(collection, id, all[id])
		if err != nil {
			return nil, err
		}
		if docstore.Matches(doc, filters) {
			out = append(out, docstore.Snapshot{ID: id, Data: doc})
		}
	}
	return out, nil
}

// Set writes a document. Merges read and write under WATCH so a concurrent
// writer forces a retry instead of losing fields.
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Document, opts docstore.SetOptions) error {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}
	if fields == nil {
		fields = docstore.Document{}
	}
	key := s.key(collection)

	if !opts.Merge {
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
		}
		if err := s.client.HSet(ctx, key, id, data).Err(); err != nil {
			return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
		}
		return nil
	}

	merge := func(tx *redis.Tx) error {
		doc := fields
		raw, err := tx.HGet(ctx, key, id).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			current, err := decode(collection, id, raw)
			if err != nil {
				return err
			}
			doc = docstore.MergeFields(current, fields)
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, data)
			return nil
		})
		return err
	}

	for i := 0; i < constants.RedisMaxTxRetry; i++ {
		err := s.client.Watch(ctx, merge, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
		}
		return nil
	}
	return fmt.Errorf("failed to write %s/%s: too many concurrent updates", collection, id)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.ValidateKey(collection, id); err != nil {
		return err
	}

	n, err := s.client.HDel(ctx, s.key(collection), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func decode(collection, id, raw string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, nil
}
