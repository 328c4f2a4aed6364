// Package docstore defines the document store used for local drafts and
// remote records. Documents are JSON objects addressed by collection and id.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidKey is returned for an empty collection or id.
	ErrInvalidKey = errors.New("collection and id must not be empty")
)

// Document holds the top-level fields of a stored document.
type Document map[string]any

// Snapshot is a document returned by a query.
type Snapshot struct {
	ID   string
	Data Document
}

// Where is an equality filter on a top-level field. Values compare by
// their JSON encoding, so slices and maps must match exactly.
type Where struct {
	Field string
	Value any
}

func Eq(field string, value any) Where {
	return Where{Field: field, Value: value}
}

type SetOptions struct {
	// Merge writes the given fields into the existing document instead of
	// replacing it. Fields are merged at the top level only.
	Merge bool
}

type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns the documents of a collection matching every filter,
	// ordered by id.
	Query(ctx context.Context, collection string, filters ...Where) ([]Snapshot, error)
	Set(ctx context.Context, collection, id string, fields Document, opts SetOptions) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// ValidateKey checks a collection/id pair.
func ValidateKey(collection, id string) error {
	if collection == "" || id == "" {
		return ErrInvalidKey
	}
	return nil
}

// Encode converts a JSON-serializable value into a Document.
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("value does not encode to a JSON object: %w", err)
	}
	return doc, nil
}

// Decode fills v from a Document.
func Decode(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// MergeFields returns a copy of existing with fields written over it.
func MergeFields(existing, fields Document) Document {
	out := make(Document, len(existing)+len(fields))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Matches reports whether doc satisfies every filter. Values are compared
// by their JSON encoding so that numbers decoded as float64 match ints.
func Matches(doc Document, filters []Where) bool {
	for _, f := range filters {
		got, ok := doc[f.Field]
		if !ok {
			return false
		}
		a, errA := json.Marshal(got)
		b, errB := json.Marshal(f.Value)
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}
