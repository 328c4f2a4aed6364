// Package records stores the user's health records: medicines with their
// reminders, contacts, doctors, insurance, pharmacies and questionnaire
// answers.
package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/carelog/internal/docstore"
)

// Entity is implemented by pointer receivers of stored record types.
type Entity[T any] interface {
	*T
	GetID() string
	SetID(id string)
	Validate() error
}

// Repository stores values of T as documents of one collection.
type Repository[T any, P Entity[T]] struct {
	store      docstore.Store
	collection string
	newID      func() string
}

func NewRepository[T any, P Entity[T]](store docstore.Store, collection string) *Repository[T, P] {
	return &Repository[T, P]{
		store:      store,
		collection: collection,
		newID:      uuid.NewString,
	}
}

func (r *Repository[T, P]) Collection() string {
	return r.collection
}

// Add validates v, assigns an id if it has none and stores it.
func (r *Repository[T, P]) Add(ctx context.Context, v T) (T, error) {
	p := P(&v)
	if p.GetID() == "" {
		p.SetID(r.newID())
	}
	if err := r.put(ctx, p); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (r *Repository[T, P]) Get(ctx context.Context, id string) (T, error) {
	var v T
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return v, fmt.Errorf("%s %s: %w", r.collection, id, err)
		}
		return v, err
	}
	if err := docstore.Decode(doc, &v); err != nil {
		return v, err
	}
	P(&v).SetID(id)
	return v, nil
}

// List returns every record ordered by id.
func (r *Repository[T, P]) List(ctx context.Context) ([]T, error) {
	snaps, err := r.store.Query(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var v T
		if err := docstore.Decode(snap.Data, &v); err != nil {
			return nil, fmt.Errorf("%s %s: %w", r.collection, snap.ID, err)
		}
		P(&v).SetID(snap.ID)
		out = append(out, v)
	}
	return out, nil
}

// Update replaces an existing record.
func (r *Repository[T, P]) Update(ctx context.Context, v T) (T, error) {
	p := P(&v)
	if p.GetID() == "" {
		return v, fmt.Errorf("cannot update %s record without an id", r.collection)
	}
	if _, err := r.Get(ctx, p.GetID()); err != nil {
		return v, err
	}
	if err := r.put(ctx, p); err != nil {
		return v, err
	}
	return v, nil
}

func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", r.collection, id, err)
		}
		return err
	}
	return nil
}

func (r *Repository[T, P]) put(ctx context.Context, p P) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := docstore.Encode(p)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.collection, p.GetID(), doc, docstore.SetOptions{})
}
