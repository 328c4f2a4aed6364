package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/carelog/internal/answers"
	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/questions"
)

// AnswerBook holds questionnaire answers for one profile. Edits go to a
// local draft document; Sync merges drafts over the remote profile and
// writes the result back.
type AnswerBook struct {
	local     docstore.Store
	remote    docstore.Store
	catalog   *questions.Catalog
	profileID string
	// Mirror writes synced answers to the local store too. Leave it off
	// when local and remote are the same store.
	Mirror bool
	now    func() time.Time
}

type draftDoc struct {
	Slots models.AnswerSet `json:"slots"`
}

type profileDoc struct {
	Answers   []models.AnswerSlot `json:"answers"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SyncResult reports what a sync wrote.
type SyncResult struct {
	Answers []models.AnswerSlot
	Changed []int
}

func NewAnswerBook(local, remote docstore.Store, catalog *questions.Catalog, profileID string) *AnswerBook {
	return &AnswerBook{
		local:     local,
		remote:    remote,
		catalog:   catalog,
		profileID: profileID,
		now:       time.Now,
	}
}

func (b *AnswerBook) Catalog() *questions.Catalog {
	return b.catalog
}

// SetDraft records a local edit of one answer.
func (b *AnswerBook) SetDraft(ctx context.Context, index int, answer, summary string) error {
	if _, ok := b.catalog.At(index); !ok {
		return fmt.Errorf("question index %d out of range (0-%d)", index, b.catalog.Len()-1)
	}
	drafts, err := b.Drafts(ctx)
	if err != nil {
		return err
	}
	drafts[index] = models.AnswerSlot{Answer: answer, Summary: summary}
	return b.writeDrafts(ctx, drafts)
}

// SetDraftByKey records a local edit addressed by question key.
func (b *AnswerBook) SetDraftByKey(ctx context.Context, key, answer, summary string) error {
	q, ok := b.catalog.ByKey(key)
	if !ok {
		return fmt.Errorf("unknown question %q", key)
	}
	return b.SetDraft(ctx, q.Index, answer, summary)
}

// Drafts returns unsynced local edits.
func (b *AnswerBook) Drafts(ctx context.Context) (models.AnswerSet, error) {
	doc, err := b.local.Get(ctx, constants.CollectionDrafts, b.profileID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.AnswerSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}
	var d draftDoc
	if err := docstore.Decode(doc, &d); err != nil {
		return nil, err
	}
	if d.Slots == nil {
		d.Slots = models.AnswerSet{}
	}
	return d.Slots, nil
}

// Remote returns the last synced answers.
func (b *AnswerBook) Remote(ctx context.Context) (models.AnswerSet, error) {
	doc, err := b.remote.Get(ctx, constants.CollectionProfiles, b.profileID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.AnswerSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p profileDoc
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, err
	}
	return models.AnswerSetFromSlots(p.Answers), nil
}

// View returns the answers as they would be after a sync, one slot per
// question.
func (b *AnswerBook) View(ctx context.Context) ([]models.AnswerSlot, error) {
	local, err := b.Drafts(ctx)
	if err != nil {
		return nil, err
	}
	remote, err := b.Remote(ctx)
	if err != nil {
		return nil, err
	}
	return answers.Merge(b.catalog.Len(), local, remote), nil
}

// Sync merges drafts over the remote answers, writes the merged list to
// the remote profile and clears the drafts.
func (b *AnswerBook) Sync(ctx context.Context) (SyncResult, error) {
	local, err := b.Drafts(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	remote, err := b.Remote(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	merged := answers.Merge(b.catalog.Len(), local, remote)
	result := SyncResult{Answers: merged, Changed: answers.Changed(remote, merged)}

	doc, err := docstore.Encode(profileDoc{Answers: merged, UpdatedAt: b.now().UTC()})
	if err != nil {
		return result, err
	}
	if err := b.remote.Set(ctx, constants.CollectionProfiles, b.profileID, doc, docstore.SetOptions{Merge: true}); err != nil {
		return result, fmt.Errorf("failed to write profile: %w", err)
	}
	if b.Mirror {
		if err := b.local.Set(ctx, constants.CollectionProfiles, b.profileID, doc, docstore.SetOptions{Merge: true}); err != nil {
			return result, fmt.Errorf("failed to mirror profile locally: %w", err)
		}
	}

	if err := b.local.Delete(ctx, constants.CollectionDrafts, b.profileID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return result, fmt.Errorf("failed to clear drafts: %w", err)
	}
	logger.Info("Answers synced", "profile", b.profileID, "changed", len(result.Changed))
	return result, nil
}

func (b *AnswerBook) writeDrafts(ctx context.Context, drafts models.AnswerSet) error {
	doc, err := docstore.Encode(draftDoc{Slots: drafts})
	if err != nil {
		return err
	}
	if err := b.local.Set(ctx, constants.CollectionDrafts, b.profileID, doc, docstore.SetOptions{}); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}
