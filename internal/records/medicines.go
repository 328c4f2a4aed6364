package records

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/reminders"
	"github.com/julianstephens/carelog/internal/timerule"
)

// Medicines stores medicines and keeps their reminders scheduled.
type Medicines struct {
	repo      *Repository[models.Medicine, *models.Medicine]
	reminders *reminders.Service
	now       func() time.Time
}

func NewMedicines(store docstore.Store, rem *reminders.Service) *Medicines {
	return &Medicines{
		repo:      NewRepository[models.Medicine](store, constants.CollectionMedicines),
		reminders: rem,
		now:       time.Now,
	}
}

// checkTime rejects reminder text the time parser would silently replace
// with its default.
func checkTime(m models.Medicine) error {
	if !m.HasReminder() {
		return nil
	}
	if _, err := timerule.ParseTimeOfDayStrict(m.Time); err != nil {
		return fmt.Errorf("reminder time for %s: %w", m.Name, err)
	}
	return nil
}

// Add stores a new medicine after registering its reminders.
func (s *Medicines) Add(ctx context.Context, m models.Medicine) (models.Medicine, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}
	if err := checkTime(m); err != nil {
		return m, err
	}

	now := s.now()
	if m.ID == "" {
		m.ID = s.repo.newID()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	m.NotificationIDs = nil

	m, err := s.reminders.Reschedule(ctx, m, now)
	if err != nil {
		return m, err
	}
	saved, err := s.repo.Add(ctx, m)
	if err != nil {
		if _, cerr := s.reminders.Clear(ctx, m); cerr != nil {
			logger.Warn("Failed to cancel reminders of unsaved medicine", "medicine", m.ID, "error", cerr)
		}
		return m, err
	}
	return saved, nil
}

// Update replaces a medicine, cancelling the reminders registered for its
// previous version before scheduling the new ones.
func (s *Medicines) Update(ctx context.Context, m models.Medicine) (models.Medicine, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}
	if err := checkTime(m); err != nil {
		return m, err
	}

	existing, err := s.repo.Get(ctx, m.ID)
	if err != nil {
		return m, err
	}
	m.NotificationIDs = existing.NotificationIDs
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.now()

	m, err = s.reminders.Reschedule(ctx, m, m.UpdatedAt)
	if err != nil {
		// Persist whatever handles survived so none are orphaned.
		if _, uerr := s.repo.Update(ctx, withHandles(existing, m.NotificationIDs)); uerr != nil {
			logger.Warn("Failed to record remaining reminders", "medicine", m.ID, "error", uerr)
		}
		return m, err
	}
	return s.repo.Update(ctx, m)
}

// Delete cancels a medicine's reminders and removes it.
func (s *Medicines) Delete(ctx context.Context, id string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.reminders.Clear(ctx, m); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Medicines) Get(ctx context.Context, id string) (models.Medicine, error) {
	return s.repo.Get(ctx, id)
}

func (s *Medicines) List(ctx context.Context) ([]models.Medicine, error) {
	return s.repo.List(ctx)
}

// RescheduleAll re-registers the reminders of every medicine and returns
// how many handles are now registered.
func (s *Medicines) RescheduleAll(ctx context.Context) (int, error) {
	meds, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	total := 0
	for _, m := range meds {
		m, err := s.reminders.Reschedule(ctx, m, now)
		if err != nil {
			return total, err
		}
		if _, err := s.repo.Update(ctx, m); err != nil {
			return total, err
		}
		total += len(m.NotificationIDs)
	}
	return total, nil
}

// Forget drops stored handles without cancelling them. Used after every
// scheduled notification has been removed wholesale.
func (s *Medicines) Forget(ctx context.Context) error {
	meds, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, m := range meds {
		if len(m.NotificationIDs) == 0 {
			continue
		}
		m.NotificationIDs = nil
		if _, err := s.repo.Update(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func withHandles(m models.Medicine, handles []string) models.Medicine {
	m.NotificationIDs = handles
	return m
}
