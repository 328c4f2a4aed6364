// Package scheduler keeps pending reminder notifications in the local
// document store and works out which of them are due.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/timerule"
)

var (
	ErrPastTrigger  = errors.New("trigger time is not in the future")
	ErrNotRecurring = errors.New("trigger does not repeat")
	ErrNoFiring     = errors.New("trigger never fires")
)

// Handle identifies a registered notification.
type Handle string

type Content struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type Notification struct {
	ID        Handle           `json:"id"`
	Trigger   timerule.Trigger `json:"trigger"`
	Content   Content          `json:"content"`
	NextFire  time.Time        `json:"next_fire"`
	LastFired *time.Time       `json:"last_fired,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Scheduler struct {
	store docstore.Store
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

// New returns a scheduler persisting to store. Recurring triggers are
// evaluated in loc.
func New(store docstore.Store, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		store: store,
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// ScheduleAt registers a one-time notification.
func (s *Scheduler) ScheduleAt(ctx context.Context, at time.Time, content Content) (Handle, error) {
	if !at.After(s.now()) {
		return "", ErrPastTrigger
	}
	at = at.In(s.loc)
	trigger := timerule.Trigger{
		Kind: timerule.TriggerAt,
		At:   at,
		Time: models.TimeOfDay{Hour: at.Hour(), Minute: at.Minute()},
	}
	return s.register(ctx, trigger, at, content)
}

// ScheduleRecurring registers a daily or weekly notification.
func (s *Scheduler) ScheduleRecurring(ctx context.Context, trigger timerule.Trigger, content Content) (Handle, error) {
	if !trigger.IsRecurring() {
		return "", ErrNotRecurring
	}
	next := trigger.Next(s.now().In(s.loc))
	if next.IsZero() {
		return "", ErrNoFiring
	}
	return s.register(ctx, trigger, next, content)
}

// Schedule registers any trigger kind.
func (s *Scheduler) Schedule(ctx context.Context, trigger timerule.Trigger, content Content) (Handle, error) {
	if trigger.Kind == timerule.TriggerAt {
		return s.ScheduleAt(ctx, trigger.At, content)
	}
	return s.ScheduleRecurring(ctx, trigger, content)
}

func (s *Scheduler) register(ctx context.Context, trigger timerule.Trigger, next time.Time, content Content) (Handle, error) {
	n := Notification{
		ID:        Handle(s.newID()),
		Trigger:   trigger,
		Content:   content,
		NextFire:  next,
		CreatedAt: s.now(),
	}
	if err := s.save(ctx, n); err != nil {
		return "", err
	}
	logger.Debug("Notification scheduled", "handle", n.ID, "trigger", trigger.Describe(), "next", next)
	return n.ID, nil
}

// Cancel removes a notification. Unknown handles are ignored.
func (s *Scheduler) Cancel(ctx context.Context, h Handle) error {
	if h == "" {
		return nil
	}
	err := s.store.Delete(ctx, constants.CollectionNotifications, string(h))
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to cancel notification %s: %w", h, err)
	}
	return nil
}

func (s *Scheduler) CancelAll(ctx context.Context) error {
	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	for _, n := range pending {
		if err := s.Cancel(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Get(ctx context.Context, h Handle) (Notification, error) {
	doc, err := s.store.Get(ctx, constants.CollectionNotifications, string(h))
	if err != nil {
		return Notification{}, err
	}
	var n Notification
	if err := docstore.Decode(doc, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Pending returns every registered notification ordered by next firing.
func (s *Scheduler) Pending(ctx context.Context) ([]Notification, error) {
	snaps, err := s.store.Query(ctx, constants.CollectionNotifications)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]Notification, 0, len(snaps))
	for _, snap := range snaps {
		var n Notification
		if err := docstore.Decode(snap.Data, &n); err != nil {
			logger.Warn("Skipping unreadable notification", "id", snap.ID, "error", err)
			continue
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].NextFire.Equal(out[j].NextFire) {
			return out[i].NextFire.Before(out[j].NextFire)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Due returns the notifications whose next firing is at or before now.
func (s *Scheduler) Due(ctx context.Context, now time.Time) ([]Notification, error) {
	pending, err := s.Pending(ctx)
	if err != nil {
		return nil, err
	}
	var due []Notification
	for _, n := range pending {
		if n.NextFire.After(now) {
			break
		}
		due = append(due, n)
	}
	return due, nil
}

// MarkFired records a delivery. One-time notifications are removed;
// recurring ones advance to their first firing after now, so missed
// firings collapse into the one just delivered.
func (s *Scheduler) MarkFired(ctx context.Context, h Handle, now time.Time) error {
	n, err := s.Get(ctx, h)
	if err != nil {
		return err
	}
	if !n.Trigger.IsRecurring() {
		return s.Cancel(ctx, h)
	}

	fired := now
	n.LastFired = &fired
	n.NextFire = n.Trigger.Next(now.In(s.loc))
	if n.NextFire.IsZero() {
		return s.Cancel(ctx, h)
	}
	return s.save(ctx, n)
}

func (s *Scheduler) save(ctx context.Context, n Notification) error {
	doc, err := docstore.Encode(n)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, constants.CollectionNotifications, string(n.ID), doc, docstore.SetOptions{}); err != nil {
		return fmt.Errorf("failed to save notification %s: %w", n.ID, err)
	}
	return nil
}
