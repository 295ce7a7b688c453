package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	triperrors "tripdesk/internal/trips/errors"
	"tripdesk/internal/trips/validator"
	"tripdesk/pkg/config"
	"tripdesk/pkg/events"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/model"
)

// ────────────────────────────────────────────────
// In-memory trip repository mirroring the conditional-update semantics of
// the Mongo implementation, so engine tests exercise the real contract.
// ────────────────────────────────────────────────

type fakeTripRepo struct {
	mu     sync.Mutex
	trips  map[string]*model.Trip
	order  []string
	nextID int

	// optional overrides for failure injection
	archiveFunc func(ctx context.Context, id string) (bool, error)
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[string]*model.Trip{}}
}

func copyTrip(t *model.Trip) *model.Trip {
	cp := *t
	cp.Reservations = append([]model.Reservation(nil), t.Reservations...)
	cp.Images = append([]string(nil), t.Images...)
	return &cp
}

func (f *fakeTripRepo) add(t *model.Trip) *model.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("%024x", f.nextID)
	}
	f.trips[t.ID] = copyTrip(t)
	f.order = append(f.order, t.ID)
	return t
}

func (f *fakeTripRepo) Create(_ context.Context, trip *model.Trip) error {
	f.add(trip)
	return nil
}

func (f *fakeTripRepo) FindByID(_ context.Context, id string) (*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok {
		return nil, triperrors.ErrNotFound
	}
	return copyTrip(t), nil
}

func (f *fakeTripRepo) Search(_ context.Context, q model.TripListQuery) ([]*model.Trip, error) {
	matched := f.matching(q)
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return []*model.Trip{}, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (f *fakeTripRepo) CountSearch(_ context.Context, q model.TripListQuery) (int64, error) {
	return int64(len(f.matching(q))), nil
}

func (f *fakeTripRepo) matching(q model.TripListQuery) []*model.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Trip
	for _, id := range f.order {
		t, ok := f.trips[id]
		if !ok {
			continue
		}
		switch q.Status {
		case model.BucketAvailable:
			if t.AvailableSeats <= 0 || t.Status == model.StatusArchived {
				continue
			}
		case model.BucketNoSeats:
			if t.AvailableSeats > 0 || t.Status == model.StatusArchived {
				continue
			}
		case model.BucketArchived:
			if t.Status != model.StatusArchived {
				continue
			}
		default:
			if t.Status == model.StatusArchived {
				continue
			}
		}
		if q.Search != "" && !tripMatches(t, q.Search) {
			continue
		}
		out = append(out, copyTrip(t))
	}
	return out
}

func tripMatches(t *model.Trip, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{t.Title, t.DestinationCountry, t.DestinationCity, t.DepartureCity, t.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (f *fakeTripRepo) Update(_ context.Context, id string, trip *model.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.trips[id]
	if !ok {
		return triperrors.ErrNotFound
	}
	updated := copyTrip(trip)
	updated.ID = id
	updated.Reservations = existing.Reservations
	if trip.Status == "" {
		updated.Status = existing.Status
	}
	f.trips[id] = updated
	return nil
}

func (f *fakeTripRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trips[id]; !ok {
		return triperrors.ErrNotFound
	}
	delete(f.trips, id)
	return nil
}

func (f *fakeTripRepo) ReserveSeat(_ context.Context, id string, rec model.Reservation) (*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok || t.AvailableSeats <= 0 {
		return nil, triperrors.ErrNoMatch
	}
	t.AvailableSeats--
	t.Reservations = append(t.Reservations, rec)
	return copyTrip(t), nil
}

func (f *fakeTripRepo) CancelReservation(_ context.Context, id string, index int, at time.Time) (*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok || index < 0 || index >= len(t.Reservations) || t.Reservations[index].CancelledAt != nil {
		return nil, triperrors.ErrNoMatch
	}
	stamp := at
	t.Reservations[index].CancelledAt = &stamp
	t.AvailableSeats++
	return copyTrip(t), nil
}

func (f *fakeTripRepo) ClampAvailableSeats(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.trips[id]; ok && t.AvailableSeats > t.MaxSeats {
		t.AvailableSeats = t.MaxSeats
	}
	return nil
}

func (f *fakeTripRepo) SetStatusIf(_ context.Context, id, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (f *fakeTripRepo) Archive(ctx context.Context, id string) (bool, error) {
	if f.archiveFunc != nil {
		return f.archiveFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok || t.Status == model.StatusArchived {
		return false, nil
	}
	t.Status = model.StatusArchived
	return true, nil
}

func (f *fakeTripRepo) FindPastUnarchived(_ context.Context, before time.Time) ([]*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Trip
	for _, id := range f.order {
		t, ok := f.trips[id]
		if !ok {
			continue
		}
		if t.EndDate.Before(before) && t.Status != model.StatusArchived {
			out = append(out, copyTrip(t))
		}
	}
	return out, nil
}

func (f *fakeTripRepo) FindPurgeable(_ context.Context) ([]*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Trip
	for _, id := range f.order {
		t, ok := f.trips[id]
		if !ok {
			continue
		}
		if t.Status == model.StatusArchived && len(t.Reservations) == 0 {
			out = append(out, copyTrip(t))
		}
	}
	return out, nil
}

func (f *fakeTripRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.trips)), nil
}

func (f *fakeTripRepo) CountAvailable(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.trips {
		if t.AvailableSeats > 0 {
			n++
		}
	}
	return n, nil
}

func (f *fakeTripRepo) CountFull(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.trips {
		if t.AvailableSeats <= 0 {
			n++
		}
	}
	return n, nil
}

// ────────────────────────────────────────────────
// Object store recording delete calls.
// ────────────────────────────────────────────────

type recordingStore struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (s *recordingStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *recordingStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, string, error) {
	return "https://cdn.test/presign/" + key, "https://cdn.test/" + key, nil
}

func (s *recordingStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return s.deleteErr
}

func (s *recordingStore) DeleteMany(ctx context.Context, urls []string) (int, error) {
	for _, u := range urls {
		_ = s.Delete(ctx, u)
	}
	return len(urls), s.deleteErr
}

func (s *recordingStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// ────────────────────────────────────────────────
// Service construction helpers.
// ────────────────────────────────────────────────

func newTestConfig() *config.Config {
	return &config.Config{
		PageLimit: 30,
		Log:       logger.New(logger.Options{Level: logger.LevelError, Service: "test"}),
	}
}

func newTestService(repo *fakeTripRepo, store *recordingStore) TripService {
	cfg := newTestConfig()
	return NewTripService(
		repo,
		validator.NewTripValidator(cfg.Log),
		store,
		events.NewPublisher(nil, "", cfg.Log),
		cfg,
	)
}
