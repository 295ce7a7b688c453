package service

import (
	"context"
	"errors"
	"sync"

	triperrors "tripdesk/internal/trips/errors"
	"tripdesk/internal/trips/repository"
	"tripdesk/internal/trips/validator"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/events"
	"tripdesk/pkg/model"
	"tripdesk/pkg/sanitizer"
	"tripdesk/pkg/storage"
)

type TripService interface {
	Create(ctx context.Context, trip *model.Trip, availableSeatsSet bool) error
	GetByID(ctx context.Context, id string) (*model.Trip, error)
	List(ctx context.Context, q model.TripListQuery) (*model.TripPage, error)
	Update(ctx context.Context, trip *model.Trip) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.TripStats, error)

	Book(ctx context.Context, tripID, customerName, customerEmail, customerPhone string) (int, error)
	Cancel(ctx context.Context, tripID string, reservationIndex int) (int, error)
	ArchivePast(ctx context.Context) (*model.ArchiveReport, error)
	PurgeArchived(ctx context.Context) (*model.PurgeReport, error)
}

type tripService struct {
	repo      repository.TripRepository
	validator *validator.TripValidator
	store     storage.ObjectStore
	publisher *events.Publisher
	cfg       *config.Config
}

func NewTripService(
	repo repository.TripRepository,
	validator *validator.TripValidator,
	store storage.ObjectStore,
	publisher *events.Publisher,
	cfg *config.Config,
) TripService {
	return &tripService{
		repo:      repo,
		validator: validator,
		store:     store,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *tripService) Create(ctx context.Context, trip *model.Trip, availableSeatsSet bool) error {
	s.sanitize(trip)

	if trip.Status == "" {
		trip.Status = model.StatusDraft
	}
	// A new trip starts fully available unless the admin seeded an explicit
	// seat count.
	if !availableSeatsSet {
		trip.AvailableSeats = trip.MaxSeats
	}
	if trip.Reservations == nil {
		trip.Reservations = []model.Reservation{}
	}

	if err := s.validator.Validate(trip); err != nil {
		return apperrors.Validation("Invalid trip input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		s.cfg.Log.Error("Failed to create trip", "error", err)
		return apperrors.Internal("Failed to create trip", err)
	}

	s.cfg.Log.Info("Trip created successfully",
		"id", trip.ID,
		"title", trip.Title,
		"max_seats", trip.MaxSeats,
		"available_seats", trip.AvailableSeats,
	)
	return nil
}

func (s *tripService) GetByID(ctx context.Context, id string) (*model.Trip, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return trip, nil
}

func (s *tripService) List(ctx context.Context, q model.TripListQuery) (*model.TripPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.cfg.PageLimit
	}

	var (
		count    int64
		trips    []*model.Trip
		errCount error
		errFind  error
		wg       sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountSearch(ctx, q)
	}()
	go func() {
		defer wg.Done()
		trips, errFind = s.repo.Search(ctx, q)
	}()
	wg.Wait()

	if errCount != nil {
		s.cfg.Log.Error("Failed to count trips", "error", errCount)
		return nil, apperrors.Internal("Failed to count trips", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list trips", "error", errFind)
		return nil, apperrors.Internal("Failed to retrieve trips", errFind)
	}

	totalPages := count / int64(q.Limit)
	if count%int64(q.Limit) != 0 {
		totalPages++
	}

	return &model.TripPage{
		Products: trips,
		Pagination: model.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			TotalCount: count,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *tripService) Update(ctx context.Context, trip *model.Trip) error {
	if trip.ID == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}
	s.sanitize(trip)

	existing, err := s.repo.FindByID(ctx, trip.ID)
	if err != nil {
		return s.mapLookupError(err, trip.ID)
	}

	if err := s.validator.Validate(trip); err != nil {
		s.cfg.Log.Warn("Trip update validation failed", "id", trip.ID, "error", err)
		return apperrors.Validation("Invalid trip input", map[string]any{"error": err.Error()})
	}

	// Images dropped by the edit are deleted from storage. The database write
	// is authoritative: cleanup failures are logged, never propagated.
	removed := removedImages(existing.Images, trip.Images)
	if len(removed) > 0 {
		if _, err := s.store.DeleteMany(ctx, removed); err != nil {
			s.cfg.Log.Warn("Failed to delete removed trip images", "id", trip.ID, "error", err)
		}
	}

	if err := s.repo.Update(ctx, trip.ID, trip); err != nil {
		if errors.Is(err, triperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Trip", trip.ID)
		}
		s.cfg.Log.Error("Failed to update trip", "id", trip.ID, "error", err)
		return apperrors.Internal("Failed to update trip", err)
	}

	s.cfg.Log.Info("Trip updated successfully", "id", trip.ID, "removed_images", len(removed))
	return nil
}

func (s *tripService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}

	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, triperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Trip", id)
		}
		s.cfg.Log.Error("Failed to delete trip", "id", id, "error", err)
		return apperrors.Internal("Failed to delete trip", err)
	}

	if len(trip.Images) > 0 {
		if _, err := s.store.DeleteMany(ctx, trip.Images); err != nil {
			s.cfg.Log.Warn("Failed to delete trip images", "id", id, "error", err)
		}
	}

	s.cfg.Log.Info("Trip deleted successfully", "id", id, "images", len(trip.Images))
	return nil
}

func (s *tripService) Stats(ctx context.Context) (*model.TripStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to count trips", err)
	}
	available, err := s.repo.CountAvailable(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to count available trips", err)
	}
	full, err := s.repo.CountFull(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to count full trips", err)
	}

	return &model.TripStats{Total: total, Available: available, Full: full}, nil
}

func (s *tripService) sanitize(trip *model.Trip) {
	trip.Title = sanitizer.NormalizeString(trip.Title)
	trip.DestinationCountry = sanitizer.NormalizeString(trip.DestinationCountry)
	trip.DestinationCity = sanitizer.NormalizeString(trip.DestinationCity)
	trip.DepartureCity = sanitizer.NormalizeString(trip.DepartureCity)
	trip.Currency = sanitizer.NormalizeCurrency(trip.Currency)
	trip.Images = sanitizer.NormalizeURLList(trip.Images)
}

func (s *tripService) mapLookupError(err error, id string) error {
	if errors.Is(err, triperrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Trip", id)
	}
	if errors.Is(err, triperrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid trip ID format")
	}
	s.cfg.Log.Error("Failed to retrieve trip", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve trip", err)
}

// removedImages returns URLs present in old but absent from new.
func removedImages(old, new []string) []string {
	kept := make(map[string]struct{}, len(new))
	for _, u := range new {
		kept[u] = struct{}{}
	}
	var removed []string
	for _, u := range old {
		if _, ok := kept[u]; !ok {
			removed = append(removed, u)
		}
	}
	return removed
}
