package service

import (
	"context"
	"errors"
	"time"

	triperrors "tripdesk/internal/trips/errors"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/events"
	"tripdesk/pkg/model"
	"tripdesk/pkg/sanitizer"
)

// Book takes one seat on a trip and appends a reservation record. The seat
// decrement and the append happen in a single conditional update keyed on
// availableSeats > 0, so two concurrent bookings cannot both take the last
// seat. Status only moves draft -> published; cancelled and archived trips
// keep their status even when booked against.
func (s *tripService) Book(ctx context.Context, tripID, customerName, customerEmail, customerPhone string) (int, error) {
	customerName = sanitizer.NormalizeString(customerName)
	if tripID == "" || customerName == "" {
		return 0, apperrors.InvalidInput("tripId and customerName are required")
	}

	rec := model.Reservation{
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		CustomerPhone: customerPhone,
		ReservedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	trip, err := s.repo.ReserveSeat(ctx, tripID, rec)
	if err != nil {
		if errors.Is(err, triperrors.ErrInvalidID) {
			return 0, apperrors.InvalidInput("Invalid trip ID format")
		}
		if errors.Is(err, triperrors.ErrNoMatch) {
			return 0, s.bookRejection(ctx, tripID)
		}
		s.cfg.Log.Error("Failed to reserve seat", "trip_id", tripID, "error", err)
		return 0, apperrors.Internal("Failed to reserve seat", err)
	}

	if trip.Status == model.StatusDraft {
		if _, err := s.repo.SetStatusIf(ctx, tripID, model.StatusDraft, model.StatusPublished); err != nil {
			// The seat is already taken; the status flip converges on the
			// next booking attempt.
			s.cfg.Log.Error("Failed to publish trip after booking", "trip_id", tripID, "error", err)
		}
	}

	s.publisher.Publish(ctx, events.TripBooked, tripID, map[string]any{
		"tripId":         tripID,
		"customerName":   customerName,
		"availableSeats": trip.AvailableSeats,
	})

	s.cfg.Log.Info("Trip reserved successfully",
		"trip_id", tripID,
		"available_seats", trip.AvailableSeats,
		"reservations", len(trip.Reservations),
	)
	return trip.AvailableSeats, nil
}

// bookRejection re-reads the trip to tell "missing" apart from "sold out".
func (s *tripService) bookRejection(ctx context.Context, tripID string) error {
	if _, err := s.repo.FindByID(ctx, tripID); err != nil {
		if errors.Is(err, triperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Trip", tripID)
		}
		if errors.Is(err, triperrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid trip ID format")
		}
		return apperrors.Internal("Failed to retrieve trip", err)
	}
	return apperrors.Conflict("No available seats for this trip")
}

// Cancel stamps the reservation at the given index and returns its seat,
// clamped so availableSeats never exceeds maxSeats. Repeat cancellation of
// the same index is rejected, not silently absorbed. When the last active
// reservation goes, a published trip drops back to draft; cancelled and
// archived stay pinned.
func (s *tripService) Cancel(ctx context.Context, tripID string, reservationIndex int) (int, error) {
	if tripID == "" {
		return 0, apperrors.InvalidInput("tripId and reservationIndex are required")
	}
	if reservationIndex < 0 {
		return 0, apperrors.InvalidInput("reservationIndex cannot be negative")
	}

	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return 0, s.mapLookupError(err, tripID)
	}
	if reservationIndex >= len(trip.Reservations) {
		return 0, apperrors.NotFound("Reservation record")
	}
	if !trip.Reservations[reservationIndex].Active() {
		return 0, apperrors.Conflict("Reservation is already cancelled")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := s.repo.CancelReservation(ctx, tripID, reservationIndex, now)
	if err != nil {
		if errors.Is(err, triperrors.ErrNoMatch) {
			// Lost the race against a concurrent cancel of the same index.
			return 0, apperrors.Conflict("Reservation is already cancelled")
		}
		s.cfg.Log.Error("Failed to cancel reservation", "trip_id", tripID, "index", reservationIndex, "error", err)
		return 0, apperrors.Internal("Failed to cancel reservation", err)
	}

	seats := updated.AvailableSeats
	if seats > updated.MaxSeats {
		if err := s.repo.ClampAvailableSeats(ctx, tripID); err != nil {
			s.cfg.Log.Error("Failed to clamp available seats", "trip_id", tripID, "error", err)
			return 0, apperrors.Internal("Failed to cancel reservation", err)
		}
		seats = updated.MaxSeats
	}

	if !updated.HasActiveReservation() && updated.Status == model.StatusPublished {
		if _, err := s.repo.SetStatusIf(ctx, tripID, model.StatusPublished, model.StatusDraft); err != nil {
			s.cfg.Log.Error("Failed to unpublish trip after cancellation", "trip_id", tripID, "error", err)
		}
	}

	s.publisher.Publish(ctx, events.TripCancelled, tripID, map[string]any{
		"tripId":           tripID,
		"reservationIndex": reservationIndex,
		"availableSeats":   seats,
	})

	s.cfg.Log.Info("Trip reservation cancelled successfully",
		"trip_id", tripID,
		"index", reservationIndex,
		"available_seats", seats,
	)
	return seats, nil
}

// ArchivePast marks past trips without active reservations as archived.
// Trips with reservation history still marked active are skipped so the
// records stay visible. Re-running is a no-op for already archived trips.
func (s *tripService) ArchivePast(ctx context.Context) (*model.ArchiveReport, error) {
	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	trips, err := s.repo.FindPastUnarchived(ctx, startOfToday)
	if err != nil {
		s.cfg.Log.Error("Failed to find past trips", "error", err)
		return nil, apperrors.Internal("Failed to find past trips", err)
	}

	report := &model.ArchiveReport{TotalChecked: len(trips)}
	for _, trip := range trips {
		if trip.HasActiveReservation() {
			report.SkippedCount++
			continue
		}

		archived, err := s.repo.Archive(ctx, trip.ID)
		if err != nil {
			s.cfg.Log.Error("Failed to archive trip", "trip_id", trip.ID, "error", err)
			return nil, apperrors.Internal("Failed to archive trip", err)
		}
		if archived {
			report.ArchivedCount++
			s.publisher.Publish(ctx, events.TripArchived, trip.ID, map[string]any{
				"tripId": trip.ID,
				"title":  trip.Title,
			})
		}
	}

	s.cfg.Log.Info("Past trips archived",
		"archived", report.ArchivedCount,
		"skipped", report.SkippedCount,
		"total_checked", report.TotalChecked,
	)
	return report, nil
}

// PurgeArchived hard-deletes archived trips with no reservation history at
// all and queues their media for deletion. Any reservation record, active or
// cancelled, keeps a trip out of the purge set; this is the irreversibility
// guard.
func (s *tripService) PurgeArchived(ctx context.Context) (*model.PurgeReport, error) {
	trips, err := s.repo.FindPurgeable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to find purgeable trips", "error", err)
		return nil, apperrors.Internal("Failed to find purgeable trips", err)
	}

	report := &model.PurgeReport{}
	var images []string
	for _, trip := range trips {
		if err := s.repo.Delete(ctx, trip.ID); err != nil {
			s.cfg.Log.Error("Failed to purge trip", "trip_id", trip.ID, "error", err)
			return nil, apperrors.Internal("Failed to purge trip", err)
		}
		report.DeletedCount++
		for _, img := range trip.Images {
			if img != "" {
				images = append(images, img)
			}
		}
		s.publisher.Publish(ctx, events.TripPurged, trip.ID, map[string]any{
			"tripId": trip.ID,
			"title":  trip.Title,
		})
	}

	if len(images) > 0 {
		if _, err := s.store.DeleteMany(ctx, images); err != nil {
			s.cfg.Log.Warn("Failed to delete some purged trip images", "error", err)
		}
	}
	report.ImagesDeleted = len(images)

	s.cfg.Log.Info("Archived trips purged",
		"deleted", report.DeletedCount,
		"images_deleted", report.ImagesDeleted,
	)
	return report, nil
}
