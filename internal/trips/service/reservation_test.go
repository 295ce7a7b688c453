package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/model"
)

func seedTrip(repo *fakeTripRepo, mutate func(*model.Trip)) *model.Trip {
	trip := &model.Trip{
		Title:              "Rhodope Hike",
		Description:        "Weekend in the Rhodopes",
		DestinationCountry: "Bulgaria",
		DestinationCity:    "Smolyan",
		DepartureCity:      "Plovdiv",
		TravelType:         model.TravelTypeExcursion,
		StartDate:          time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		DurationDays:       2,
		Price:              180,
		Currency:           "BGN",
		MaxSeats:           10,
		AvailableSeats:     10,
		Status:             model.StatusDraft,
		Reservations:       []model.Reservation{},
	}
	if mutate != nil {
		mutate(trip)
	}
	return repo.add(trip)
}

func cancelledAt(t time.Time) *time.Time { return &t }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsAppError(err), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, apperrors.AsAppError(err).Code)
}

func TestBook_DecrementsSeatsAndAppendsRecord(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, nil)
	svc := newTestService(repo, &recordingStore{})

	seats, err := svc.Book(context.Background(), trip.ID, "  Iva   Petrova ", "iva@example.com", "+359888111222")
	require.NoError(t, err)
	assert.Equal(t, 9, seats)

	stored, err := repo.FindByID(context.Background(), trip.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reservations, 1)

	rec := stored.Reservations[0]
	assert.Equal(t, "Iva Petrova", rec.CustomerName)
	assert.Equal(t, "iva@example.com", rec.CustomerEmail)
	assert.Equal(t, "+359888111222", rec.CustomerPhone)
	assert.False(t, rec.ReservedAt.IsZero())
	assert.Nil(t, rec.CancelledAt)
}

func TestBook_PublishesDraftTrip(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, nil)
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Book(context.Background(), trip.ID, "Iva", "", "")
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, model.StatusPublished, stored.Status)
}

func TestBook_DoesNotRepinCancelledOrArchived(t *testing.T) {
	for _, status := range []string{model.StatusCancelled, model.StatusArchived} {
		t.Run(status, func(t *testing.T) {
			repo := newFakeTripRepo()
			trip := seedTrip(repo, func(tr *model.Trip) { tr.Status = status })
			svc := newTestService(repo, &recordingStore{})

			seats, err := svc.Book(context.Background(), trip.ID, "Iva", "", "")
			require.NoError(t, err)
			assert.Equal(t, 9, seats)

			stored, _ := repo.FindByID(context.Background(), trip.ID)
			assert.Equal(t, status, stored.Status, "booking must not change a %s trip's status", status)
		})
	}
}

func TestBook_NoSeatsLeavesStateUntouched(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) { tr.AvailableSeats = 0 })
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Book(context.Background(), trip.ID, "Iva", "", "")
	assertCode(t, err, apperrors.CodeConflict)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, 0, stored.AvailableSeats)
	assert.Empty(t, stored.Reservations)
	assert.Equal(t, model.StatusDraft, stored.Status)
}

func TestBook_MissingTrip(t *testing.T) {
	repo := newFakeTripRepo()
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Book(context.Background(), "nope", "Iva", "", "")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestBook_BlankNameRejected(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, nil)
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Book(context.Background(), trip.ID, "   ", "", "")
	assertCode(t, err, apperrors.CodeInvalidInput)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, 10, stored.AvailableSeats)
}

func TestCancel_RestoresSeatAndStampsRecord(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusPublished
		tr.Reservations = []model.Reservation{
			{CustomerName: "Iva", ReservedAt: time.Now().UTC()},
			{CustomerName: "Georgi", ReservedAt: time.Now().UTC()},
		}
		tr.AvailableSeats = 8
	})
	svc := newTestService(repo, &recordingStore{})

	seats, err := svc.Cancel(context.Background(), trip.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, seats)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	require.Len(t, stored.Reservations, 2, "cancellation must keep the record, not remove it")
	assert.NotNil(t, stored.Reservations[0].CancelledAt)
	assert.Nil(t, stored.Reservations[1].CancelledAt)
	// One reservation is still active, so the trip stays published.
	assert.Equal(t, model.StatusPublished, stored.Status)
}

func TestCancel_AlreadyCancelledConflictLeavesStateUntouched(t *testing.T) {
	stamp := time.Now().UTC().Add(-time.Hour)
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.AvailableSeats = 10
		tr.Reservations = []model.Reservation{
			{CustomerName: "Iva", ReservedAt: stamp.Add(-time.Hour), CancelledAt: cancelledAt(stamp)},
		}
	})
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Cancel(context.Background(), trip.ID, 0)
	assertCode(t, err, apperrors.CodeConflict)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, 10, stored.AvailableSeats, "repeat cancellation must not free another seat")
	require.NotNil(t, stored.Reservations[0].CancelledAt)
	assert.True(t, stored.Reservations[0].CancelledAt.Equal(stamp), "original stamp must survive")
}

func TestCancel_IndexOutOfRange(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.Reservations = []model.Reservation{{CustomerName: "Iva", ReservedAt: time.Now().UTC()}}
		tr.AvailableSeats = 9
	})
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Cancel(context.Background(), trip.ID, 5)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = svc.Cancel(context.Background(), trip.ID, -1)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCancel_ClampsSeatsAtCapacity(t *testing.T) {
	// Drifted document: a full seat count alongside an active reservation.
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.MaxSeats = 10
		tr.AvailableSeats = 10
		tr.Reservations = []model.Reservation{{CustomerName: "Iva", ReservedAt: time.Now().UTC()}}
	})
	svc := newTestService(repo, &recordingStore{})

	seats, err := svc.Cancel(context.Background(), trip.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, seats, "seat restore must clamp at maxSeats")

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, 10, stored.AvailableSeats)
}

func TestCancel_LastActiveUnpublishes(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusPublished
		tr.AvailableSeats = 9
		tr.Reservations = []model.Reservation{{CustomerName: "Iva", ReservedAt: time.Now().UTC()}}
	})
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Cancel(context.Background(), trip.ID, 0)
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, model.StatusDraft, stored.Status)
}

func TestCancel_LastActiveKeepsArchivedPinned(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusArchived
		tr.AvailableSeats = 9
		tr.Reservations = []model.Reservation{{CustomerName: "Iva", ReservedAt: time.Now().UTC()}}
	})
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Cancel(context.Background(), trip.ID, 0)
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), trip.ID)
	assert.Equal(t, model.StatusArchived, stored.Status)
}

func TestCancel_MissingTrip(t *testing.T) {
	repo := newFakeTripRepo()
	svc := newTestService(repo, &recordingStore{})

	_, err := svc.Cancel(context.Background(), "nope", 0)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestBookAndCancel_FullLifecycle(t *testing.T) {
	repo := newFakeTripRepo()
	trip := seedTrip(repo, func(tr *model.Trip) {
		tr.MaxSeats = 2
		tr.AvailableSeats = 2
	})
	svc := newTestService(repo, &recordingStore{})
	ctx := context.Background()

	seats, err := svc.Book(ctx, trip.ID, "Iva", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, seats)
	stored, _ := repo.FindByID(ctx, trip.ID)
	assert.Equal(t, model.StatusPublished, stored.Status)

	seats, err = svc.Book(ctx, trip.ID, "Georgi", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, seats)

	_, err = svc.Book(ctx, trip.ID, "Maria", "", "")
	assertCode(t, err, apperrors.CodeConflict)

	seats, err = svc.Cancel(ctx, trip.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, seats)
	stored, _ = repo.FindByID(ctx, trip.ID)
	assert.Equal(t, model.StatusPublished, stored.Status, "one reservation still active")

	seats, err = svc.Cancel(ctx, trip.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, seats)

	stored, _ = repo.FindByID(ctx, trip.ID)
	assert.Equal(t, model.StatusDraft, stored.Status, "no active reservations left")
	assert.Len(t, stored.Reservations, 2, "history survives cancellation")
}

func TestArchivePast_ArchivesEndedTripsWithoutActiveReservations(t *testing.T) {
	repo := newFakeTripRepo()
	past := seedTrip(repo, func(tr *model.Trip) {
		tr.EndDate = time.Now().UTC().AddDate(0, 0, -3)
	})
	pastCancelled := seedTrip(repo, func(tr *model.Trip) {
		tr.EndDate = time.Now().UTC().AddDate(0, 0, -3)
		tr.Reservations = []model.Reservation{
			{CustomerName: "Iva", ReservedAt: time.Now().UTC(), CancelledAt: cancelledAt(time.Now().UTC())},
		}
	})
	future := seedTrip(repo, func(tr *model.Trip) {
		tr.EndDate = time.Now().UTC().AddDate(0, 0, 3)
	})
	svc := newTestService(repo, &recordingStore{})

	report, err := svc.ArchivePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.ArchivedCount)
	assert.Equal(t, 0, report.SkippedCount)
	assert.Equal(t, 2, report.TotalChecked)

	for _, id := range []string{past.ID, pastCancelled.ID} {
		stored, _ := repo.FindByID(context.Background(), id)
		assert.Equal(t, model.StatusArchived, stored.Status)
	}
	stored, _ := repo.FindByID(context.Background(), future.ID)
	assert.NotEqual(t, model.StatusArchived, stored.Status)
}

func TestArchivePast_SkipsTripsWithActiveReservations(t *testing.T) {
	repo := newFakeTripRepo()
	held := seedTrip(repo, func(tr *model.Trip) {
		tr.EndDate = time.Now().UTC().AddDate(0, 0, -1)
		tr.Reservations = []model.Reservation{{CustomerName: "Iva", ReservedAt: time.Now().UTC()}}
		tr.AvailableSeats = 9
	})
	svc := newTestService(repo, &recordingStore{})

	report, err := svc.ArchivePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.ArchivedCount)
	assert.Equal(t, 1, report.SkippedCount)

	stored, _ := repo.FindByID(context.Background(), held.ID)
	assert.Equal(t, model.StatusDraft, stored.Status)
}

func TestArchivePast_Rerunning(t *testing.T) {
	repo := newFakeTripRepo()
	seedTrip(repo, func(tr *model.Trip) {
		tr.EndDate = time.Now().UTC().AddDate(0, 0, -2)
	})
	svc := newTestService(repo, &recordingStore{})

	first, err := svc.ArchivePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ArchivedCount)

	second, err := svc.ArchivePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.ArchivedCount)
	assert.Equal(t, 0, second.TotalChecked, "archived trips drop out of the candidate set")
}

func TestPurgeArchived_DeletesOnlyHistoryFreeTrips(t *testing.T) {
	repo := newFakeTripRepo()
	store := &recordingStore{}
	bare := seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusArchived
		tr.Images = []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}
	})
	withHistory := seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusArchived
		tr.Reservations = []model.Reservation{
			{CustomerName: "Iva", ReservedAt: time.Now().UTC(), CancelledAt: cancelledAt(time.Now().UTC())},
		}
	})
	active := seedTrip(repo, nil)
	svc := newTestService(repo, store)

	report, err := svc.PurgeArchived(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedCount)
	assert.Equal(t, 2, report.ImagesDeleted)

	_, err = repo.FindByID(context.Background(), bare.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	// Any reservation record, even fully cancelled, blocks the purge.
	_, err = repo.FindByID(context.Background(), withHistory.ID)
	require.NoError(t, err)
	_, err = repo.FindByID(context.Background(), active.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, store.deletedURLs())
}

func TestPurgeArchived_StorageFailureDoesNotFailPurge(t *testing.T) {
	repo := newFakeTripRepo()
	store := &recordingStore{deleteErr: assert.AnError}
	seedTrip(repo, func(tr *model.Trip) {
		tr.Status = model.StatusArchived
		tr.Images = []string{"https://cdn.test/a.jpg"}
	})
	svc := newTestService(repo, store)

	report, err := svc.PurgeArchived(context.Background())
	require.NoError(t, err, "media cleanup is best-effort")
	assert.Equal(t, 1, report.DeletedCount)
}
