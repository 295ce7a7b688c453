package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	triperrors "tripdesk/internal/trips/errors"
	"tripdesk/pkg/config"
	"tripdesk/pkg/model"
)

const CollectionName = "Trips"

type TripRepository interface {
	Create(ctx context.Context, trip *model.Trip) error
	FindByID(ctx context.Context, id string) (*model.Trip, error)
	Search(ctx context.Context, q model.TripListQuery) ([]*model.Trip, error)
	CountSearch(ctx context.Context, q model.TripListQuery) (int64, error)
	Update(ctx context.Context, id string, trip *model.Trip) error
	Delete(ctx context.Context, id string) error

	// ReserveSeat atomically takes one seat and appends the reservation,
	// conditioned on availableSeats > 0. Returns the post-update trip or
	// ErrNoMatch.
	ReserveSeat(ctx context.Context, id string, rec model.Reservation) (*model.Trip, error)
	// CancelReservation atomically stamps the reservation at index and
	// returns a seat, conditioned on that record existing and being active.
	// Returns the post-update trip or ErrNoMatch.
	CancelReservation(ctx context.Context, id string, index int, at time.Time) (*model.Trip, error)
	// ClampAvailableSeats pins availableSeats back to maxSeats when drifted
	// bookkeeping pushed it above capacity.
	ClampAvailableSeats(ctx context.Context, id string) error
	// SetStatusIf flips status from one value to another in a single
	// conditional update; reports whether anything changed.
	SetStatusIf(ctx context.Context, id, from, to string) (bool, error)
	// Archive marks a trip archived unless it already is.
	Archive(ctx context.Context, id string) (bool, error)

	FindPastUnarchived(ctx context.Context, before time.Time) ([]*model.Trip, error)
	FindPurgeable(ctx context.Context) ([]*model.Trip, error)

	Count(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
	CountFull(ctx context.Context) (int64, error)
}

type mongoTripRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTripRepository(cfg *config.Config, client *mongo.Client) TripRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoTripRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds a database round trip without extending a caller's
// tighter deadline.
func (r *mongoTripRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	trip.CreatedAt = now
	trip.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trip.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	var trip model.Trip
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, triperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return &trip, nil
}

func (r *mongoTripRepository) Search(ctx context.Context, q model.TripListQuery) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	sortOrder := -1
	if q.SortOrder == "asc" {
		sortOrder = 1
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "_id"
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip(int64(q.Page-1) * int64(q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, buildListFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []*model.Trip{}
	if err = cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}

func (r *mongoTripRepository) CountSearch(ctx context.Context, q model.TripListQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

// buildListFilter translates the admin list query into a document filter.
// The status bucket applies first; free-text search AND-combines with it,
// OR-matching across the descriptive fields.
func buildListFilter(q model.TripListQuery) bson.M {
	filter := bson.M{}
	switch q.Status {
	case model.BucketAvailable:
		filter["availableSeats"] = bson.M{"$gt": 0}
		filter["status"] = bson.M{"$ne": model.StatusArchived}
	case model.BucketNoSeats:
		filter["availableSeats"] = bson.M{"$lte": 0}
		filter["status"] = bson.M{"$ne": model.StatusArchived}
	case model.BucketArchived:
		filter["status"] = model.StatusArchived
	default:
		// Archived trips stay hidden unless explicitly requested.
		filter["status"] = bson.M{"$ne": model.StatusArchived}
	}

	if q.Search != "" {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		search := bson.M{"$or": bson.A{
			bson.M{"title": regex},
			bson.M{"destinationCountry": regex},
			bson.M{"destinationCity": regex},
			bson.M{"departureCity": regex},
			bson.M{"description": regex},
		}}
		return bson.M{"$and": bson.A{filter, search}}
	}
	return filter
}

func (r *mongoTripRepository) Update(ctx context.Context, id string, trip *model.Trip) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	fields := bson.M{
		"title":              trip.Title,
		"description":        trip.Description,
		"destinationCountry": trip.DestinationCountry,
		"destinationCity":    trip.DestinationCity,
		"departureCity":      trip.DepartureCity,
		"travelType":         trip.TravelType,
		"category":           trip.Category,
		"properties":         trip.Properties,
		"startDate":          trip.StartDate,
		"endDate":            trip.EndDate,
		"durationDays":       trip.DurationDays,
		"price":              trip.Price,
		"currency":           trip.Currency,
		"isFeatured":         trip.IsFeatured,
		"maxSeats":           trip.MaxSeats,
		"availableSeats":     trip.AvailableSeats,
		"images":             trip.Images,
		"updatedAt":          time.Now().UTC().Truncate(time.Millisecond),
	}
	// Status is only overwritten when the caller sends one; reservations are
	// never writable through Update.
	if trip.Status != "" {
		fields["status"] = trip.Status
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if result.MatchedCount == 0 {
		return triperrors.ErrNotFound
	}
	return nil
}

func (r *mongoTripRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if result.DeletedCount == 0 {
		return triperrors.ErrNotFound
	}
	return nil
}

func (r *mongoTripRepository) ReserveSeat(ctx context.Context, id string, rec model.Reservation) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":            oid,
		"availableSeats": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc":  bson.M{"availableSeats": -1},
		"$push": bson.M{"reservations": rec},
		"$set":  bson.M{"updatedAt": rec.ReservedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip model.Trip
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, triperrors.ErrNoMatch
		}
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}
	return &trip, nil
}

func (r *mongoTripRepository) CancelReservation(ctx context.Context, id string, index int, at time.Time) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	record := fmt.Sprintf("reservations.%d", index)
	filter := bson.M{
		"_id":    oid,
		record:   bson.M{"$exists": true},
		record + ".cancelledAt": nil,
	}
	update := bson.M{
		"$set": bson.M{
			record + ".cancelledAt": at,
			"updatedAt":             at,
		},
		"$inc": bson.M{"availableSeats": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip model.Trip
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, triperrors.ErrNoMatch
		}
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	return &trip, nil
}

func (r *mongoTripRepository) ClampAvailableSeats(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "availableSeats", Value: bson.D{
				{Key: "$min", Value: bson.A{"$availableSeats", "$maxSeats"}},
			}},
		}}},
	}
	_, err = r.collection.UpdateByID(ctx, oid, pipeline)
	if err != nil {
		return fmt.Errorf("failed to clamp available seats: %w", err)
	}
	return nil
}

func (r *mongoTripRepository) SetStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update trip status: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoTripRepository) Archive(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": bson.M{"$ne": model.StatusArchived}},
		bson.M{"$set": bson.M{"status": model.StatusArchived}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to archive trip: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoTripRepository) FindPastUnarchived(ctx context.Context, before time.Time) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	filter := bson.M{
		"endDate": bson.M{"$lt": before},
		"status":  bson.M{"$ne": model.StatusArchived},
	}
	return r.findAll(ctx, filter)
}

func (r *mongoTripRepository) FindPurgeable(ctx context.Context) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	// Any reservation history, even fully cancelled, keeps a trip out of the
	// purge set.
	filter := bson.M{
		"status": model.StatusArchived,
		"$or": bson.A{
			bson.M{"reservations": bson.M{"$exists": false}},
			bson.M{"reservations": bson.M{"$size": 0}},
		},
	}
	return r.findAll(ctx, filter)
}

func (r *mongoTripRepository) findAll(ctx context.Context, filter bson.M) ([]*model.Trip, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []*model.Trip{}
	if err = cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}

func (r *mongoTripRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *mongoTripRepository) CountAvailable(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"availableSeats": bson.M{"$gt": 0}})
}

func (r *mongoTripRepository) CountFull(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"availableSeats": bson.M{"$lte": 0}})
}

func (r *mongoTripRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}
