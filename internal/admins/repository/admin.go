package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	adminerrors "tripdesk/internal/admins/errors"
	"tripdesk/pkg/config"
	"tripdesk/pkg/model"
)

const CollectionName = "Admins"

type AdminRepository interface {
	// Create inserts an admin; a duplicate email yields ErrDuplicate.
	Create(ctx context.Context, admin *model.Admin) error
	FindAll(ctx context.Context) ([]*model.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type mongoAdminRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAdminRepository(cfg *config.Config, client *mongo.Client) AdminRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoAdminRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique email index the duplicate check relies on.
func EnsureIndexes(ctx context.Context, cfg *config.Config, client *mongo.Client) error {
	collection := client.Database(cfg.MongoDatabaseName).Collection(CollectionName)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin email index: %w", err)
	}
	return nil
}

func (r *mongoAdminRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	admin.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", adminerrors.ErrDuplicate, admin.Email)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		admin.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAdminRepository) FindAll(ctx context.Context) ([]*model.Admin, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find admins: %w", err)
	}
	defer cursor.Close(ctx)

	admins := []*model.Admin{}
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}
	return admins, nil
}

func (r *mongoAdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	err := r.collection.FindOne(ctx, bson.M{"email": email}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	return true, nil
}

func (r *mongoAdminRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", adminerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if result.DeletedCount == 0 {
		return adminerrors.ErrNotFound
	}
	return nil
}
