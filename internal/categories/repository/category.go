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

	categoryerrors "tripdesk/internal/categories/errors"
	"tripdesk/pkg/config"
	"tripdesk/pkg/model"
)

const CollectionName = "Categories"

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	// FindByIDs returns the categories it can resolve, keyed by id. Missing
	// ids are simply absent from the map.
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Category, error)
	Update(ctx context.Context, id string, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

type mongoCategoryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCategoryRepository(cfg *config.Config, client *mongo.Client) CategoryRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoCategoryRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCategoryRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCategoryRepository) FindAll(ctx context.Context) ([]*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []*model.Category{}
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", categoryerrors.ErrInvalidID, id)
	}

	var category model.Category
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, categoryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (r *mongoCategoryRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return map[string]*model.Category{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	byID := make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

func (r *mongoCategoryRepository) Update(ctx context.Context, id string, category *model.Category) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", categoryerrors.ErrInvalidID, id)
	}

	fields := bson.M{
		"name":       category.Name,
		"properties": category.Properties,
		"image":      category.Image,
	}
	update := bson.M{"$set": fields}
	// An empty parent detaches the node rather than writing an empty string.
	if category.Parent != "" {
		fields["parent"] = category.Parent
	} else {
		update["$unset"] = bson.M{"parent": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return categoryerrors.ErrNotFound
	}
	return nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", categoryerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return categoryerrors.ErrNotFound
	}
	return nil
}
