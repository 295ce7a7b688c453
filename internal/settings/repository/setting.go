package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tripdesk/pkg/config"
	"tripdesk/pkg/model"
)

const CollectionName = "Settings"

type SettingRepository interface {
	FindAll(ctx context.Context) ([]*model.Setting, error)
	// Upsert writes one name/value pair, inserting the document on first use.
	Upsert(ctx context.Context, name, value string) error
	DeleteByName(ctx context.Context, name string) error
}

type mongoSettingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingRepository(cfg *config.Config, client *mongo.Client) SettingRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoSettingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSettingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSettingRepository) FindAll(ctx context.Context) ([]*model.Setting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	defer cursor.Close(ctx)

	settings := []*model.Setting{}
	if err = cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

func (r *mongoSettingRepository) Upsert(ctx context.Context, name, value string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", name, err)
	}
	return nil
}

func (r *mongoSettingRepository) DeleteByName(ctx context.Context, name string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.DBWriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", name, err)
	}
	return nil
}
