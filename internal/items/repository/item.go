package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	itemserrors "sharely/internal/items/errors"
	"sharely/pkg/config"
	"sharely/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Items"
)

type mongoItemRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error)
	Update(ctx context.Context, id string, item *model.Item) error
	Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error)
}

func NewMongoItemRepository(cfg *config.Config) ItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoItemRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoItemRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoItemRepository) Create(ctx context.Context, item *model.Item) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	item.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	var item model.Item
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, itemserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return &item, nil
}

func (r *mongoItemRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find items by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.Item
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return items, nil
}

func (r *mongoItemRepository) Update(ctx context.Context, id string, item *model.Item) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if result.MatchedCount == 0 {
		return itemserrors.ErrNotFound
	}

	return nil
}

// Search matches the text case-insensitively against name and description,
// available items only. Regex metacharacters in the input are quoted.
func (r *mongoItemRepository) Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	filter := bson.M{
		"available": true,
		"$or": []bson.M{
			{"name": pattern},
			{"description": pattern},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.Item
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return items, nil
}
