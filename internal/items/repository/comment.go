package repository

import (
	"context"
	"fmt"
	"sharely/pkg/config"
	"sharely/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CommentCollectionName = "Comments"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByItem(ctx context.Context, itemID string) ([]*model.Comment, error)
	FindByItems(ctx context.Context, itemIDs []string) ([]*model.Comment, error)
}

type mongoCommentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCommentRepository(cfg *config.Config) CommentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCommentRepository{
		cfg:        cfg,
		collection: db.Collection(CommentCollectionName),
	}
}

func (r *mongoCommentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	comment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		comment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCommentRepository) FindByItem(ctx context.Context, itemID string) ([]*model.Comment, error) {
	return r.FindByItems(ctx, []string{itemID})
}

func (r *mongoCommentRepository) FindByItems(ctx context.Context, itemIDs []string) ([]*model.Comment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if len(itemIDs) == 0 {
		return []*model.Comment{}, nil
	}

	filter := bson.M{"item_id": bson.M{"$in": itemIDs}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []*model.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	return comments, nil
}
