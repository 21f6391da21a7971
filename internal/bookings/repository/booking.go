package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "sharely/internal/bookings/errors"
	"sharely/pkg/config"
	mongotx "sharely/pkg/db/mongo"
	"sharely/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	FindByBooker(ctx context.Context, bookerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error)
	FindByOwner(ctx context.Context, ownerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error)
	FindActiveByItem(ctx context.Context, itemID string) ([]*model.Booking, error)
	FindActiveByItems(ctx context.Context, itemIDs []string) ([]*model.Booking, error)
	FindByItemAndBooker(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// CategoryFilter translates a listing category into its Mongo predicate.
// This is the single source of truth for category semantics; PAST uses an
// inclusive end bound and CURRENT an exclusive one so a booking ending exactly
// now is past, not current.
func CategoryFilter(category model.Category, now time.Time) bson.M {
	switch category {
	case model.CategoryPast:
		return bson.M{"end_time": bson.M{"$lte": now}}
	case model.CategoryFuture:
		return bson.M{"start_time": bson.M{"$gt": now}}
	case model.CategoryCurrent:
		return bson.M{
			"start_time": bson.M{"$lte": now},
			"end_time":   bson.M{"$gt": now},
		}
	case model.CategoryWaiting:
		return bson.M{"status": model.StatusPending}
	case model.CategoryRejected:
		return bson.M{"status": model.StatusRefused}
	default:
		return bson.M{}
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		// Inside transaction - cannot wrap SessionContext, return no-op cancel
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// UpdateStatus moves a booking out of pending as a compare-and-set: the filter
// requires status pending, so a booking already decided by a concurrent request
// never matches and its terminal state is never overwritten.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StatusPending}
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrNotFound
			}
			return fmt.Errorf("failed to check booking status: %w", err)
		}
		return bookingserrors.ErrAlreadyDecided
	}

	return nil
}

func (r *mongoBookingRepository) FindByBooker(ctx context.Context, bookerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByViewer(ctx, "booker_id", bookerID, category, limit, offset)
}

func (r *mongoBookingRepository) FindByOwner(ctx context.Context, ownerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByViewer(ctx, "item_owner_id", ownerID, category, limit, offset)
}

func (r *mongoBookingRepository) findByViewer(ctx context.Context, field string, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := CategoryFilter(category, time.Now().UTC())
	filter[field] = viewerID

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// FindActiveByItem returns every booking of the item except refused ones.
// Used by the conflict check; refused bookings never block an interval.
func (r *mongoBookingRepository) FindActiveByItem(ctx context.Context, itemID string) ([]*model.Booking, error) {
	return r.FindActiveByItems(ctx, []string{itemID})
}

// FindActiveByItems returns the non-refused bookings of all given items in one
// query, sorted by start time. Feeds the projection of last/next bookings.
func (r *mongoBookingRepository) FindActiveByItems(ctx context.Context, itemIDs []string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if len(itemIDs) == 0 {
		return []*model.Booking{}, nil
	}

	filter := bson.M{
		"item_id": bson.M{"$in": itemIDs},
		"status":  bson.M{"$ne": model.StatusRefused},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by items: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// FindByItemAndBooker returns the booker's bookings of an item ordered by
// start time ascending, earliest first. Used by the comment eligibility check.
func (r *mongoBookingRepository) FindByItemAndBooker(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"item_id":   itemID,
		"booker_id": bookerID,
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by item and booker: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
