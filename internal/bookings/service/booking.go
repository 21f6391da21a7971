package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "sharely/internal/bookings/errors"
	"sharely/internal/bookings/events"
	"sharely/internal/bookings/repository"
	"sharely/internal/bookings/validator"
	itemserrors "sharely/internal/items/errors"
	userserrors "sharely/internal/users/errors"
	"sharely/pkg/config"
	apperrors "sharely/pkg/errors"
	"sharely/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ItemSource is the slice of the items store the booking engine needs.
type ItemSource interface {
	FindByID(ctx context.Context, id string) (*model.Item, error)
}

// UserSource resolves booker and viewer identities.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.Booking, error)
	Decide(ctx context.Context, actorID string, bookingID string, approved bool) (*model.Booking, error)
	GetByID(ctx context.Context, viewerID string, bookingID string) (*model.Booking, error)
	ListByBooker(ctx context.Context, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error)
	ListByOwner(ctx context.Context, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	items     ItemSource
	users     UserSource
	validator *validator.BookingValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	items ItemSource,
	users UserSource,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		items:     items,
		users:     users,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

// Overlaps reports whether a candidate interval conflicts with an existing
// booking. A conflict is the candidate starting or ending strictly inside the
// existing interval, or covering it entirely. Back-to-back intervals, where
// one ends exactly when the other starts, do not conflict.
func Overlaps(existingStart, existingEnd, candidateStart, candidateEnd time.Time) bool {
	startsInside := candidateStart.After(existingStart) && candidateStart.Before(existingEnd)
	endsInside := candidateEnd.After(existingStart) && candidateEnd.Before(existingEnd)
	covers := !candidateStart.After(existingStart) && !candidateEnd.Before(existingEnd)
	return startsInside || endsInside || covers
}

func (s *bookingService) Create(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "booker_id", bookerID, "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	if !req.End.After(*req.Start) {
		return nil, apperrors.InvalidInput("Booking end must be strictly after start")
	}

	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, itemserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", req.ItemID)
		}
		if errors.Is(err, itemserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid item ID format")
		}
		return nil, apperrors.Internal("Failed to resolve item", err)
	}

	if !item.IsAvailable() {
		return nil, apperrors.InvalidInput("Item is not available for booking")
	}

	// Advisory lock per item so two concurrent creations cannot both pass the
	// conflict check before either insert lands.
	lockID, err := s.acquireItemLock(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseItemLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		ItemID:      item.ID,
		ItemName:    item.Name,
		ItemOwnerID: item.OwnerID,
		BookerID:    bookerID,
		Start:       req.Start.UTC(),
		End:         req.End.UTC(),
		Status:      model.StatusPending,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, booking); err != nil {
			return err
		}

		// The owner cannot book their own item. Reported as not-found so the
		// response does not disclose ownership.
		if item.OwnerID == bookerID {
			return apperrors.NotFoundMasked("Item not found")
		}

		if _, err := s.users.FindByID(sessCtx, bookerID); err != nil {
			if errors.Is(err, userserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("User", bookerID)
			}
			if errors.Is(err, userserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid user ID format")
			}
			return apperrors.Internal("Failed to resolve booker", err)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"item_id", req.ItemID,
			"booker_id", bookerID,
			"error", err,
		)
		return nil, err
	}

	s.events.BookingCreated(ctx, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"item_id", booking.ItemID,
		"booker_id", booking.BookerID,
		"start", booking.Start,
		"end", booking.End,
	)
	return booking, nil
}

func (s *bookingService) Decide(ctx context.Context, actorID string, bookingID string, approved bool) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Only the item owner decides. Everyone else sees a not-found, the same
	// response a nonexistent booking gives.
	if booking.ItemOwnerID != actorID {
		return nil, apperrors.NotFoundMasked("Booking not found")
	}

	if booking.Status != model.StatusPending {
		return nil, apperrors.InvalidInput("Booking has already been decided")
	}

	status := model.StatusRefused
	if approved {
		status = model.StatusConfirmed
	}

	// The repository write is conditional on status pending, so a concurrent
	// decide that landed between our read and this write fails here instead of
	// overwriting the terminal state.
	if err := s.repo.UpdateStatus(ctx, bookingID, status); err != nil {
		if errors.Is(err, bookingserrors.ErrAlreadyDecided) {
			return nil, apperrors.InvalidInput("Booking has already been decided")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}
	booking.Status = status

	s.events.BookingDecided(ctx, booking)

	s.cfg.Log.Info("Booking decided",
		"id", booking.ID,
		"item_id", booking.ItemID,
		"status", booking.Status,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, viewerID string, bookingID string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != viewerID && booking.ItemOwnerID != viewerID {
		return nil, apperrors.NotFoundMasked("Booking not found")
	}

	return booking, nil
}

func (s *bookingService) ListByBooker(ctx context.Context, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error) {
	if err := s.verifyViewer(ctx, viewerID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindByBooker(ctx, viewerID, category, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by booker", "booker_id", viewerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) ListByOwner(ctx context.Context, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error) {
	if err := s.verifyViewer(ctx, viewerID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindByOwner(ctx, viewerID, category, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by owner", "owner_id", viewerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) verifyViewer(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if _, err := s.users.FindByID(ctx, viewerID); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", viewerID)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.Internal("Failed to resolve user", err)
	}

	return nil
}

func (s *bookingService) verifyNoConflict(ctx context.Context, candidate *model.Booking) error {
	existing, err := s.repo.FindActiveByItem(ctx, candidate.ItemID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if Overlaps(b.Start, b.End, candidate.Start, candidate.End) {
			return apperrors.InvalidInput(fmt.Sprintf(
				"Item is not available for the requested interval (%s - %s)",
				b.Start.Format(time.RFC3339),
				b.End.Format(time.RFC3339),
			))
		}
	}
	return nil
}

// acquireItemLock creates an advisory lock to prevent concurrent booking creation
// Returns the lock ID if successful, or conflict error if lock already exists
func (s *bookingService) acquireItemLock(ctx context.Context, itemID string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s", itemID)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This item is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

// releaseItemLock removes the advisory lock
func (s *bookingService) releaseItemLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
