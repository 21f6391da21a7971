package service

import (
	"context"
	"errors"
	"time"

	"sharely/internal/bookings/projector"
	itemserrors "sharely/internal/items/errors"
	"sharely/internal/items/repository"
	userserrors "sharely/internal/users/errors"
	"sharely/pkg/config"
	apperrors "sharely/pkg/errors"
	"sharely/pkg/model"
	"sharely/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

// BookingSource is the slice of the bookings store the items service consumes
// for projection and comment eligibility.
type BookingSource interface {
	FindActiveByItems(ctx context.Context, itemIDs []string) ([]*model.Booking, error)
	FindByItemAndBooker(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error)
}

// UserSource resolves owners and comment authors.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID string, item *model.Item) error
	Update(ctx context.Context, actorID string, id string, updates *model.ItemUpdate) (*model.Item, error)
	Get(ctx context.Context, viewerID string, id string) (*model.ItemResponse, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.ItemResponse, error)
	Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error)
	AddComment(ctx context.Context, authorID string, itemID string, req *model.CommentRequest) (*model.Comment, error)
}

type itemService struct {
	repo     repository.ItemRepository
	comments repository.CommentRepository
	bookings BookingSource
	users    UserSource
	validate *validator.Validate
	cfg      *config.Config
}

func NewItemService(
	repo repository.ItemRepository,
	comments repository.CommentRepository,
	bookings BookingSource,
	users UserSource,
	cfg *config.Config,
) ItemService {
	return &itemService{
		repo:     repo,
		comments: comments,
		bookings: bookings,
		users:    users,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *itemService) Create(ctx context.Context, ownerID string, item *model.Item) error {
	if err := s.verifyUser(ctx, ownerID); err != nil {
		return err
	}

	item.OwnerID = ownerID
	s.sanitize(item)
	if err := s.validate.Struct(item); err != nil {
		s.cfg.Log.Warn("Item validation failed", "owner_id", ownerID, "error", err)
		return apperrors.Validation("Invalid item", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create item", "owner_id", ownerID, "error", err)
		return apperrors.Internal("Failed to create item", err)
	}

	s.cfg.Log.Info("Item created successfully", "id", item.ID, "owner_id", ownerID)
	return nil
}

func (s *itemService) Update(ctx context.Context, actorID string, id string, updates *model.ItemUpdate) (*model.Item, error) {
	existing, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only the owner edits an item. Anyone else gets the same not-found a
	// nonexistent item would give.
	if existing.OwnerID != actorID {
		return nil, apperrors.NotFoundMasked("Item not found")
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Available != nil {
		merged.Available = updates.Available
	}

	s.sanitize(&merged)
	if err := s.validate.Struct(&merged); err != nil {
		s.cfg.Log.Warn("Item update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid item update", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, itemserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		s.cfg.Log.Error("Failed to update item", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update item", err)
	}

	s.cfg.Log.Info("Item updated successfully", "id", id)
	return &merged, nil
}

func (s *itemService) Get(ctx context.Context, viewerID string, id string) (*model.ItemResponse, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItem(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to load comments", "item_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load comments", err)
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	resp := &model.ItemResponse{
		Item:     *item,
		Comments: comments,
	}

	// The booking windows are the owner's view only. Other users see the item
	// and its comments without projection.
	if viewerID == item.OwnerID {
		bookings, err := s.bookings.FindActiveByItems(ctx, []string{id})
		if err != nil {
			s.cfg.Log.Error("Failed to load bookings for projection", "item_id", id, "error", err)
			return nil, apperrors.Internal("Failed to load bookings", err)
		}
		p := projector.ProjectOne(bookings, time.Now().UTC())
		resp.LastBooking = p.Last
		resp.NextBooking = p.Next
	}

	return resp, nil
}

func (s *itemService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.ItemResponse, error) {
	if err := s.verifyUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list items by owner", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve items", err)
	}

	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	// One bookings query and one comments query annotate the whole page.
	bookings, err := s.bookings.FindActiveByItems(ctx, itemIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for projection", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}
	projections := projector.Project(bookings, time.Now().UTC())

	comments, err := s.comments.FindByItems(ctx, itemIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load comments", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to load comments", err)
	}
	commentsByItem := make(map[string][]*model.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	responses := make([]*model.ItemResponse, 0, len(items))
	for _, item := range items {
		itemComments := commentsByItem[item.ID]
		if itemComments == nil {
			itemComments = []*model.Comment{}
		}

		p := projections[item.ID]
		responses = append(responses, &model.ItemResponse{
			Item:        *item,
			LastBooking: p.Last,
			NextBooking: p.Next,
			Comments:    itemComments,
		})
	}

	return responses, nil
}

func (s *itemService) Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error) {
	text = sanitizer.SanitizeText(text)
	if text == "" {
		return []*model.Item{}, nil
	}

	items, err := s.repo.Search(ctx, text, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search items", "text", text, "error", err)
		return nil, apperrors.Internal("Failed to search items", err)
	}

	if items == nil {
		items = []*model.Item{}
	}
	return items, nil
}

func (s *itemService) AddComment(ctx context.Context, authorID string, itemID string, req *model.CommentRequest) (*model.Comment, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", authorID)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		return nil, apperrors.Internal("Failed to resolve comment author", err)
	}

	comment := &model.Comment{
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       sanitizer.SanitizeText(req.Text),
	}
	if err := s.validate.Struct(comment); err != nil {
		s.cfg.Log.Warn("Comment validation failed", "item_id", itemID, "error", err)
		return nil, apperrors.Validation("Invalid comment", map[string]any{"error": err.Error()})
	}

	if err := s.verifyCompletedRental(ctx, itemID, authorID); err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.cfg.Log.Error("Failed to create comment", "item_id", itemID, "error", err)
		return nil, apperrors.Internal("Failed to create comment", err)
	}

	s.cfg.Log.Info("Comment created successfully", "id", comment.ID, "item_id", itemID)
	return comment, nil
}

// --- Helpers ---

// verifyCompletedRental requires that the author's earliest booking of the
// item has already ended. Commenting mid-rental or before one is rejected.
func (s *itemService) verifyCompletedRental(ctx context.Context, itemID string, authorID string) error {
	bookings, err := s.bookings.FindByItemAndBooker(ctx, itemID, authorID)
	if err != nil {
		return apperrors.Internal("Failed to check bookings for comment", err)
	}

	if len(bookings) == 0 {
		return apperrors.InvalidInput("User has no completed booking of this item")
	}

	earliest := bookings[0]
	if !earliest.End.Before(time.Now().UTC()) {
		return apperrors.InvalidInput("User has no completed booking of this item")
	}

	return nil
}

func (s *itemService) findItem(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Item ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		if errors.Is(err, itemserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid item ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve item", err)
	}

	return item, nil
}

func (s *itemService) verifyUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", userID)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.Internal("Failed to resolve user", err)
	}

	return nil
}

func (s *itemService) sanitize(item *model.Item) {
	item.Name = sanitizer.SanitizeText(item.Name)
	item.Description = sanitizer.SanitizeText(item.Description)
}
