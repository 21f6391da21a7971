package service

import (
	"context"
	"testing"
	"time"

	itemserrors "sharely/internal/items/errors"
	userserrors "sharely/internal/users/errors"
	"sharely/pkg/config"
	apperrors "sharely/pkg/errors"
	"sharely/pkg/logger"
	"sharely/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Mock repositories for testing

type mockItemRepository struct {
	createFunc      func(ctx context.Context, item *model.Item) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Item, error)
	findByOwnerFunc func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error)
	updateFunc      func(ctx context.Context, id string, item *model.Item) error
	searchFunc      func(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error)
}

func (m *mockItemRepository) Create(ctx context.Context, item *model.Item) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	item.ID = "64a000000000000000000010"
	return nil
}

func (m *mockItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, itemserrors.ErrNotFound
}

func (m *mockItemRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID, limit, offset)
	}
	return []*model.Item{}, nil
}

func (m *mockItemRepository) Update(ctx context.Context, id string, item *model.Item) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, item)
	}
	return nil
}

func (m *mockItemRepository) Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, text, limit, offset)
	}
	return []*model.Item{}, nil
}

type mockCommentRepository struct {
	createFunc      func(ctx context.Context, comment *model.Comment) error
	findByItemsFunc func(ctx context.Context, itemIDs []string) ([]*model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	comment.ID = "64a000000000000000000060"
	return nil
}

func (m *mockCommentRepository) FindByItem(ctx context.Context, itemID string) ([]*model.Comment, error) {
	return m.FindByItems(ctx, []string{itemID})
}

func (m *mockCommentRepository) FindByItems(ctx context.Context, itemIDs []string) ([]*model.Comment, error) {
	if m.findByItemsFunc != nil {
		return m.findByItemsFunc(ctx, itemIDs)
	}
	return []*model.Comment{}, nil
}

type mockBookingSource struct {
	findActiveByItemsFunc   func(ctx context.Context, itemIDs []string) ([]*model.Booking, error)
	findByItemAndBookerFunc func(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error)
}

func (m *mockBookingSource) FindActiveByItems(ctx context.Context, itemIDs []string) ([]*model.Booking, error) {
	if m.findActiveByItemsFunc != nil {
		return m.findActiveByItemsFunc(ctx, itemIDs)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingSource) FindByItemAndBooker(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error) {
	if m.findByItemAndBookerFunc != nil {
		return m.findByItemAndBookerFunc(ctx, itemID, bookerID)
	}
	return []*model.Booking{}, nil
}

type mockUserSource struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserSource) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

const (
	ownerID   = "64a000000000000000000001"
	viewerID  = "64a000000000000000000002"
	theItemID = "64a000000000000000000010"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func newTestService(items *mockItemRepository, comments *mockCommentRepository, bookings *mockBookingSource, users *mockUserSource, cfg *config.Config) *itemService {
	return &itemService{
		repo:     items,
		comments: comments,
		bookings: bookings,
		users:    users,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func storedItem() *model.Item {
	available := true
	return &model.Item{
		ID:          theItemID,
		OwnerID:     ownerID,
		Name:        "garden drill",
		Description: "cordless, two batteries",
		Available:   &available,
	}
}

func knownUser(id string) *model.User {
	return &model.User{ID: id, Name: "Some User", Email: "user@example.com"}
}

func TestGet_OwnerSeesProjection(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UTC()
	svc := newTestService(
		&mockItemRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return storedItem(), nil
		}},
		&mockCommentRepository{},
		&mockBookingSource{findActiveByItemsFunc: func(ctx context.Context, itemIDs []string) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "past", ItemID: theItemID, Start: now.Add(-3 * time.Hour), End: now.Add(-1 * time.Hour), Status: model.StatusConfirmed},
				{ID: "future", ItemID: theItemID, Start: now.Add(2 * time.Hour), End: now.Add(4 * time.Hour), Status: model.StatusPending},
			}, nil
		}},
		&mockUserSource{},
		cfg,
	)

	resp, err := svc.Get(context.Background(), ownerID, theItemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LastBooking == nil || resp.LastBooking.ID != "past" {
		t.Errorf("expected last booking past, got %+v", resp.LastBooking)
	}
	if resp.NextBooking == nil || resp.NextBooking.ID != "future" {
		t.Errorf("expected next booking future, got %+v", resp.NextBooking)
	}
}

func TestGet_NonOwnerSeesNoProjection(t *testing.T) {
	cfg := testConfig(t)
	bookingsQueried := false
	svc := newTestService(
		&mockItemRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return storedItem(), nil
		}},
		&mockCommentRepository{},
		&mockBookingSource{findActiveByItemsFunc: func(ctx context.Context, itemIDs []string) ([]*model.Booking, error) {
			bookingsQueried = true
			return []*model.Booking{}, nil
		}},
		&mockUserSource{},
		cfg,
	)

	resp, err := svc.Get(context.Background(), viewerID, theItemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LastBooking != nil || resp.NextBooking != nil {
		t.Errorf("expected no projection for non-owner, got last=%+v next=%+v", resp.LastBooking, resp.NextBooking)
	}
	if bookingsQueried {
		t.Error("bookings must not be queried for a non-owner view")
	}
	if resp.Comments == nil {
		t.Error("comments must never be nil")
	}
}

func TestListByOwner_AnnotatesEveryItem(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UTC()

	secondID := "64a000000000000000000011"
	available := true
	svc := newTestService(
		&mockItemRepository{findByOwnerFunc: func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error) {
			return []*model.Item{
				storedItem(),
				{ID: secondID, OwnerID: ownerID, Name: "ladder", Description: "3m aluminium", Available: &available},
			}, nil
		}},
		&mockCommentRepository{findByItemsFunc: func(ctx context.Context, itemIDs []string) ([]*model.Comment, error) {
			return []*model.Comment{
				{ID: "c1", ItemID: theItemID, AuthorID: viewerID, Text: "solid"},
			}, nil
		}},
		&mockBookingSource{findActiveByItemsFunc: func(ctx context.Context, itemIDs []string) ([]*model.Booking, error) {
			if len(itemIDs) != 2 {
				t.Errorf("expected one batched query for 2 items, got %v", itemIDs)
			}
			return []*model.Booking{
				{ID: "next", ItemID: secondID, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: model.StatusConfirmed},
			}, nil
		}},
		&mockUserSource{findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return knownUser(id), nil
		}},
		cfg,
	)

	responses, err := svc.ListByOwner(context.Background(), ownerID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 items, got %d", len(responses))
	}
	if len(responses[0].Comments) != 1 {
		t.Errorf("expected comment attached to first item, got %d", len(responses[0].Comments))
	}
	if responses[1].NextBooking == nil || responses[1].NextBooking.ID != "next" {
		t.Errorf("expected next booking on second item, got %+v", responses[1].NextBooking)
	}
	if responses[1].Comments == nil {
		t.Error("comments must never be nil")
	}
}

func TestSearch_BlankTextReturnsEmpty(t *testing.T) {
	cfg := testConfig(t)
	searched := false
	svc := newTestService(
		&mockItemRepository{searchFunc: func(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error) {
			searched = true
			return nil, nil
		}},
		&mockCommentRepository{}, &mockBookingSource{}, &mockUserSource{}, cfg,
	)

	for _, text := range []string{"", "   ", "\t\n"} {
		items, err := svc.Search(context.Background(), text, 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty result for blank text %q", text)
		}
	}
	if searched {
		t.Error("repository must not be queried for blank text")
	}
}

func TestUpdate_NonOwnerGetsNotFound(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(
		&mockItemRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return storedItem(), nil
		}},
		&mockCommentRepository{}, &mockBookingSource{}, &mockUserSource{}, cfg,
	)

	name := "renamed"
	_, err := svc.Update(context.Background(), viewerID, theItemID, &model.ItemUpdate{Name: name})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	cfg := testConfig(t)
	var written *model.Item
	svc := newTestService(
		&mockItemRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
				return storedItem(), nil
			},
			updateFunc: func(ctx context.Context, id string, item *model.Item) error {
				written = item
				return nil
			},
		},
		&mockCommentRepository{}, &mockBookingSource{}, &mockUserSource{}, cfg,
	)

	unavailable := false
	updated, err := svc.Update(context.Background(), ownerID, theItemID, &model.ItemUpdate{Available: &unavailable})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "garden drill" {
		t.Errorf("name must survive a partial update, got %q", updated.Name)
	}
	if written == nil || written.Available == nil || *written.Available {
		t.Errorf("expected availability written as false, got %+v", written)
	}
}

func TestAddComment_RequiresCompletedRental(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		bookings []*model.Booking
		wantErr  bool
	}{
		{"no bookings", []*model.Booking{}, true},
		{"rental still running", []*model.Booking{
			{ID: "b1", ItemID: theItemID, BookerID: viewerID, Start: now.Add(-time.Hour), End: now.Add(time.Hour), Status: model.StatusConfirmed},
		}, true},
		{"rental ended", []*model.Booking{
			{ID: "b1", ItemID: theItemID, BookerID: viewerID, Start: now.Add(-3 * time.Hour), End: now.Add(-time.Hour), Status: model.StatusConfirmed},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(
				&mockItemRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
					return storedItem(), nil
				}},
				&mockCommentRepository{},
				&mockBookingSource{findByItemAndBookerFunc: func(ctx context.Context, itemID string, bookerID string) ([]*model.Booking, error) {
					return tt.bookings, nil
				}},
				&mockUserSource{findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
					return knownUser(id), nil
				}},
				cfg,
			)

			comment, err := svc.AddComment(context.Background(), viewerID, theItemID, &model.CommentRequest{Text: "great tool"})
			if tt.wantErr {
				assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if comment.AuthorName != "Some User" {
				t.Errorf("expected author name snapshot, got %q", comment.AuthorName)
			}
			if comment.ItemID != theItemID {
				t.Errorf("expected item id %s, got %s", theItemID, comment.ItemID)
			}
		})
	}
}

func TestCreate_UnknownOwner(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(&mockItemRepository{}, &mockCommentRepository{}, &mockBookingSource{}, &mockUserSource{}, cfg)

	available := true
	item := &model.Item{Name: "drill", Description: "a drill", Available: &available}
	err := svc.Create(context.Background(), ownerID, item)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_SanitizesFields(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(
		&mockItemRepository{},
		&mockCommentRepository{},
		&mockBookingSource{},
		&mockUserSource{findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return knownUser(id), nil
		}},
		cfg,
	)

	available := true
	item := &model.Item{Name: "  garden \t drill ", Description: " two\nbatteries ", Available: &available}
	if err := svc.Create(context.Background(), ownerID, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "garden drill" {
		t.Errorf("expected sanitized name, got %q", item.Name)
	}
	if item.Description != "two batteries" {
		t.Errorf("expected sanitized description, got %q", item.Description)
	}
	if item.OwnerID != ownerID {
		t.Errorf("expected owner from identity, got %q", item.OwnerID)
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}
