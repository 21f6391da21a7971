package model

import (
	"time"
)

// Booking statuses. A booking is created pending and transitions exactly once,
// to confirmed or refused, by the item owner's decision.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRefused   = "refused"
)

// Booking holds an item for the half-open interval [Start, End).
// ItemName and ItemOwnerID are snapshots taken at creation so that owner-view
// queries and responses never need a lazy item lookup.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ItemID      string    `json:"item_id" bson:"item_id" validate:"required,mongodb"`
	ItemName    string    `json:"item_name" bson:"item_name"`
	ItemOwnerID string    `json:"item_owner_id" bson:"item_owner_id" validate:"required,mongodb"`
	BookerID    string    `json:"booker_id" bson:"booker_id" validate:"required,mongodb"`
	Start       time.Time `json:"start" bson:"start_time" validate:"required"`
	End         time.Time `json:"end" bson:"end_time" validate:"required,gtfield=Start"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed refused"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the creation payload. Start and End are pointers so a
// missing timestamp is distinguishable from the zero time.
type BookingRequest struct {
	ItemID string     `json:"itemId" validate:"required,mongodb"`
	Start  *time.Time `json:"start" validate:"required"`
	End    *time.Time `json:"end" validate:"required"`
}

// BookingRef is the compact booking shape attached to item responses.
type BookingRef struct {
	ID       string    `json:"id"`
	BookerID string    `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (b *Booking) Ref() *BookingRef {
	return &BookingRef{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    b.Start,
		End:      b.End,
	}
}

// Category is the query-time listing filter. It is never persisted.
type Category string

const (
	CategoryAll      Category = "ALL"
	CategoryCurrent  Category = "CURRENT"
	CategoryPast     Category = "PAST"
	CategoryFuture   Category = "FUTURE"
	CategoryWaiting  Category = "WAITING"
	CategoryRejected Category = "REJECTED"
)

// Categories lists every recognized listing category.
var Categories = []Category{
	CategoryAll,
	CategoryCurrent,
	CategoryPast,
	CategoryFuture,
	CategoryWaiting,
	CategoryRejected,
}

// ParseCategory resolves a state query parameter. The empty string defaults to ALL.
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return CategoryAll, true
	}
	c := Category(s)
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}
