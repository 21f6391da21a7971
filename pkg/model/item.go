package model

import "time"

// Item is something an owner lends out. Available is a pointer so that a
// partial update can leave it untouched and creation can require it explicitly.
type Item struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Description string    `json:"description" bson:"description" validate:"required,min=1,max=500"`
	Available   *bool     `json:"available" bson:"available" validate:"required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (i *Item) IsAvailable() bool {
	return i.Available != nil && *i.Available
}

type ItemUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	Available   *bool  `json:"available,omitempty"`
}

// ItemResponse is an item annotated for its owner with the adjacent booking
// windows and, for everyone, the item's comments.
type ItemResponse struct {
	Item
	LastBooking *BookingRef `json:"lastBooking,omitempty"`
	NextBooking *BookingRef `json:"nextBooking,omitempty"`
	Comments    []*Comment  `json:"comments"`
}
