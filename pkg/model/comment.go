package model

import "time"

// Comment is feedback left by a booker after their rental of the item ended.
// AuthorName is a snapshot so listing comments never joins against users.
type Comment struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ItemID     string    `json:"item_id" bson:"item_id" validate:"required,mongodb"`
	AuthorID   string    `json:"author_id" bson:"author_id" validate:"required,mongodb"`
	AuthorName string    `json:"authorName" bson:"author_name"`
	Text       string    `json:"text" bson:"text" validate:"required,min=1,max=1000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}
