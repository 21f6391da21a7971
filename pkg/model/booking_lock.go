package model

import "time"

// BookingLock is an advisory lock serializing booking creation per item.
// The conflict check is a read-then-write, so two concurrent creations for the
// same item must not interleave between the read and the insert.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
