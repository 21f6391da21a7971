// Package projector derives the last and next booking window per item from a
// flat list of bookings. It is a pure function over its inputs so the items
// service can annotate a whole listing from a single bookings query.
package projector

import (
	"sharely/pkg/model"
	"time"
)

// Projection holds the adjacent booking windows of one item, relative to a
// reference instant. Either side may be nil.
type Projection struct {
	Last *model.BookingRef
	Next *model.BookingRef
}

// Project groups the bookings by item and picks, per item:
//
//	Last: the booking with the greatest end among those started before now.
//	Next: the booking with the smallest start among those starting after now.
//
// Refused bookings are ignored. A booking starting exactly at now counts for
// neither side.
func Project(bookings []*model.Booking, now time.Time) map[string]Projection {
	result := make(map[string]Projection)

	for _, b := range bookings {
		if b.Status == model.StatusRefused {
			continue
		}

		p := result[b.ItemID]

		if b.Start.Before(now) {
			if p.Last == nil || b.End.After(p.Last.End) {
				p.Last = b.Ref()
			}
		} else if b.Start.After(now) {
			if p.Next == nil || b.Start.Before(p.Next.Start) {
				p.Next = b.Ref()
			}
		}

		result[b.ItemID] = p
	}

	return result
}

// ProjectOne is the single-item convenience form of Project.
func ProjectOne(bookings []*model.Booking, now time.Time) Projection {
	for _, p := range Project(bookings, now) {
		return p
	}
	return Projection{}
}
