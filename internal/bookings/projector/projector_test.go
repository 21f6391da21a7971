package projector

import (
	"testing"
	"time"

	"sharely/pkg/model"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func booking(id, itemID string, startOffset, endOffset time.Duration, status string) *model.Booking {
	return &model.Booking{
		ID:     id,
		ItemID: itemID,
		Start:  now.Add(startOffset),
		End:    now.Add(endOffset),
		Status: status,
	}
}

func TestProject_LastAndNext(t *testing.T) {
	bookings := []*model.Booking{
		booking("a", "item1", -10*time.Hour, -8*time.Hour, model.StatusConfirmed),
		booking("b", "item1", -5*time.Hour, -3*time.Hour, model.StatusConfirmed),
		booking("c", "item1", 2*time.Hour, 4*time.Hour, model.StatusPending),
		booking("d", "item1", 6*time.Hour, 8*time.Hour, model.StatusConfirmed),
	}

	result := Project(bookings, now)

	p, ok := result["item1"]
	if !ok {
		t.Fatal("expected projection for item1")
	}
	if p.Last == nil || p.Last.ID != "b" {
		t.Errorf("expected last booking b, got %+v", p.Last)
	}
	if p.Next == nil || p.Next.ID != "c" {
		t.Errorf("expected next booking c, got %+v", p.Next)
	}
}

func TestProject_LastPicksGreatestEnd(t *testing.T) {
	// Booking "long" started earlier but runs later; arg-max is by end, not start.
	bookings := []*model.Booking{
		booking("long", "item1", -10*time.Hour, -1*time.Hour, model.StatusConfirmed),
		booking("short", "item1", -5*time.Hour, -4*time.Hour, model.StatusConfirmed),
	}

	p := Project(bookings, now)["item1"]
	if p.Last == nil || p.Last.ID != "long" {
		t.Errorf("expected last booking long, got %+v", p.Last)
	}
}

func TestProject_CurrentBookingCountsAsLast(t *testing.T) {
	bookings := []*model.Booking{
		booking("running", "item1", -1*time.Hour, 1*time.Hour, model.StatusConfirmed),
	}

	p := Project(bookings, now)["item1"]
	if p.Last == nil || p.Last.ID != "running" {
		t.Errorf("expected running booking as last, got %+v", p.Last)
	}
	if p.Next != nil {
		t.Errorf("expected no next booking, got %+v", p.Next)
	}
}

func TestProject_RefusedIgnored(t *testing.T) {
	bookings := []*model.Booking{
		booking("a", "item1", -5*time.Hour, -3*time.Hour, model.StatusRefused),
		booking("b", "item1", 2*time.Hour, 4*time.Hour, model.StatusRefused),
	}

	result := Project(bookings, now)
	if len(result) != 0 {
		t.Errorf("expected no projections from refused bookings, got %v", result)
	}
}

func TestProject_StartExactlyNowCountsForNeither(t *testing.T) {
	bookings := []*model.Booking{
		booking("edge", "item1", 0, 2*time.Hour, model.StatusConfirmed),
	}

	p := Project(bookings, now)["item1"]
	if p.Last != nil {
		t.Errorf("expected no last booking, got %+v", p.Last)
	}
	if p.Next != nil {
		t.Errorf("expected no next booking, got %+v", p.Next)
	}
}

func TestProject_GroupsByItem(t *testing.T) {
	bookings := []*model.Booking{
		booking("a", "item1", -5*time.Hour, -3*time.Hour, model.StatusConfirmed),
		booking("b", "item2", 2*time.Hour, 4*time.Hour, model.StatusConfirmed),
	}

	result := Project(bookings, now)
	if result["item1"].Last == nil || result["item1"].Last.ID != "a" {
		t.Errorf("expected item1 last a, got %+v", result["item1"])
	}
	if result["item1"].Next != nil {
		t.Errorf("expected no next for item1, got %+v", result["item1"].Next)
	}
	if result["item2"].Next == nil || result["item2"].Next.ID != "b" {
		t.Errorf("expected item2 next b, got %+v", result["item2"])
	}
}

func TestProject_Empty(t *testing.T) {
	result := Project(nil, now)
	if len(result) != 0 {
		t.Errorf("expected empty map, got %v", result)
	}
}
