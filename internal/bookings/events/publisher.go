// Package events publishes booking lifecycle notifications to Kafka. Delivery
// is best effort: a failed publish is logged and the request proceeds.
package events

import (
	"context"
	"time"

	"sharely/pkg/kafka"
	"sharely/pkg/logger"
	"sharely/pkg/middleware"
	"sharely/pkg/model"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingDecided = "booking.decided"

	sourceService = "sharely"
)

// BookingEvent is the payload carried by every booking message.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	ItemID     string    `json:"item_id"`
	ItemName   string    `json:"item_name"`
	OwnerID    string    `json:"owner_id"`
	BookerID   string    `json:"booker_id"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingDecided(ctx context.Context, booking *model.Booking)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaPublisher wraps a producer whose writer is already bound to the
// booking events topic.
func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

func (p *kafkaPublisher) BookingDecided(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingDecided, booking)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := BookingEvent{
		BookingID:  booking.ID,
		ItemID:     booking.ItemID,
		ItemName:   booking.ItemName,
		OwnerID:    booking.ItemOwnerID,
		BookerID:   booking.BookerID,
		Status:     booking.Status,
		Start:      booking.Start,
		End:        booking.End,
		OccurredAt: time.Now().UTC(),
	}

	// Keyed by item so all events of one item land on the same partition.
	builder := kafka.NewMessage().
		WithKey(booking.ItemID).
		WithEventType(eventType).
		WithSource(sourceService).
		WithValue(event)

	if rid, ok := ctx.Value(middleware.RequestIDKey).(string); ok && rid != "" {
		builder = builder.WithCorrelationID(rid)
	}

	if err := p.producer.Publish(ctx, builder.Build()); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"item_id", booking.ItemID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking) {}
func (noopPublisher) BookingDecided(context.Context, *model.Booking) {}
