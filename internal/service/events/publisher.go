// Package events publishes note and category mutations to the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/kafka"
)

type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

type Noop struct{}

func (Noop) Publish(context.Context, model.Event) error { return nil }

type BrokerPublisher struct {
	broker kafka.MessageBroker
}

func NewBrokerPublisher(broker kafka.MessageBroker) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event model.Event) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}
	return p.broker.SendMessage(ctx, []byte(Key(event)), value)
}

// Key is the partition key of an event. Note events are keyed by note, so
// the created/updated/toggled/deleted history of one note stays in order.
// Category events carry no note and are keyed by user.
func Key(event model.Event) string {
	if event.NoteID != "" {
		return string(event.NoteID)
	}
	return string(event.UserID)
}

func New(eventType model.EventType) model.Event {
	return model.Event{
		ID:   uuid.NewString(),
		Type: eventType,
		At:   time.Now().UTC(),
	}
}

func Encode(event model.Event) ([]byte, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return value, nil
}

func Decode(value []byte) (model.Event, error) {
	var event model.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return model.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" {
		return model.Event{}, fmt.Errorf("failed to decode event: missing type")
	}
	return event, nil
}
