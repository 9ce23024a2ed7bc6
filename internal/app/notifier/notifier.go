package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/internal/metrics"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/events"
	"github.com/kotche/carrot-notes/internal/service/kafka"
)

const (
	retryDelay = time.Second
)

// Sink receives every decoded event.
type Sink interface {
	Notify(ctx context.Context, event model.Event) error
}

type Notifier struct {
	broker kafka.MessageBroker
	sink   Sink
	logger *slog.Logger
}

// New builds a notifier. A nil sink only logs and counts events.
func New(broker kafka.MessageBroker, sink Sink, logger *slog.Logger) *Notifier {
	return &Notifier{
		broker: broker,
		sink:   sink,
		logger: logger,
	}
}

// Start consumes events until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	n.logger.Info("notifier started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, value, err := n.broker.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.logger.Error("error reading message from kafka", "error", err)
			if !sleep(ctx, retryDelay) {
				return ctx.Err()
			}
			continue
		}

		n.handle(ctx, value)
	}
}

func (n *Notifier) handle(ctx context.Context, value []byte) {
	event, err := events.Decode(value)
	if err != nil {
		n.logger.Warn("skipping malformed event", "error", err)
		return
	}

	metrics.NoteEvents.WithLabelValues(string(event.Type)).Inc()
	n.logger.Info("event received",
		"event_id", event.ID,
		"type", event.Type,
		"user_id", event.UserID,
		"note_id", event.NoteID,
		"category", event.Category,
	)

	if n.sink == nil {
		return
	}
	if err = n.sink.Notify(ctx, event); err != nil {
		n.logger.Error("failed to forward event", "event_id", event.ID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// ChatSink posts a one-line summary of each event to a Telegram chat.
type ChatSink struct {
	bot    *telebot.Bot
	chatID int64
}

func NewChatSink(bot *telebot.Bot, chatID int64) *ChatSink {
	return &ChatSink{bot: bot, chatID: chatID}
}

func (s *ChatSink) Notify(_ context.Context, event model.Event) error {
	if s.chatID == 0 {
		return errors.New("chat id is not configured")
	}
	if _, err := s.bot.Send(&telebot.Chat{ID: s.chatID}, Describe(event)); err != nil {
		return fmt.Errorf("failed to send event %s to chat %d: %w", event.ID, s.chatID, err)
	}
	return nil
}

// Describe renders an event for humans.
func Describe(event model.Event) string {
	at := event.At.UTC().Format("2006-01-02 15:04:05")

	switch event.Type {
	case model.EventNoteCreated:
		return fmt.Sprintf("%s: note %s created by %s", at, event.NoteID, event.UserID)
	case model.EventNoteUpdated:
		return fmt.Sprintf("%s: note %s edited", at, event.NoteID)
	case model.EventNoteToggled:
		return fmt.Sprintf("%s: note %s status changed", at, event.NoteID)
	case model.EventNoteDeleted:
		return fmt.Sprintf("%s: note %s deleted", at, event.NoteID)
	case model.EventCategoryAdded:
		return fmt.Sprintf("%s: category %q added by %s", at, event.Category, event.UserID)
	case model.EventCategoryRenamed:
		return fmt.Sprintf("%s: category renamed to %q by %s", at, event.Category, event.UserID)
	case model.EventCategoryDeleted:
		return fmt.Sprintf("%s: category %q deleted by %s", at, event.Category, event.UserID)
	default:
		return fmt.Sprintf("%s: %s", at, event.Type)
	}
}
