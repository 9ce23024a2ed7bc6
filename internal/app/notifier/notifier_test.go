package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/carrot-notes/internal/metrics"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/events"
)

// queueBroker hands out queued messages, then blocks until the context ends.
type queueBroker struct {
	mu       sync.Mutex
	messages [][]byte
	errs     []error
}

func (b *queueBroker) SendMessage(context.Context, []byte, []byte) error { return nil }

func (b *queueBroker) ReadMessage(ctx context.Context) ([]byte, []byte, error) {
	b.mu.Lock()
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		b.mu.Unlock()
		return nil, nil, err
	}
	if len(b.messages) > 0 {
		msg := b.messages[0]
		b.messages = b.messages[1:]
		b.mu.Unlock()
		return []byte("key"), msg, nil
	}
	b.mu.Unlock()

	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (b *queueBroker) Close() error { return nil }

type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
	err    error
	done   chan struct{}
	want   int
}

func (s *recordingSink) Notify(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) == s.want {
		close(s.done)
	}
	return s.err
}

func encode(t *testing.T, event model.Event) []byte {
	t.Helper()
	value, err := events.Encode(event)
	require.NoError(t, err)
	return value
}

func TestNotifier_ForwardsDecodedEvents(t *testing.T) {
	created := events.New(model.EventNoteCreated)
	created.UserID = "u1"
	created.NoteID = "n1"
	deleted := events.New(model.EventCategoryDeleted)
	deleted.UserID = "u1"
	deleted.Category = "Home"

	broker := &queueBroker{messages: [][]byte{
		encode(t, created),
		[]byte("not json"),
		encode(t, deleted),
	}}
	sink := &recordingSink{done: make(chan struct{}), want: 2, err: errors.New("chat unavailable")}
	before := testutil.ToFloat64(metrics.NoteEvents.WithLabelValues(string(model.EventNoteCreated)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := New(broker, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	result := make(chan error, 1)
	go func() { result <- n.Start(ctx) }()

	select {
	case <-sink.done:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not forwarded")
	}
	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)

	require.Len(t, sink.events, 2)
	assert.Equal(t, created.ID, sink.events[0].ID)
	assert.Equal(t, model.EventCategoryDeleted, sink.events[1].Type)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NoteEvents.WithLabelValues(string(model.EventNoteCreated))))
}

func TestNotifier_StopsOnCancel(t *testing.T) {
	broker := &queueBroker{errs: []error{errors.New("broker down")}}
	ctx, cancel := context.WithCancel(context.Background())

	n := New(broker, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	result := make(chan error, 1)
	go func() { result <- n.Start(ctx) }()

	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("notifier did not stop")
	}
}

func TestDescribe(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		event model.Event
		want  string
	}{
		{
			event: model.Event{Type: model.EventNoteCreated, NoteID: "n1", UserID: "u1", At: at},
			want:  "2025-01-02 03:04:05: note n1 created by u1",
		},
		{
			event: model.Event{Type: model.EventNoteToggled, NoteID: "n1", At: at},
			want:  "2025-01-02 03:04:05: note n1 status changed",
		},
		{
			event: model.Event{Type: model.EventCategoryRenamed, Category: "Work", UserID: "u1", At: at},
			want:  `2025-01-02 03:04:05: category renamed to "Work" by u1`,
		},
		{
			event: model.Event{Type: "custom", At: at},
			want:  "2025-01-02 03:04:05: custom",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.event))
		})
	}
}
