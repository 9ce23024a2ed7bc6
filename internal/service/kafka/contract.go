package kafka

import "context"

// MessageBroker moves opaque key/value messages over one topic. Messages
// with the same key keep their order.
type MessageBroker interface {
	SendMessage(ctx context.Context, key, value []byte) error
	// ReadMessage blocks until a message arrives or ctx ends.
	ReadMessage(ctx context.Context) (key, value []byte, err error)
	Close() error
}
