package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type Service struct {
	producer *kafka.Writer
	consumer *kafka.Reader
}

type Options struct {
	Brokers           []string
	Topic             string
	GroupID           string
	NumPartitions     int
	ReplicationFactor int
}

// New ensures the topic exists on every broker and opens a producer. A
// consumer is opened only when GroupID is set.
func New(opts Options, logger *slog.Logger) (*Service, error) {
	for _, broker := range opts.Brokers {
		if err := createTopic(opts, broker, logger); err != nil {
			return nil, err
		}
	}

	s := &Service{
		producer: &kafka.Writer{
			Addr:     kafka.TCP(opts.Brokers...),
			Topic:    opts.Topic,
			Balancer: &kafka.Hash{},
		},
	}

	if opts.GroupID != "" {
		s.consumer = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        opts.Brokers,
			Topic:          opts.Topic,
			GroupID:        opts.GroupID,
			CommitInterval: time.Second,
		})
	}

	return s, nil
}

func (s *Service) SendMessage(ctx context.Context, key, value []byte) error {
	err := s.producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to kafka: %w", err)
	}
	return nil
}

func (s *Service) ReadMessage(ctx context.Context) (key, value []byte, err error) {
	if s.consumer == nil {
		return nil, nil, errors.New("kafka consumer is not configured")
	}
	msg, err := s.consumer.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message from kafka: %w", err)
	}
	return msg.Key, msg.Value, nil
}

func (s *Service) Close() error {
	if err := s.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	if s.consumer != nil {
		if err := s.consumer.Close(); err != nil {
			return fmt.Errorf("failed to close kafka consumer: %w", err)
		}
	}
	return nil
}

func createTopic(opts Options, broker string, logger *slog.Logger) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             opts.Topic,
		NumPartitions:     opts.NumPartitions,
		ReplicationFactor: opts.ReplicationFactor,
	})
	if err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			logger.Debug("kafka topic already exists", "topic", opts.Topic)
			return nil
		}
		return fmt.Errorf("failed to create kafka topic '%s': %w", opts.Topic, err)
	}

	logger.Info("kafka topic created", "topic", opts.Topic)
	return nil
}
