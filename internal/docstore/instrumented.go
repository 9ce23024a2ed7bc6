package docstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kotche/carrot-notes/infrastructure/tracing"
	"github.com/kotche/carrot-notes/internal/metrics"
)

type instrumented struct {
	next Store
}

// Instrument wraps next so every call is traced and timed.
func Instrument(next Store) Store {
	return &instrumented{next: next}
}

func (s *instrumented) Query(ctx context.Context, collection string, where Where) ([]Document, error) {
	var docs []Document
	err := s.observe(ctx, OpQuery, collection, func(ctx context.Context) error {
		var err error
		docs, err = s.next.Query(ctx, collection, where)
		return err
	})
	return docs, err
}

func (s *instrumented) Insert(ctx context.Context, collection string, data Data) (string, error) {
	var id string
	err := s.observe(ctx, OpInsert, collection, func(ctx context.Context) error {
		var err error
		id, err = s.next.Insert(ctx, collection, data)
		return err
	})
	return id, err
}

func (s *instrumented) Update(ctx context.Context, collection, id string, fields Data) error {
	return s.observe(ctx, OpUpdate, collection, func(ctx context.Context) error {
		return s.next.Update(ctx, collection, id, fields)
	})
}

func (s *instrumented) Delete(ctx context.Context, collection, id string) error {
	return s.observe(ctx, OpDelete, collection, func(ctx context.Context) error {
		return s.next.Delete(ctx, collection, id)
	})
}

func (s *instrumented) observe(ctx context.Context, op Op, collection string, fn func(context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "docstore."+string(op))
	defer span.End()
	span.SetAttributes(attribute.String("docstore.collection", collection))

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveStoreOperation(collection, string(op), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
