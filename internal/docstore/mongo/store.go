// Package mongo implements docstore.Store on top of MongoDB. Each document
// collection maps to a Mongo collection of the same name and the document id
// is stored in _id.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kotche/carrot-notes/internal/docstore"
)

const idField = "_id"

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, where docstore.Where) ([]docstore.Document, error) {
	filter := bson.M{}
	for field, value := range where {
		filter[field] = value
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	var raw []bson.M
	if err = cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}

	docs := make([]docstore.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, data docstore.Data) (string, error) {
	id, err := docstore.NewID()
	if err != nil {
		return "", err
	}

	doc := bson.M{idField: id}
	for k, v := range data {
		doc[k] = v
	}

	if _, err = s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Data) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{idField: id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func fromBSON(m bson.M) docstore.Document {
	doc := docstore.Document{Data: make(docstore.Data, len(m))}
	for k, v := range m {
		if k == idField {
			doc.ID = fmt.Sprint(v)
			continue
		}
		doc.Data[k] = v
	}
	return doc
}
