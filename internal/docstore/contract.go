// Package docstore defines the document database capability the repositories
// are written against, along with an in-process implementation.
package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

type (
	// Data is the field set of a document, excluding its id.
	Data map[string]any

	// Where is a conjunction of field equality filters.
	Where map[string]any

	Document struct {
		ID   string
		Data Data
	}

	Store interface {
		Query(ctx context.Context, collection string, where Where) ([]Document, error)
		Insert(ctx context.Context, collection string, data Data) (string, error)
		// Update merges fields into the document. Fields not present are left
		// untouched. Returns ErrNotFound when id does not exist.
		Update(ctx context.Context, collection, id string, fields Data) error
		// Delete removes the document. Deleting a missing id is not an error.
		Delete(ctx context.Context, collection, id string) error
	}
)

// ByField is the single-field query every repository scopes its reads with.
func ByField(field string, value any) Where {
	return Where{field: value}
}

// Clone returns a shallow copy of d.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (d Data) String(field string) (string, bool) {
	s, ok := d[field].(string)
	return s, ok
}

// Bool follows the truthiness the client applied when decoding documents.
func (d Data) Bool(field string) bool {
	switch v := d[field].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case nil:
		return false
	case float64:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}
