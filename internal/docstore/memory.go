package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

type Op string

const (
	OpQuery  Op = "query"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type memoryEntry struct {
	seq  int
	data Data
}

// Memory is an in-process Store. Queries return documents in insertion order.
type Memory struct {
	mu          sync.RWMutex
	seq         int
	collections map[string]map[string]memoryEntry
	failures    map[Op]error
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]memoryEntry),
		failures:    make(map[Op]error),
	}
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (m *Memory) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Memory) Query(ctx context.Context, collection string, where Where) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failures[OpQuery]; err != nil {
		return nil, err
	}

	type hit struct {
		seq int
		doc Document
	}
	var hits []hit
	for id, entry := range m.collections[collection] {
		if !matches(entry.data, where) {
			continue
		}
		hits = append(hits, hit{seq: entry.seq, doc: Document{ID: id, Data: entry.data.Clone()}})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].seq < hits[j].seq
	})

	docs := make([]Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.doc)
	}
	return docs, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, data Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[OpInsert]; err != nil {
		return "", err
	}

	id, err := NewID()
	if err != nil {
		return "", err
	}

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]memoryEntry)
		m.collections[collection] = docs
	}

	m.seq++
	docs[id] = memoryEntry{seq: m.seq, data: data.Clone()}
	return id, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[OpUpdate]; err != nil {
		return err
	}

	entry, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		entry.data[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[OpDelete]; err != nil {
		return err
	}

	delete(m.collections[collection], id)
	return nil
}

func matches(data Data, where Where) bool {
	for field, want := range where {
		got, ok := data[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
