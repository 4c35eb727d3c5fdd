package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Collections are held in their
// serialized form so callers never share maps with the store.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[Collection][]byte
	opts options
}

// NewMemory returns an empty in-memory backend.
func NewMemory(opts ...Option) *MemoryBackend {
	return &MemoryBackend{docs: make(map[Collection][]byte), opts: newOptions(opts)}
}

func (b *MemoryBackend) Load(_ context.Context, c Collection) (records []Record, err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "load", err) }()
	if err := checkCollection(c); err != nil {
		return nil, err
	}

	b.mu.Lock()
	doc, ok := b.docs[c]
	b.mu.Unlock()
	if !ok {
		return []Record{}, nil
	}
	return decodeRecords(doc, nil)
}

func (b *MemoryBackend) Save(_ context.Context, c Collection, records []Record) (err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "save", err) }()
	if err := checkCollection(c); err != nil {
		return err
	}

	doc, err := encodeRecords(records)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.docs[c] = doc
	b.mu.Unlock()
	return nil
}
