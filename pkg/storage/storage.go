// Package storage persists whole entity collections behind one Backend interface.
//
// Three implementations share the contract: a JSON file per collection,
// a relational store (SQLite or Postgres) and an in-memory fake.
// Backends move raw records; turning them into typed entities is the caller's job.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/unowned-ai/aquarium/pkg/metrics"
)

// Collection names one persisted entity collection.
type Collection string

const (
	Tanks       Collection = "tanks"
	Fish        Collection = "fish"
	Maintenance Collection = "maintenance"
)

// Collections lists every known collection.
var Collections = []Collection{Tanks, Fish, Maintenance}

var ErrUnknownCollection = errors.New("unknown collection")

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	switch c {
	case Tanks, Fish, Maintenance:
		return true
	}
	return false
}

// FileName is the document name used by the file backend.
func (c Collection) FileName() string {
	return string(c) + ".json"
}

func checkCollection(c Collection) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
	}
	return nil
}

// Backend loads and saves whole collections. Save replaces the full collection.
type Backend interface {
	Load(ctx context.Context, c Collection) ([]Record, error)
	Save(ctx context.Context, c Collection, records []Record) error
}

// Transactor is implemented by backends that can run several saves atomically.
// The Backend handed to fn is only valid inside fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Backend) error) error
}

type options struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a backend.
type Option func(*options)

// WithLogger sets the logger used for warnings about unreadable data.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the counters updated on every load and save.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// decodeRecords parses a JSON array of objects. Elements that are not objects are
// skipped and reported through skip.
func decodeRecords(data []byte, skip func(index int, reason string)) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for i, elem := range raw {
		var r Record
		if err := json.Unmarshal(elem, &r); err != nil || r == nil {
			if skip != nil {
				skip(i, "element is not an object")
			}
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}
