// Package tanks holds the aquarium domain: tanks, the fish living in them and
// their maintenance history, with one manager per entity type on top of a
// storage.Backend.
package tanks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/unowned-ai/aquarium/pkg/metrics"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

type options struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a manager or a Keeper.
type Option func(*options)

// WithLogger sets the logger that reports skipped records.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the counters updated when a record is skipped.
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

// loadAll decodes every record of a collection. Records that fail to decode are
// left out of the result and only reported through the logger and metrics.
func loadAll[T any](ctx context.Context, store storage.Backend, c storage.Collection, decode func(storage.Record) (T, error), o options) ([]T, error) {
	records, err := store.Load(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c, err)
	}

	items := make([]T, 0, len(records))
	for i, r := range records {
		item, err := decode(r)
		if err != nil {
			o.logger.Warn().
				Err(err).
				Str("collection", string(c)).
				Int("index", i).
				Interface("id", r["id"]).
				Msg("Skipping malformed record")
			o.metrics.MalformedRecord(string(c))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func saveAll[T any](ctx context.Context, store storage.Backend, c storage.Collection, items []T, encode func(T) storage.Record) error {
	records := make([]storage.Record, 0, len(items))
	for _, item := range items {
		records = append(records, encode(item))
	}
	if err := store.Save(ctx, c, records); err != nil {
		return fmt.Errorf("failed to save %s: %w", c, err)
	}
	return nil
}
