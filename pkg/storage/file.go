package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores each collection as one JSON document in a directory.
// The working set is read once at open; every Save rewrites the whole document.
type FileBackend struct {
	dir  string
	mu   sync.Mutex
	sets map[Collection][]byte
	opts options
}

// OpenFile creates dir if needed and loads every collection found in it.
// Missing or unreadable documents start out as empty collections.
func OpenFile(dir string, opts ...Option) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory '%s': %w", dir, err)
	}

	b := &FileBackend{
		dir:  dir,
		sets: make(map[Collection][]byte),
		opts: newOptions(opts),
	}
	for _, c := range Collections {
		records, err := b.readFile(c)
		if err != nil {
			return nil, err
		}
		doc, err := encodeRecords(records)
		if err != nil {
			return nil, err
		}
		b.sets[c] = doc
	}
	return b, nil
}

// Dir returns the data directory.
func (b *FileBackend) Dir() string { return b.dir }

// Path returns the document path for a collection.
func (b *FileBackend) Path(c Collection) string {
	return filepath.Join(b.dir, c.FileName())
}

// readFile loads one document from disk. Only errors other than a missing or
// malformed document are returned.
func (b *FileBackend) readFile(c Collection) ([]Record, error) {
	path := b.Path(c)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.opts.logger.Debug().Str("collection", string(c)).Str("path", path).Msg("No data file yet, starting empty")
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}

	records, err := decodeRecords(data, func(index int, reason string) {
		b.opts.logger.Warn().
			Str("collection", string(c)).
			Int("index", index).
			Str("reason", reason).
			Msg("Skipping malformed record")
		b.opts.metrics.MalformedRecord(string(c))
	})
	if err != nil {
		b.opts.logger.Warn().
			Err(err).
			Str("collection", string(c)).
			Str("path", path).
			Msg("Data file is not a JSON array, treating collection as empty")
		return []Record{}, nil
	}
	return records, nil
}

func (b *FileBackend) Load(_ context.Context, c Collection) (records []Record, err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "load", err) }()
	if err := checkCollection(c); err != nil {
		return nil, err
	}

	b.mu.Lock()
	doc := b.sets[c]
	b.mu.Unlock()
	return decodeRecords(doc, nil)
}

func (b *FileBackend) Save(_ context.Context, c Collection, records []Record) (err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "save", err) }()
	if err := checkCollection(c); err != nil {
		return err
	}

	doc, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := writeFileAtomic(b.Path(c), doc); err != nil {
		return err
	}
	b.sets[c] = doc
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place,
// so a failed write never replaces the previous document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for '%s': %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}
	return nil
}
