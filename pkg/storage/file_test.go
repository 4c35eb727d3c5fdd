package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/unowned-ai/aquarium/pkg/metrics"
	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/storage/storagetest"
)

func openFileBackend(t *testing.T, dir string, opts ...storage.Option) *storage.FileBackend {
	t.Helper()
	b, err := storage.OpenFile(dir, opts...)
	if err != nil {
		t.Fatalf("OpenFile(%s) failed: %v", dir, err)
	}
	return b
}

func TestFileBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return openFileBackend(t, t.TempDir())
	})
}

func TestFileBackend_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b := openFileBackend(t, dir)
	tank := storagetest.TankRecord("t1", "Reef")
	if err := b.Save(ctx, storage.Tanks, []storage.Record{tank}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened := openFileBackend(t, dir)
	records, err := reopened.Load(ctx, storage.Tanks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "Reef" {
		t.Fatalf("unexpected records after reopen: %v", records)
	}
	if params, ok := records[0]["current_parameters"].(map[string]any); !ok || params["nitrite"] != nil {
		t.Errorf("expected explicit null nitrite in current_parameters, got %v", records[0]["current_parameters"])
	}
}

func TestFileBackend_DocumentFormat(t *testing.T) {
	dir := t.TempDir()
	b := openFileBackend(t, dir)
	if err := b.Save(context.Background(), storage.Fish, []storage.Record{storagetest.FishRecord("f1", "t1")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fish.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("[\n  {\n    \"birth_date\": null,")) {
		t.Errorf("unexpected document layout:\n%s", data)
	}
	if !strings.Contains(string(data), `"notes": null`) {
		t.Errorf("absent optional fields must be written as null:\n%s", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileBackend_DegradedDocuments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tanks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fish.json"), []byte(`{"id":"f1"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "maintenance.json"), []byte(`[{"id":"m1"}, 7, "x", {"id":"m2"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	m := metrics.New(prometheus.NewRegistry())
	b := openFileBackend(t, dir, storage.WithLogger(zerolog.New(&logs)), storage.WithMetrics(m))
	ctx := context.Background()

	for _, c := range []storage.Collection{storage.Tanks, storage.Fish} {
		records, err := b.Load(ctx, c)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", c, err)
		}
		if len(records) != 0 {
			t.Errorf("Load(%s) = %v, want empty collection", c, records)
		}
	}

	records, err := b.Load(ctx, storage.Maintenance)
	if err != nil {
		t.Fatalf("Load(maintenance) failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected the two object records to survive, got %v", records)
	}
	if got := m.MalformedCount("maintenance"); got != 2 {
		t.Errorf("MalformedCount(maintenance) = %v, want 2", got)
	}
	if !strings.Contains(logs.String(), "not a JSON array") {
		t.Errorf("expected a warning about the unreadable document, got:\n%s", logs.String())
	}
}

func TestFileBackend_FailedWriteKeepsSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	b := openFileBackend(t, dir)
	ctx := context.Background()

	original := []storage.Record{storagetest.TankRecord("t1", "Reef")}
	if err := b.Save(ctx, storage.Tanks, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, storage.Tanks, nil); err == nil {
		t.Fatalf("Save into a removed directory should fail")
	}

	records, err := b.Load(ctx, storage.Tanks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "Reef" {
		t.Errorf("failed save changed the working set: %v", records)
	}
}
