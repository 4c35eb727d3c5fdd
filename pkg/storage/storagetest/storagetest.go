// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/unowned-ai/aquarium/pkg/storage"
)

// Factory returns a fresh, empty backend for one subtest.
type Factory func(t *testing.T) storage.Backend

const (
	tankA = "0b7e6a34-3f0a-4a4f-9d55-2a5b0b7a0c01"
	tankB = "0b7e6a34-3f0a-4a4f-9d55-2a5b0b7a0c02"
)

// TankRecord returns a fully populated tank record.
func TankRecord(id, name string) storage.Record {
	return storage.Record{
		"id":           id,
		"name":         name,
		"size_gallons": 55.5,
		"tank_type":    "freshwater",
		"location":     "Living room",
		"equipment":    []any{"Canister filter", "Heater"},
		"current_parameters": map[string]any{
			"date_tested": "2024-03-01T10:00:00.000000000Z",
			"temperature": 78.0,
			"ph":          7.2,
			"ammonia":     0.0,
			"nitrite":     nil,
			"nitrate":     10.0,
			"salinity":    nil,
		},
	}
}

// FishRecord returns a fish record living in tankID.
func FishRecord(id, tankID string) storage.Record {
	return storage.Record{
		"id":                  id,
		"name":                "Nemo",
		"species":             "Clownfish",
		"tank_id":             tankID,
		"date_added":          "2024-01-15",
		"birth_date":          nil,
		"health_status":       "healthy",
		"size":                "small",
		"color":               "orange",
		"feeding_preferences": nil,
		"notes":               nil,
	}
}

// LogRecord returns a maintenance record; water_test logs carry a parameters snapshot.
func LogRecord(id, tankID, date, activity string) storage.Record {
	r := storage.Record{
		"id":            id,
		"tank_id":       tankID,
		"date":          date,
		"activity_type": activity,
		"description":   "routine",
		"water_params":  nil,
	}
	if activity == "water_test" {
		r["water_params"] = map[string]any{
			"date_tested": date,
			"temperature": 77.0,
			"ph":          7.0,
			"ammonia":     0.25,
			"nitrite":     0.0,
			"nitrate":     5.0,
			"salinity":    nil,
		}
	}
	return r
}

// Normalize puts records in a backend-neutral form: JSON value types, sorted by id.
func Normalize(t *testing.T, records []storage.Record) []map[string]any {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i]["id"].(string)
		b, _ := out[j]["id"].(string)
		return a < b
	})
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

func assertSame(t *testing.T, want, got []storage.Record) {
	t.Helper()
	w, _ := json.Marshal(Normalize(t, want))
	g, _ := json.Marshal(Normalize(t, got))
	if string(w) != string(g) {
		t.Errorf("records mismatch\nwant: %s\ngot:  %s", w, g)
	}
}

func mustLoad(t *testing.T, b storage.Backend, c storage.Collection) []storage.Record {
	t.Helper()
	records, err := b.Load(context.Background(), c)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", c, err)
	}
	return records
}

func mustSave(t *testing.T, b storage.Backend, c storage.Collection, records []storage.Record) {
	t.Helper()
	if err := b.Save(context.Background(), c, records); err != nil {
		t.Fatalf("Save(%s) failed: %v", c, err)
	}
}

// Run exercises the backend contract.
func Run(t *testing.T, newBackend Factory) {
	t.Run("EmptyCollections", func(t *testing.T) {
		b := newBackend(t)
		for _, c := range storage.Collections {
			records := mustLoad(t, b, c)
			if records == nil || len(records) != 0 {
				t.Errorf("Load(%s) on empty backend = %#v, want empty non-nil slice", c, records)
			}
		}
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		b := newBackend(t)
		if _, err := b.Load(context.Background(), "plants"); !errors.Is(err, storage.ErrUnknownCollection) {
			t.Errorf("Load(plants) error = %v, want ErrUnknownCollection", err)
		}
		if err := b.Save(context.Background(), "plants", nil); !errors.Is(err, storage.ErrUnknownCollection) {
			t.Errorf("Save(plants) error = %v, want ErrUnknownCollection", err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		b := newBackend(t)
		tanks := []storage.Record{TankRecord(tankA, "Reef"), TankRecord(tankB, "Community")}
		tanks[1]["current_parameters"] = nil
		tanks[1]["equipment"] = []any{}
		fish := []storage.Record{FishRecord("f1", tankA), FishRecord("f2", tankB)}
		fish[1]["birth_date"] = "2023-06-01"
		logs := []storage.Record{
			LogRecord("m1", tankA, "2024-01-01T09:00:00.000000000Z", "feeding"),
			LogRecord("m2", tankA, "2024-02-01T09:00:00.000000000Z", "water_test"),
		}

		mustSave(t, b, storage.Tanks, tanks)
		mustSave(t, b, storage.Fish, fish)
		mustSave(t, b, storage.Maintenance, logs)

		assertSame(t, tanks, mustLoad(t, b, storage.Tanks))
		assertSame(t, fish, mustLoad(t, b, storage.Fish))
		assertSame(t, logs, mustLoad(t, b, storage.Maintenance))
	})

	t.Run("SaveReplacesCollection", func(t *testing.T) {
		b := newBackend(t)
		mustSave(t, b, storage.Tanks, []storage.Record{TankRecord(tankA, "Reef"), TankRecord(tankB, "Community")})
		mustSave(t, b, storage.Fish, []storage.Record{FishRecord("f1", tankA), FishRecord("f2", tankA)})

		renamed := TankRecord(tankA, "Reef 2")
		mustSave(t, b, storage.Tanks, []storage.Record{renamed})
		mustSave(t, b, storage.Fish, []storage.Record{FishRecord("f2", tankA)})

		assertSame(t, []storage.Record{renamed}, mustLoad(t, b, storage.Tanks))
		assertSame(t, []storage.Record{FishRecord("f2", tankA)}, mustLoad(t, b, storage.Fish))

		mustSave(t, b, storage.Fish, nil)
		if got := mustLoad(t, b, storage.Fish); len(got) != 0 {
			t.Errorf("expected no fish after saving nil, got %d", len(got))
		}
	})

	t.Run("LogsRemovedWhenAbsent", func(t *testing.T) {
		b := newBackend(t)
		mustSave(t, b, storage.Tanks, []storage.Record{TankRecord(tankA, "Reef")})
		first := LogRecord("m1", tankA, "2024-01-01T09:00:00.000000000Z", "water_test")
		second := LogRecord("m2", tankA, "2024-01-02T09:00:00.000000000Z", "water_change")
		mustSave(t, b, storage.Maintenance, []storage.Record{first, second})
		mustSave(t, b, storage.Maintenance, []storage.Record{second})

		assertSame(t, []storage.Record{second}, mustLoad(t, b, storage.Maintenance))
	})

	t.Run("CurrentParametersDoNotTouchHistory", func(t *testing.T) {
		b := newBackend(t)
		tank := TankRecord(tankA, "Reef")
		mustSave(t, b, storage.Tanks, []storage.Record{tank})
		test := LogRecord("m1", tankA, "2024-02-01T09:00:00.000000000Z", "water_test")
		mustSave(t, b, storage.Maintenance, []storage.Record{test})

		updated := TankRecord(tankA, "Reef")
		updated["current_parameters"] = map[string]any{
			"date_tested": "2024-04-01T10:00:00.000000000Z",
			"temperature": 80.0,
			"ph":          nil,
			"ammonia":     nil,
			"nitrite":     nil,
			"nitrate":     nil,
			"salinity":    35.0,
		}
		mustSave(t, b, storage.Tanks, []storage.Record{updated})

		assertSame(t, []storage.Record{updated}, mustLoad(t, b, storage.Tanks))
		assertSame(t, []storage.Record{test}, mustLoad(t, b, storage.Maintenance))
	})

	t.Run("LoadReturnsCopies", func(t *testing.T) {
		b := newBackend(t)
		mustSave(t, b, storage.Tanks, []storage.Record{TankRecord(tankA, "Reef")})

		records := mustLoad(t, b, storage.Tanks)
		records[0]["name"] = "mutated"

		again := mustLoad(t, b, storage.Tanks)
		if again[0]["name"] != "Reef" {
			t.Errorf("mutating a loaded record changed the store: name = %v", again[0]["name"])
		}
	})
}
