package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgdb "github.com/unowned-ai/aquarium/pkg/db"
	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/storage/storagetest"
)

func openSQLiteBackend(t *testing.T) *storage.SQLBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aquarium.db")
	conn, err := pkgdb.OpenDBConnection(path, true, "NORMAL", false)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := pkgdb.UpgradeDB(conn, pkgdb.SQLite, path, pkgdb.TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}
	return storage.NewSQL(conn, pkgdb.SQLite)
}

func countRows(t *testing.T, b *storage.SQLBackend, query string, args ...any) int {
	t.Helper()
	rows, err := b.Query(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("query %q failed: %v", query, err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
	}
	return n
}

func TestSQLBackend_SQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return openSQLiteBackend(t)
	})
}

func TestSQLBackend_Postgres(t *testing.T) {
	dsn := os.Getenv("AQUARIUM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AQUARIUM_TEST_POSTGRES_DSN not set")
	}
	conn, err := pkgdb.OpenPostgresConnection(dsn)
	if err != nil {
		t.Fatalf("OpenPostgresConnection failed: %v", err)
	}
	defer conn.Close()
	if err := pkgdb.UpgradeDB(conn, pkgdb.Postgres, "postgres", pkgdb.TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	storagetest.Run(t, func(t *testing.T) storage.Backend {
		if _, err := conn.Exec(`TRUNCATE maintenance_logs, water_parameters, fish, tanks`); err != nil {
			t.Fatalf("truncate failed: %v", err)
		}
		return storage.NewSQL(conn, pkgdb.Postgres)
	})
}

func TestSQLBackend_EquipmentStoredCommaJoined(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Save(ctx, storage.Tanks, []storage.Record{storagetest.TankRecord("t1", "Reef")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rows, err := b.Query(ctx, "SELECT equipment FROM tanks WHERE id = ?", "t1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("tank row not found")
	}
	var equipment string
	if err := rows.Scan(&equipment); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if equipment != "Canister filter,Heater" {
		t.Errorf("equipment column = %q", equipment)
	}
}

func TestSQLBackend_CurrentParametersReplaced(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()
	tank := storagetest.TankRecord("t1", "Reef")

	for i := 0; i < 3; i++ {
		if err := b.Save(ctx, storage.Tanks, []storage.Record{tank}); err != nil {
			t.Fatalf("Save #%d failed: %v", i, err)
		}
	}
	if n := countRows(t, b, "SELECT COUNT(*) FROM water_parameters WHERE tank_id = ?", "t1"); n != 1 {
		t.Errorf("expected one current parameters row, got %d", n)
	}

	tank["current_parameters"] = nil
	if err := b.Save(ctx, storage.Tanks, []storage.Record{tank}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n := countRows(t, b, "SELECT COUNT(*) FROM water_parameters WHERE tank_id = ?", "t1"); n != 0 {
		t.Errorf("expected current parameters to be cleared, got %d rows", n)
	}
}

func TestSQLBackend_LogDeletionRemovesSnapshot(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()

	tank := storagetest.TankRecord("t1", "Reef")
	tank["current_parameters"] = nil
	if err := b.Save(ctx, storage.Tanks, []storage.Record{tank}); err != nil {
		t.Fatalf("Save tanks failed: %v", err)
	}
	logs := []storage.Record{
		storagetest.LogRecord("m1", "t1", "2024-01-01T09:00:00.000000000Z", "water_test"),
		storagetest.LogRecord("m2", "t1", "2024-01-02T09:00:00.000000000Z", "water_test"),
	}
	if err := b.Save(ctx, storage.Maintenance, logs); err != nil {
		t.Fatalf("Save logs failed: %v", err)
	}
	if n := countRows(t, b, "SELECT COUNT(*) FROM water_parameters"); n != 2 {
		t.Fatalf("expected 2 snapshot rows, got %d", n)
	}

	// Saving the same logs again must not duplicate snapshots.
	if err := b.Save(ctx, storage.Maintenance, logs); err != nil {
		t.Fatalf("Save logs again failed: %v", err)
	}
	if n := countRows(t, b, "SELECT COUNT(*) FROM water_parameters"); n != 2 {
		t.Fatalf("expected 2 snapshot rows after re-save, got %d", n)
	}

	if err := b.Save(ctx, storage.Maintenance, logs[1:]); err != nil {
		t.Fatalf("Save logs failed: %v", err)
	}
	if n := countRows(t, b, "SELECT COUNT(*) FROM water_parameters"); n != 1 {
		t.Errorf("expected 1 snapshot row after deleting a log, got %d", n)
	}
}

func TestSQLBackend_WithinTxRollsBack(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := b.WithinTx(ctx, func(tx storage.Backend) error {
		if err := tx.Save(ctx, storage.Tanks, []storage.Record{storagetest.TankRecord("t1", "Reef")}); err != nil {
			return err
		}
		records, err := tx.Load(ctx, storage.Tanks)
		if err != nil {
			return err
		}
		if len(records) != 1 {
			t.Errorf("tank not visible inside its own transaction")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	records, err := b.Load(ctx, storage.Tanks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("rolled back save is still visible: %v", records)
	}
}

func TestSQLBackend_ExecRebindsPlaceholders(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()

	if _, err := b.Exec(ctx, "INSERT INTO tanks (id, name, size_gallons, tank_type) VALUES (?, ?, ?, ?)", "t9", "Raw", 10.0, "brackish"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	records, err := b.Load(ctx, storage.Tanks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 || records[0]["tank_type"] != "brackish" {
		t.Fatalf("unexpected records: %v", records)
	}
	if eq, ok := records[0]["equipment"].([]string); !ok || len(eq) != 0 {
		t.Errorf("empty equipment column should load as an empty list, got %#v", records[0]["equipment"])
	}
	if records[0]["current_parameters"] != nil {
		t.Errorf("expected no current parameters, got %v", records[0]["current_parameters"])
	}
	if b.DB() == nil || b.Dialect() != pkgdb.SQLite {
		t.Errorf("unexpected DB/Dialect accessors")
	}
}

func TestSQLBackend_LoadLeavesBadValuesToDecoding(t *testing.T) {
	b := openSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Save(ctx, storage.Tanks, []storage.Record{storagetest.TankRecord("t1", "Reef")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := b.Exec(ctx, `INSERT INTO tanks (id, name, size_gallons, tank_type) VALUES (?, ?, ?, ?)`, "t2", "Broken", "abc", "freshwater"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := b.Exec(ctx, `UPDATE water_parameters SET temperature = ? WHERE tank_id = ?`, "hot", "t1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	records, err := b.Load(ctx, storage.Tanks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected both rows to load, got %d", len(records))
	}

	byID := make(map[string]storage.Record)
	for _, r := range records {
		id, _ := r.Str("id")
		byID[id] = r
	}
	if _, err := byID["t2"].Float("size_gallons"); !errors.Is(err, storage.ErrFieldType) {
		t.Errorf("expected ErrFieldType for size_gallons, got %v", err)
	}
	if size, err := byID["t1"].Float("size_gallons"); err != nil || size != 55.5 {
		t.Errorf("expected size 55.5, got %v (err %v)", size, err)
	}
	params, ok, err := byID["t1"].Sub("current_parameters")
	if err != nil || !ok {
		t.Fatalf("expected current parameters, got ok=%v err=%v", ok, err)
	}
	if _, err := params.OptFloat("temperature"); !errors.Is(err, storage.ErrFieldType) {
		t.Errorf("expected ErrFieldType for temperature, got %v", err)
	}
	if ph, err := params.OptFloat("ph"); err != nil || ph == nil || *ph != 7.2 {
		t.Errorf("expected ph 7.2, got %v (err %v)", ph, err)
	}
}
