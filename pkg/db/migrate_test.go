package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			t.Errorf("Table '%s' does not exist, but it should.", tableName)
			return
		}
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	if name != tableName {
		t.Errorf("Table check query returned '%s' but expected '%s'", name, tableName)
	}
}

func openMemoryDB(t *testing.T, foreignKeys bool) *sql.DB {
	t.Helper()
	db, err := OpenDBConnection(":memory:", true, "NORMAL", foreignKeys)
	if err != nil {
		t.Fatalf("OpenDBConnection failed for in-memory DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	db := openMemoryDB(t, false)

	if err := UpgradeDB(db, SQLite, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed on a new in-memory database: %v", err)
	}

	expectedTables := []string{"aquarium_versions", "tanks", "water_parameters", "fish", "maintenance_logs"}
	for _, tableName := range expectedTables {
		checkTableExists(t, db, tableName)
	}

	version, err := GetComponentSchemaVersion(db, SQLite, TanksDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", TanksDBComponent, TargetSchemaVersion, version)
	}
}

func TestGetComponentSchemaVersion_NoTable(t *testing.T) {
	db := openMemoryDB(t, false)

	version, err := GetComponentSchemaVersion(db, SQLite, TanksDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion on empty database returned error: %v", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0 on empty database, got %d", version)
	}
}

func TestUpgradeDB_AlreadyUpToDate(t *testing.T) {
	db := openMemoryDB(t, false)

	if err := InitializeSchema(db, SQLite, TargetSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}

	if err := UpgradeDB(db, SQLite, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed on an up-to-date database: %v", err)
	}

	version, err := GetComponentSchemaVersion(db, SQLite, TanksDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", TanksDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_OlderVersionNeedsMigration(t *testing.T) {
	db := openMemoryDB(t, false)

	const dbInitialSchemaVersion int64 = 1
	const appTargetsSchemaVersion int64 = 2

	if err := InitializeSchema(db, SQLite, dbInitialSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(db, SQLite, ":memory:", appTargetsSchemaVersion)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for an older DB version requiring migration, but it did not")
	}

	expectedErrorMsg := fmt.Sprintf("component %s in database ':memory:' has schema version %d, which is older than application's target schema version %d", TanksDBComponent, dbInitialSchemaVersion, appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}

	currentVersion, getErr := GetComponentSchemaVersion(db, SQLite, TanksDBComponent)
	if getErr != nil {
		t.Fatalf("GetComponentSchemaVersion failed after attempted upgrade: %v", getErr)
	}
	if currentVersion != dbInitialSchemaVersion {
		t.Errorf("Database schema version changed from %d to %d after a failed upgrade attempt that should have been a no-op.", dbInitialSchemaVersion, currentVersion)
	}
}

func TestUpgradeDB_NewerVersionUnsupported(t *testing.T) {
	db := openMemoryDB(t, false)

	const dbInitialSchemaVersion int64 = 2
	const appTargetsSchemaVersion int64 = 1

	if err := InitializeSchema(db, SQLite, dbInitialSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(db, SQLite, ":memory:", appTargetsSchemaVersion)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for a newer DB version, but it did not")
	}

	expectedErrorMsg := fmt.Sprintf("component %s in database ':memory:' has schema version %d, which is newer than application's target schema version %d", TanksDBComponent, dbInitialSchemaVersion, appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}
}

func TestOpenDBConnection_InvalidSyncPragma(t *testing.T) {
	_, err := OpenDBConnection(":memory:", false, "SOMETIMES", false)
	if err == nil {
		t.Fatalf("OpenDBConnection should reject an unknown sync pragma")
	}
	if !strings.Contains(err.Error(), "invalid sync pragma value") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenDBConnection_ForeignKeys(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		t.Run(fmt.Sprintf("enabled=%t", enabled), func(t *testing.T) {
			db := openMemoryDB(t, enabled)

			var fk int
			if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&fk); err != nil {
				t.Fatalf("Failed to read foreign_keys pragma: %v", err)
			}
			if (fk == 1) != enabled {
				t.Errorf("Expected foreign_keys=%t, got %d", enabled, fk)
			}
		})
	}
}

func TestDialectRebind(t *testing.T) {
	query := "SELECT id FROM fish WHERE tank_id = ? AND health_status = ?"

	if got := SQLite.Rebind(query); got != query {
		t.Errorf("SQLite rebind changed the query: %s", got)
	}

	want := "SELECT id FROM fish WHERE tank_id = $1 AND health_status = $2"
	if got := Postgres.Rebind(query); got != want {
		t.Errorf("Postgres rebind mismatch.\nExpected: %s\nGot: %s", want, got)
	}
}

func TestParseDialect(t *testing.T) {
	if d, err := ParseDialect("Postgres"); err != nil || d != Postgres {
		t.Errorf("ParseDialect(Postgres) = %q, %v", d, err)
	}
	if d, err := ParseDialect("sqlite"); err != nil || d != SQLite {
		t.Errorf("ParseDialect(sqlite) = %q, %v", d, err)
	}
	if _, err := ParseDialect("oracle"); err == nil {
		t.Errorf("ParseDialect should reject unknown dialects")
	}
}
