package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the code supports for the tanksdb component.
	TargetSchemaVersion int64 = 1
	// TanksDBComponent is the name for the main aquarium database component.
	TanksDBComponent = "tanksdb"
)

// isMissingTable reports whether err says the versions table is absent.
// SQLite says "no such table", Postgres says `relation "..." does not exist`.
func isMissingTable(err error) bool {
	msg := err.Error()
	if !strings.Contains(msg, "aquarium_versions") {
		return false
	}
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist")
}

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(db *sql.DB, dialect Dialect, componentName string) (int64, error) {
	query := dialect.Rebind(`SELECT version FROM aquarium_versions WHERE component = ?;`)

	var version int64
	err := db.QueryRow(query, componentName).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates all tables for the tanksdb component
// and records the specified schema version.
func InitializeSchema(db *sql.DB, dialect Dialect, schemaVersionToSet int64) error {
	if _, err := db.Exec(dialect.Schema()); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := dialect.Rebind(`
INSERT INTO aquarium_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version;`)

	if _, err := db.Exec(insertVersionSQL, TanksDBComponent, schemaVersionToSet); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", TanksDBComponent, schemaVersionToSet, err)
	}

	log.Info().
		Str("component", TanksDBComponent).
		Int64("version", schemaVersionToSet).
		Msg("Component initialized/updated")
	return nil
}

// UpgradeDB brings the tanksdb component of the database to appTargetSchemaVersion.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(db *sql.DB, dialect Dialect, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(db, dialect, TanksDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		log.Info().
			Str("component", TanksDBComponent).
			Str("database", dbIdentifierForLog).
			Int64("target", appTargetSchemaVersion).
			Msg("Database uninitialized, creating schema")
		if err := InitializeSchema(db, dialect, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", TanksDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		log.Debug().
			Str("component", TanksDBComponent).
			Str("database", dbIdentifierForLog).
			Int64("version", currentDBVersion).
			Msg("Database schema up to date")
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not supported", TanksDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", TanksDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}
