package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unowned-ai/aquarium/pkg/config"
	pkgdb "github.com/unowned-ai/aquarium/pkg/db"
	"github.com/unowned-ai/aquarium/pkg/metrics"
	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/tanks"
	"github.com/unowned-ai/aquarium/pkg/utils"
)

// session is an opened store with the keeper working on it.
type session struct {
	keeper  *tanks.Keeper
	metrics *metrics.Metrics
	name    string
	closer  func() error
}

func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// openSQL connects to the configured SQL database.
// It returns the connection, its dialect and a printable location.
func openSQL() (*sql.DB, pkgdb.Dialect, string, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return nil, "", "", err
		}
		conn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync, cfg.ForeignKeys)
		if err != nil {
			return nil, "", "", err
		}
		return conn, pkgdb.SQLite, path, nil
	case config.BackendPostgres:
		conn, err := pkgdb.OpenPostgresConnection(cfg.PostgresDSN)
		if err != nil {
			return nil, "", "", err
		}
		return conn, pkgdb.Postgres, "postgres", nil
	}
	return nil, "", "", fmt.Errorf("backend %s is not a sql backend", cfg.Backend)
}

// openStore opens the configured backend. SQL schemas are upgraded on open.
func openStore() (*session, error) {
	m := metrics.New(prometheus.NewRegistry())
	opts := []storage.Option{storage.WithLogger(appLogger), storage.WithMetrics(m)}

	var (
		store  storage.Backend
		name   string
		closer func() error
	)
	switch cfg.Backend {
	case config.BackendFile:
		dir, err := utils.ResolveAndEnsureDataDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		fb, err := storage.OpenFile(dir, opts...)
		if err != nil {
			return nil, err
		}
		store, name = fb, "file: "+dir
	default:
		conn, dialect, ident, err := openSQL()
		if err != nil {
			return nil, err
		}
		if err := pkgdb.UpgradeDB(conn, dialect, ident, pkgdb.TargetSchemaVersion); err != nil {
			conn.Close()
			return nil, err
		}
		store, name, closer = storage.NewSQL(conn, dialect, opts...), fmt.Sprintf("%s: %s", dialect, ident), conn.Close
	}

	appLogger.Debug().Str("store", name).Msg("Store opened")

	return &session{
		keeper:  tanks.NewKeeper(store, tanks.WithLogger(appLogger), tanks.WithMetrics(m)),
		metrics: m,
		name:    name,
		closer:  closer,
	}, nil
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD. An empty string is no date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return &t, nil
}

// splitList turns a comma separated flag into trimmed, non-empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func printSeparator() {
	fmt.Println(strings.Repeat("-", 80))
}

func printTankRow(t tanks.Tank, fishCount int) {
	fmt.Printf("%s | %s | %s | %g | %s | %d\n", t.ID, t.Name, t.TankType, t.SizeGallons, t.Location, fishCount)
}

func printFishRow(f tanks.Fish) {
	fmt.Printf("%s | %s %s | %s | %s | %s\n", f.ID, f.HealthStatus.Icon(), f.Name, f.Species, f.TankID, f.DateAdded.Format(time.DateOnly))
}

func printLogRow(l tanks.MaintenanceLog) {
	fmt.Printf("%s | %s | %s | %s\n", formatTimestamp(l.Date), l.ActivityType.DisplayName(), l.TankID, l.Description)
}
