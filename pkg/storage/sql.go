package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	pkgdb "github.com/unowned-ai/aquarium/pkg/db"
)

const (
	listTanksStatement = `
	SELECT id, name, size_gallons, tank_type, location, equipment
	FROM tanks
	ORDER BY name, id
	`

	// Current parameters are the water_parameters rows that no maintenance log references.
	listCurrentParamsStatement = `
	SELECT wp.tank_id, wp.date_tested, wp.temperature, wp.ph, wp.ammonia, wp.nitrite, wp.nitrate, wp.salinity
	FROM water_parameters wp
	WHERE NOT EXISTS (SELECT 1 FROM maintenance_logs ml WHERE ml.water_params_id = wp.id)
	ORDER BY wp.tank_id, wp.date_tested, wp.id
	`

	upsertTankStatement = `
	INSERT INTO tanks (id, name, size_gallons, tank_type, location, equipment)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		size_gallons = excluded.size_gallons,
		tank_type = excluded.tank_type,
		location = excluded.location,
		equipment = excluded.equipment
	`

	deleteTankStatement = `DELETE FROM tanks WHERE id = ?`

	deleteCurrentParamsStatement = `
	DELETE FROM water_parameters
	WHERE tank_id = ?
	AND id NOT IN (SELECT water_params_id FROM maintenance_logs WHERE water_params_id IS NOT NULL)
	`

	insertParamsStatement = `
	INSERT INTO water_parameters (tank_id, date_tested, temperature, ph, ammonia, nitrite, nitrate, salinity)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id
	`

	deleteParamsStatement = `DELETE FROM water_parameters WHERE id = ?`

	listFishStatement = `
	SELECT id, name, species, tank_id, date_added, birth_date, health_status, size, color, feeding_preferences, notes
	FROM fish
	ORDER BY date_added, id
	`

	upsertFishStatement = `
	INSERT INTO fish (id, name, species, tank_id, date_added, birth_date, health_status, size, color, feeding_preferences, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		species = excluded.species,
		tank_id = excluded.tank_id,
		date_added = excluded.date_added,
		birth_date = excluded.birth_date,
		health_status = excluded.health_status,
		size = excluded.size,
		color = excluded.color,
		feeding_preferences = excluded.feeding_preferences,
		notes = excluded.notes
	`

	deleteFishStatement = `DELETE FROM fish WHERE id = ?`

	listLogsStatement = `
	SELECT ml.id, ml.tank_id, ml.date, ml.activity_type, ml.description, ml.water_params_id,
		wp.date_tested, wp.temperature, wp.ph, wp.ammonia, wp.nitrite, wp.nitrate, wp.salinity
	FROM maintenance_logs ml
	LEFT JOIN water_parameters wp ON wp.id = ml.water_params_id
	ORDER BY ml.date, ml.id
	`

	insertLogStatement = `
	INSERT INTO maintenance_logs (id, tank_id, date, activity_type, description, water_params_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	getLogParamsIDStatement = `SELECT water_params_id FROM maintenance_logs WHERE id = ?`

	deleteLogStatement = `DELETE FROM maintenance_logs WHERE id = ?`
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLBackend maps collections onto the tanks, water_parameters, fish and
// maintenance_logs tables. Each Save runs in its own transaction unless the
// backend was handed out by WithinTx.
type SQLBackend struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect pkgdb.Dialect
	opts    options
}

// NewSQL wraps an open connection whose schema is already initialized.
func NewSQL(conn *sql.DB, dialect pkgdb.Dialect, opts ...Option) *SQLBackend {
	return &SQLBackend{db: conn, dialect: dialect, opts: newOptions(opts)}
}

// DB returns the underlying connection.
func (b *SQLBackend) DB() *sql.DB { return b.db }

// Dialect returns the SQL dialect of the connection.
func (b *SQLBackend) Dialect() pkgdb.Dialect { return b.dialect }

func (b *SQLBackend) querier() querier {
	if b.tx != nil {
		return b.tx
	}
	return b.db
}

// Exec runs a statement written with ? placeholders.
func (b *SQLBackend) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return b.querier().ExecContext(ctx, b.dialect.Rebind(query), args...)
}

// Query runs a query written with ? placeholders. The caller closes the rows.
func (b *SQLBackend) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return b.querier().QueryContext(ctx, b.dialect.Rebind(query), args...)
}

// WithinTx runs fn against a backend bound to one transaction, committing when fn
// returns nil and rolling back otherwise. Nested calls join the outer transaction.
func (b *SQLBackend) WithinTx(ctx context.Context, fn func(Backend) error) error {
	if b.tx != nil {
		return fn(b)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	inner := &SQLBackend{db: b.db, tx: tx, dialect: b.dialect, opts: b.opts}
	if err := fn(inner); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			b.opts.logger.Error().Err(rbErr).Msg("Transaction rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (b *SQLBackend) Load(ctx context.Context, c Collection) (records []Record, err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "load", err) }()
	if err := checkCollection(c); err != nil {
		return nil, err
	}

	switch c {
	case Tanks:
		return b.loadTanks(ctx)
	case Fish:
		return b.loadFish(ctx)
	default:
		return b.loadLogs(ctx)
	}
}

func (b *SQLBackend) Save(ctx context.Context, c Collection, records []Record) (err error) {
	defer func() { b.opts.metrics.ObserveStoreOp(string(c), "save", err) }()
	if err := checkCollection(c); err != nil {
		return err
	}

	return b.WithinTx(ctx, func(tx Backend) error {
		inner := tx.(*SQLBackend)
		switch c {
		case Tanks:
			return inner.saveTanks(ctx, records)
		case Fish:
			return inner.saveFish(ctx, records)
		default:
			return inner.saveLogs(ctx, records)
		}
	})
}

func (b *SQLBackend) exec(ctx context.Context, query string, args ...any) error {
	_, err := b.Exec(ctx, query, args...)
	return err
}

func (b *SQLBackend) ids(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := b.Query(ctx, "SELECT id FROM "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// rawValue keeps a scanned column as the driver returned it so that a value of
// the wrong type fails record decoding instead of the whole scan.
func rawValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func nullString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

// skipRow drops a row that cannot be scanned. Value checks happen when the
// record is decoded, so this only covers rows the driver itself rejects.
func (b *SQLBackend) skipRow(c Collection, table string, err error) {
	b.opts.logger.Warn().
		Err(err).
		Str("collection", string(c)).
		Str("table", table).
		Msg("Skipping unreadable row")
	b.opts.metrics.MalformedRecord(string(c))
}

type paramsColumns struct {
	dateTested sql.NullString
	temperature, ph, ammonia, nitrite, nitrate, salinity any
}

func (p *paramsColumns) dest() []any {
	return []any{&p.dateTested, &p.temperature, &p.ph, &p.ammonia, &p.nitrite, &p.nitrate, &p.salinity}
}

func (p *paramsColumns) record() Record {
	return Record{
		"date_tested": nullString(p.dateTested),
		"temperature": rawValue(p.temperature),
		"ph":          rawValue(p.ph),
		"ammonia":     rawValue(p.ammonia),
		"nitrite":     rawValue(p.nitrite),
		"nitrate":     rawValue(p.nitrate),
		"salinity":    rawValue(p.salinity),
	}
}

// paramsArgs extracts the insert arguments of a water parameters record.
func paramsArgs(p Record) ([]any, error) {
	dateTested, err := p.Str("date_tested")
	if err != nil {
		return nil, err
	}
	args := []any{dateTested}
	for _, key := range []string{"temperature", "ph", "ammonia", "nitrite", "nitrate", "salinity"} {
		v, err := p.OptFloat(key)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (b *SQLBackend) insertParams(ctx context.Context, tankID string, p Record) (int64, error) {
	args, err := paramsArgs(p)
	if err != nil {
		return 0, err
	}
	var id int64
	err = b.querier().QueryRowContext(ctx, b.dialect.Rebind(insertParamsStatement), append([]any{tankID}, args...)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert water parameters for tank %s: %w", tankID, err)
	}
	return id, nil
}

func (b *SQLBackend) loadCurrentParams(ctx context.Context) (map[string]Record, error) {
	rows, err := b.Query(ctx, listCurrentParamsStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	current := make(map[string]Record)
	for rows.Next() {
		var tankID string
		var p paramsColumns
		if err := rows.Scan(append([]any{&tankID}, p.dest()...)...); err != nil {
			b.skipRow(Tanks, "water_parameters", err)
			continue
		}
		// Rows are ordered by date_tested, so the last one per tank wins.
		current[tankID] = p.record()
	}
	return current, rows.Err()
}

func (b *SQLBackend) loadTanks(ctx context.Context) ([]Record, error) {
	current, err := b.loadCurrentParams(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := b.Query(ctx, listTanksStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id, name, tankType, location, equipment string
			size                                    any
		)
		if err := rows.Scan(&id, &name, &size, &tankType, &location, &equipment); err != nil {
			b.skipRow(Tanks, "tanks", err)
			continue
		}
		var params any
		if p, ok := current[id]; ok {
			params = p
		}
		records = append(records, Record{
			"id":                 id,
			"name":               name,
			"size_gallons":       rawValue(size),
			"tank_type":          tankType,
			"location":           location,
			"equipment":          splitEquipment(equipment),
			"current_parameters": params,
		})
	}
	return records, rows.Err()
}

// splitEquipment reverses the comma join used by the tanks table.
func splitEquipment(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func (b *SQLBackend) saveTanks(ctx context.Context, records []Record) error {
	existing, err := b.ids(ctx, "tanks")
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(records))
	for _, r := range records {
		id, err := r.Str("id")
		if err != nil {
			return fmt.Errorf("tank record: %w", err)
		}
		keep[id] = true
	}

	for id := range existing {
		if keep[id] {
			continue
		}
		if err := b.exec(ctx, deleteCurrentParamsStatement, id); err != nil {
			return fmt.Errorf("failed to delete parameters of tank %s: %w", id, err)
		}
		if err := b.exec(ctx, deleteTankStatement, id); err != nil {
			return fmt.Errorf("failed to delete tank %s: %w", id, err)
		}
	}

	for _, r := range records {
		if err := b.upsertTank(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLBackend) upsertTank(ctx context.Context, r Record) error {
	id, _ := r.Str("id")
	name, err := r.Str("name")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}
	size, err := r.Float("size_gallons")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}
	tankType, err := r.Str("tank_type")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}
	location, err := r.OptStr("location")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}
	equipment, err := r.Strings("equipment")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}
	params, hasParams, err := r.Sub("current_parameters")
	if err != nil {
		return fmt.Errorf("tank %s: %w", id, err)
	}

	loc := ""
	if location != nil {
		loc = *location
	}
	if err := b.exec(ctx, upsertTankStatement, id, name, size, tankType, loc, strings.Join(equipment, ",")); err != nil {
		return fmt.Errorf("failed to upsert tank %s: %w", id, err)
	}

	if err := b.exec(ctx, deleteCurrentParamsStatement, id); err != nil {
		return fmt.Errorf("failed to replace parameters of tank %s: %w", id, err)
	}
	if hasParams {
		if _, err := b.insertParams(ctx, id, params); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLBackend) loadFish(ctx context.Context) ([]Record, error) {
	rows, err := b.Query(ctx, listFishStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id, name, species, tankID, dateAdded, health string
			birthDate, size, color, feeding, notes       sql.NullString
		)
		if err := rows.Scan(&id, &name, &species, &tankID, &dateAdded, &birthDate, &health, &size, &color, &feeding, &notes); err != nil {
			b.skipRow(Fish, "fish", err)
			continue
		}
		records = append(records, Record{
			"id":                  id,
			"name":                name,
			"species":             species,
			"tank_id":             tankID,
			"date_added":          dateAdded,
			"birth_date":          nullString(birthDate),
			"health_status":       health,
			"size":                nullString(size),
			"color":               nullString(color),
			"feeding_preferences": nullString(feeding),
			"notes":               nullString(notes),
		})
	}
	return records, rows.Err()
}

func (b *SQLBackend) saveFish(ctx context.Context, records []Record) error {
	existing, err := b.ids(ctx, "fish")
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(records))
	args := make([][]any, 0, len(records))
	for _, r := range records {
		row, err := fishArgs(r)
		if err != nil {
			return err
		}
		keep[row[0].(string)] = true
		args = append(args, row)
	}

	for id := range existing {
		if keep[id] {
			continue
		}
		if err := b.exec(ctx, deleteFishStatement, id); err != nil {
			return fmt.Errorf("failed to delete fish %s: %w", id, err)
		}
	}
	for _, row := range args {
		if err := b.exec(ctx, upsertFishStatement, row...); err != nil {
			return fmt.Errorf("failed to upsert fish %s: %w", row[0], err)
		}
	}
	return nil
}

func fishArgs(r Record) ([]any, error) {
	var args []any
	for _, key := range []string{"id", "name", "species", "tank_id", "date_added"} {
		v, err := r.Str(key)
		if err != nil {
			return nil, fmt.Errorf("fish record: %w", err)
		}
		args = append(args, v)
	}
	birthDate, err := r.OptStr("birth_date")
	if err != nil {
		return nil, fmt.Errorf("fish record: %w", err)
	}
	health, err := r.Str("health_status")
	if err != nil {
		return nil, fmt.Errorf("fish record: %w", err)
	}
	args = append(args, birthDate, health)
	for _, key := range []string{"size", "color", "feeding_preferences", "notes"} {
		v, err := r.OptStr(key)
		if err != nil {
			return nil, fmt.Errorf("fish record: %w", err)
		}
		args = append(args, v)
	}
	return args, nil
}

func (b *SQLBackend) loadLogs(ctx context.Context) ([]Record, error) {
	rows, err := b.Query(ctx, listLogsStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id, tankID, date, activity, description string
			paramsID                                sql.NullInt64
			p                                       paramsColumns
		)
		dest := append([]any{&id, &tankID, &date, &activity, &description, &paramsID}, p.dest()...)
		if err := rows.Scan(dest...); err != nil {
			b.skipRow(Maintenance, "maintenance_logs", err)
			continue
		}
		var params any
		if paramsID.Valid && p.dateTested.Valid {
			params = p.record()
		}
		records = append(records, Record{
			"id":            id,
			"tank_id":       tankID,
			"date":          date,
			"activity_type": activity,
			"description":   description,
			"water_params":  params,
		})
	}
	return records, rows.Err()
}

// saveLogs inserts logs that are not stored yet and deletes the ones that are gone.
// Stored logs are never rewritten.
func (b *SQLBackend) saveLogs(ctx context.Context, records []Record) error {
	existing, err := b.ids(ctx, "maintenance_logs")
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(records))
	for _, r := range records {
		id, err := r.Str("id")
		if err != nil {
			return fmt.Errorf("maintenance record: %w", err)
		}
		keep[id] = true
	}

	for id := range existing {
		if keep[id] {
			continue
		}
		if err := b.deleteLog(ctx, id); err != nil {
			return err
		}
	}

	for _, r := range records {
		id, _ := r.Str("id")
		if existing[id] {
			continue
		}
		if err := b.insertLog(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLBackend) deleteLog(ctx context.Context, id string) error {
	var paramsID sql.NullInt64
	if err := b.querier().QueryRowContext(ctx, b.dialect.Rebind(getLogParamsIDStatement), id).Scan(&paramsID); err != nil {
		return fmt.Errorf("failed to read maintenance log %s: %w", id, err)
	}
	if err := b.exec(ctx, deleteLogStatement, id); err != nil {
		return fmt.Errorf("failed to delete maintenance log %s: %w", id, err)
	}
	if paramsID.Valid {
		if err := b.exec(ctx, deleteParamsStatement, paramsID.Int64); err != nil {
			return fmt.Errorf("failed to delete water parameters of log %s: %w", id, err)
		}
	}
	return nil
}

func (b *SQLBackend) insertLog(ctx context.Context, r Record) error {
	var fields [5]string
	for i, key := range []string{"id", "tank_id", "date", "activity_type", "description"} {
		v, err := r.Str(key)
		if err != nil {
			return fmt.Errorf("maintenance record: %w", err)
		}
		fields[i] = v
	}
	params, hasParams, err := r.Sub("water_params")
	if err != nil {
		return fmt.Errorf("maintenance record %s: %w", fields[0], err)
	}

	var paramsID any
	if hasParams {
		id, err := b.insertParams(ctx, fields[1], params)
		if err != nil {
			return err
		}
		paramsID = id
	}

	if err := b.exec(ctx, insertLogStatement, fields[0], fields[1], fields[2], fields[3], fields[4], paramsID); err != nil {
		return fmt.Errorf("failed to insert maintenance log %s: %w", fields[0], err)
	}
	return nil
}
