package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the SQLite schema.
	// Foreign keys are declared but only enforced when the connection enables them.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS aquarium_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS tanks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    size_gallons REAL NOT NULL,
    tank_type TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    equipment TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS water_parameters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date_tested TEXT NOT NULL,
    temperature REAL,
    ph REAL,
    ammonia REAL,
    nitrite REAL,
    nitrate REAL,
    salinity REAL
);

CREATE TABLE IF NOT EXISTS fish (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    species TEXT NOT NULL,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date_added TEXT NOT NULL,
    birth_date TEXT,
    health_status TEXT NOT NULL DEFAULT 'healthy',
    size TEXT,
    color TEXT,
    feeding_preferences TEXT,
    notes TEXT
);

CREATE TABLE IF NOT EXISTS maintenance_logs (
    id TEXT PRIMARY KEY,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    water_params_id INTEGER REFERENCES water_parameters(id)
);

CREATE INDEX IF NOT EXISTS idx_water_parameters_tank ON water_parameters(tank_id);
CREATE INDEX IF NOT EXISTS idx_fish_tank ON fish(tank_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_logs_tank ON maintenance_logs(tank_id);
`

	// SchemaV1Postgres is SchemaV1 for Postgres.
	SchemaV1Postgres = `
CREATE TABLE IF NOT EXISTS aquarium_versions (
    component TEXT PRIMARY KEY,
    version BIGINT NOT NULL,
    created_at DOUBLE PRECISION DEFAULT EXTRACT(EPOCH FROM now())
);

CREATE TABLE IF NOT EXISTS tanks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    size_gallons DOUBLE PRECISION NOT NULL,
    tank_type TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    equipment TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS water_parameters (
    id BIGSERIAL PRIMARY KEY,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date_tested TEXT NOT NULL,
    temperature DOUBLE PRECISION,
    ph DOUBLE PRECISION,
    ammonia DOUBLE PRECISION,
    nitrite DOUBLE PRECISION,
    nitrate DOUBLE PRECISION,
    salinity DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS fish (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    species TEXT NOT NULL,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date_added TEXT NOT NULL,
    birth_date TEXT,
    health_status TEXT NOT NULL DEFAULT 'healthy',
    size TEXT,
    color TEXT,
    feeding_preferences TEXT,
    notes TEXT
);

CREATE TABLE IF NOT EXISTS maintenance_logs (
    id TEXT PRIMARY KEY,
    tank_id TEXT NOT NULL REFERENCES tanks(id),
    date TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    water_params_id BIGINT REFERENCES water_parameters(id)
);

CREATE INDEX IF NOT EXISTS idx_water_parameters_tank ON water_parameters(tank_id);
CREATE INDEX IF NOT EXISTS idx_fish_tank ON fish(tank_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_logs_tank ON maintenance_logs(tank_id);
`
)

// Schema returns the version 1 schema for the dialect.
func (d Dialect) Schema() string {
	if d == Postgres {
		return SchemaV1Postgres
	}
	return SchemaV1
}
