package db

// SchemaVersion is the current database schema version
const SchemaVersion = 2

const schema = `
-- Settings values, one row per (scope, key)
CREATE TABLE IF NOT EXISTS settings (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (scope, key)
);

CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Migration defines a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations is the list of all database migrations in order
var Migrations = []Migration{
	// Version 1 is the initial settings table without timestamps
	{
		Version:     2,
		Description: "Add updated_at to settings",
		SQL:         `ALTER TABLE settings ADD COLUMN updated_at DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00';`,
	},
}
