package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/marcus/mfx/internal/settings"
)

func setupTestDB(t *testing.T, workspace string) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "state", "settings.db"), workspace)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenSetsSchemaVersion(t *testing.T) {
	db := setupTestDB(t, "")

	v, err := db.GetSchemaVersion()
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("version = %d, want %d", v, SchemaVersion)
	}
}

func TestMigrateFromVersionOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = conn.Exec(`CREATE TABLE settings (scope TEXT NOT NULL, key TEXT NOT NULL, value TEXT NOT NULL, PRIMARY KEY (scope, key));
CREATE TABLE schema_info (key TEXT PRIMARY KEY, value TEXT NOT NULL);
INSERT INTO schema_info VALUES ('version', '1');
INSERT INTO settings VALUES ('global', 'mfx.ds.history', '{"persistence":true}');`)
	conn.Close()
	if err != nil {
		t.Fatalf("seed v1: %v", err)
	}

	db, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if v, _ := db.GetSchemaVersion(); v != SchemaVersion {
		t.Errorf("version = %d, want %d", v, SchemaVersion)
	}
	ok, err := db.columnExists("settings", "updated_at")
	if err != nil || !ok {
		t.Errorf("updated_at column missing: ok=%v err=%v", ok, err)
	}
	raw, found, err := db.Get(context.Background(), "mfx.ds.history")
	if err != nil || !found {
		t.Fatalf("Get after migration: found=%v err=%v", found, err)
	}
	if string(raw) != `{"persistence":true}` {
		t.Errorf("value = %s", raw)
	}
}

func TestUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, "")

	if err := db.Update(ctx, "mfx.uss.history", "sessions", []string{"a", "b"}, settings.Global); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := db.Update(ctx, "mfx.uss.history", "persistence", true, settings.Global); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, ok, err := settings.GetRecord(ctx, db, "mfx.uss.history")
	if err != nil || !ok {
		t.Fatalf("GetRecord: ok=%v err=%v", ok, err)
	}
	sessions, _, _ := rec.Strings("sessions")
	if len(sessions) != 2 || sessions[0] != "a" {
		t.Errorf("sessions = %v", sessions)
	}
	if !rec.Bool("persistence", false) {
		t.Error("persistence lost by second update")
	}
}

func TestWorkspaceScope(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, "/home/me/project")

	db.Set(ctx, "k", json.RawMessage(`"global"`), settings.Global)
	db.Set(ctx, "k", json.RawMessage(`"ws"`), settings.Workspace)

	raw, _, _ := db.Get(ctx, "k")
	if string(raw) != `"ws"` {
		t.Errorf("effective = %s, want workspace value", raw)
	}
	in, err := db.Inspect(ctx, "k")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if string(in.Global) != `"global"` {
		t.Errorf("global = %s", in.Global)
	}

	if err := db.Delete(ctx, "k", settings.Workspace); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	raw, _, _ = db.Get(ctx, "k")
	if string(raw) != `"global"` {
		t.Errorf("after delete = %s, want global value", raw)
	}
}

func TestWorkspaceDisabled(t *testing.T) {
	db := setupTestDB(t, "")
	err := db.Set(context.Background(), "k", json.RawMessage(`1`), settings.Workspace)
	if !errors.Is(err, settings.ErrNoWorkspace) {
		t.Errorf("err = %v, want ErrNoWorkspace", err)
	}
}

func TestListEntries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, "")
	db.Set(ctx, "b", json.RawMessage(`1`), settings.Global)
	db.Set(ctx, "a", json.RawMessage(`2`), settings.Global)

	entries, err := db.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "a" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].UpdatedAt.IsZero() {
		t.Error("updated_at should be parsed")
	}
}
