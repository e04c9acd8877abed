package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcus/mfx/internal/settings"
)

var _ settings.Store = (*DB)(nil)

// scopeKey maps a settings scope to its row scope. Workspace rows are keyed
// by workspace identity so one database can serve several workspaces.
func (db *DB) scopeKey(scope settings.Scope) (string, error) {
	if scope == settings.Workspace {
		if db.workspace == "" {
			return "", settings.ErrNoWorkspace
		}
		return "workspace:" + db.workspace, nil
	}
	return "global", nil
}

func (db *DB) getRaw(ctx context.Context, scope settings.Scope, key string) (json.RawMessage, bool, error) {
	sk, err := db.scopeKey(scope)
	if err != nil {
		return nil, false, nil
	}
	var value string
	err = db.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE scope = ? AND key = ?`, sk, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Get implements settings.Store
func (db *DB) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	for _, scope := range []settings.Scope{settings.Workspace, settings.Global} {
		raw, ok, err := db.getRaw(ctx, scope, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return raw, true, nil
		}
	}
	return nil, false, nil
}

// Inspect implements settings.Store
func (db *DB) Inspect(ctx context.Context, key string) (settings.Inspection, error) {
	in := settings.Inspection{Key: key}
	g, _, err := db.getRaw(ctx, settings.Global, key)
	if err != nil {
		return in, err
	}
	w, _, err := db.getRaw(ctx, settings.Workspace, key)
	if err != nil {
		return in, err
	}
	in.Global, in.Workspace = g, w
	return in, nil
}

// Set implements settings.Store
func (db *DB) Set(ctx context.Context, key string, value json.RawMessage, scope settings.Scope) error {
	sk, err := db.scopeKey(scope)
	if err != nil {
		return err
	}
	return db.withWriteLock(func() error {
		return db.put(ctx, sk, key, value)
	})
}

// Update implements settings.Store
func (db *DB) Update(ctx context.Context, key, field string, value any, scope settings.Scope) error {
	sk, err := db.scopeKey(scope)
	if err != nil {
		return err
	}
	return db.withWriteLock(func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		var current string
		err = tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE scope = ? AND key = ?`, sk, key).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("get %s: %w", key, err)
		}
		next, err := settings.UpdateField(json.RawMessage(current), field, value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO settings (scope, key, value, updated_at) VALUES (?, ?, ?, ?)`,
			sk, key, string(next), now()); err != nil {
			return fmt.Errorf("update %s.%s: %w", key, field, err)
		}
		return tx.Commit()
	})
}

// Delete implements settings.Store
func (db *DB) Delete(ctx context.Context, key string, scope settings.Scope) error {
	sk, err := db.scopeKey(scope)
	if err != nil {
		return err
	}
	return db.withWriteLock(func() error {
		_, err := db.conn.ExecContext(ctx, `DELETE FROM settings WHERE scope = ? AND key = ?`, sk, key)
		return err
	})
}

func (db *DB) put(ctx context.Context, scope, key string, value json.RawMessage) error {
	_, err := db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO settings (scope, key, value, updated_at) VALUES (?, ?, ?, ?)`,
		scope, key, string(value), now())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Entry is one stored setting with its modification time
type Entry struct {
	Scope     string
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}

// ListEntries returns all settings rows ordered by scope and key
func (db *DB) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT scope, key, value, updated_at FROM settings ORDER BY scope, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var value, updated string
		if err := rows.Scan(&e.Scope, &e.Key, &value, &updated); err != nil {
			return nil, err
		}
		e.Value = json.RawMessage(value)
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, updated); err == nil {
				e.UpdatedAt = t
				break
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
