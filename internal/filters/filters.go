// Package filters owns the per-schema search, file and session histories,
// the favorites list and data set templates, and persists them under one
// settings record per schema.
package filters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus/mfx/internal/history"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/settings"
)

// Record fields
const (
	FieldPersistence   = "persistence"
	FieldFavorites     = "favorites"
	FieldSearchHistory = "searchHistory"
	FieldFileHistory   = "fileHistory"
	FieldSessions      = "sessions"
	FieldTemplates     = "templates"

	// FieldLegacyHistory is the single history list of the legacy record shape
	FieldLegacyHistory = "history"
)

// History defaults
const (
	DefaultMaxSearchHistory = 6
	DefaultMaxFileHistory   = 9
)

// ErrTemplatesUnsupported is returned by template operations outside the data set schema
var ErrTemplatesUnsupported = errors.New("filters: templates are only kept for data sets")

// SettingsKey returns the current settings key for a schema
func SettingsKey(s models.Schema) string {
	switch s {
	case models.SchemaUSS:
		return "mfx.uss.history"
	case models.SchemaJobs:
		return "mfx.jobs.history"
	default:
		return "mfx.ds.history"
	}
}

// LegacyKey returns the pre-migration settings key for a schema
func LegacyKey(s models.Schema) string {
	switch s {
	case models.SchemaUSS:
		return "MFX-USS-Persistent"
	case models.SchemaJobs:
		return "MFX-Jobs-Persistent"
	default:
		return "MFX-DS-Persistent"
	}
}

// Options configures a Manager
type Options struct {
	MaxSearchHistory int
	MaxFileHistory   int
	// Scope is the settings layer writes go to while the workspace layer
	// holds no record for the key
	Scope settings.Scope
	// Legacy reads and writes the pre-migration key and record shape, and
	// resets the legacy categories (history, sessions) missing from the
	// stored record
	Legacy bool
}

// Manager is the persistent filter manager for one schema
type Manager struct {
	store  settings.Store
	schema models.Schema
	key    string
	opts   Options

	search   *history.Store
	file     *history.Store
	sessions *history.Store

	templates []Template
}

// New hydrates a Manager from the record stored for schema. Categories
// absent from the record start empty and are not written back, except in
// the legacy variant.
func New(ctx context.Context, store settings.Store, schema models.Schema, opts Options) (*Manager, error) {
	if opts.MaxSearchHistory <= 0 {
		opts.MaxSearchHistory = DefaultMaxSearchHistory
	}
	if opts.MaxFileHistory <= 0 {
		opts.MaxFileHistory = DefaultMaxFileHistory
	}

	m := &Manager{
		store:  store,
		schema: schema,
		key:    SettingsKey(schema),
		opts:   opts,
	}
	if opts.Legacy {
		m.key = LegacyKey(schema)
	}

	rec, _, err := settings.GetRecord(ctx, store, m.key)
	if err != nil {
		return nil, fmt.Errorf("load %s filters: %w", schema, err)
	}

	searchField := FieldSearchHistory
	if opts.Legacy {
		searchField = FieldLegacyHistory
	}

	searchVals, hasSearch, err := rec.Strings(searchField)
	if err != nil {
		return nil, err
	}
	fileVals, _, err := rec.Strings(FieldFileHistory)
	if err != nil {
		return nil, err
	}
	sessionVals, hasSessions, err := rec.Strings(FieldSessions)
	if err != nil {
		return nil, err
	}
	if _, err := rec.Decode(FieldTemplates, &m.templates); err != nil {
		return nil, err
	}

	m.search, err = history.New(history.Options{
		Capacity: opts.MaxSearchHistory,
		Persist:  m.persister(searchField),
	}, searchVals)
	if err != nil {
		return nil, err
	}
	m.file, err = history.New(history.Options{
		Capacity:  opts.MaxFileHistory,
		Uppercase: true,
		Persist:   m.persister(FieldFileHistory),
	}, fileVals)
	if err != nil {
		return nil, err
	}
	m.sessions, err = history.New(history.Options{
		Capacity: history.Unbounded,
		Order:    history.Sorted,
		Persist:  m.persister(FieldSessions),
	}, sessionVals)
	if err != nil {
		return nil, err
	}

	if opts.Legacy {
		if !hasSearch {
			if err := m.search.Reset(ctx); err != nil {
				return nil, err
			}
		}
		if !hasSessions {
			if err := m.sessions.Reset(ctx); err != nil {
				return nil, err
			}
		}
	}

	slog.Debug("filters: loaded", "schema", schema, "key", m.key,
		"search", m.search.Len(), "file", m.file.Len(), "sessions", m.sessions.Len())
	return m, nil
}

// Schema returns the tree schema this manager belongs to
func (m *Manager) Schema() models.Schema { return m.schema }

// Key returns the settings key the manager persists under
func (m *Manager) Key() string { return m.key }

func (m *Manager) persister(field string) history.PersistFunc {
	return func(ctx context.Context, entries []string) error {
		return m.write(ctx, field, entries)
	}
}

// write stores one field, skipped when persistence is switched off
func (m *Manager) write(ctx context.Context, field string, value any) error {
	enabled, err := m.Persistence(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		slog.Debug("filters: persistence off, skipping write", "schema", m.schema, "field", field)
		return nil
	}
	scope, err := m.writeScope(ctx)
	if err != nil {
		return err
	}
	if err := m.store.Update(ctx, m.key, field, value, scope); err != nil {
		return fmt.Errorf("persist %s %s: %w", m.schema, field, err)
	}
	return nil
}

// writeScope picks the layer reads are served from. A workspace record
// shadows the global one whole, so once it exists every write goes there.
func (m *Manager) writeScope(ctx context.Context) (settings.Scope, error) {
	in, err := m.store.Inspect(ctx, m.key)
	if err != nil {
		return m.opts.Scope, fmt.Errorf("inspect %s: %w", m.key, err)
	}
	if len(in.Workspace) > 0 {
		return settings.Workspace, nil
	}
	return m.opts.Scope, nil
}

// Persistence reports the namespace's persistence toggle (default on)
func (m *Manager) Persistence(ctx context.Context) (bool, error) {
	rec, _, err := settings.GetRecord(ctx, m.store, m.key)
	if err != nil {
		return false, fmt.Errorf("read %s persistence: %w", m.schema, err)
	}
	return rec.Bool(FieldPersistence, true), nil
}

// SetPersistence switches the persistence toggle
func (m *Manager) SetPersistence(ctx context.Context, enabled bool) error {
	scope, err := m.writeScope(ctx)
	if err != nil {
		return err
	}
	if err := m.store.Update(ctx, m.key, FieldPersistence, enabled, scope); err != nil {
		return fmt.Errorf("persist %s persistence: %w", m.schema, err)
	}
	return nil
}

// AddSearchHistory records search criteria
func (m *Manager) AddSearchHistory(ctx context.Context, criteria string) error {
	return m.search.Add(ctx, criteria)
}

// GetSearchHistory returns search history, most recent first
func (m *Manager) GetSearchHistory() []string { return m.search.Entries() }

// RemoveSearchHistory drops the first entry containing name
func (m *Manager) RemoveSearchHistory(ctx context.Context, name string) error {
	return m.search.Remove(ctx, name)
}

// ResetSearchHistory clears search history
func (m *Manager) ResetSearchHistory(ctx context.Context) error {
	return m.search.Reset(ctx)
}

// AddFileHistory records an opened file; entries are upper-cased
func (m *Manager) AddFileHistory(ctx context.Context, criteria string) error {
	return m.file.Add(ctx, criteria)
}

// GetFileHistory returns file history, most recent first
func (m *Manager) GetFileHistory() []string { return m.file.Entries() }

// RemoveFileHistory drops the first entry containing name
func (m *Manager) RemoveFileHistory(ctx context.Context, name string) error {
	return m.file.Remove(ctx, name)
}

// ResetFileHistory clears file history
func (m *Manager) ResetFileHistory(ctx context.Context) error {
	return m.file.Reset(ctx)
}

// AddSession records a session name; the list stays sorted
func (m *Manager) AddSession(ctx context.Context, name string) error {
	return m.sessions.Add(ctx, name)
}

// GetSessions returns the sorted session names
func (m *Manager) GetSessions() []string { return m.sessions.Entries() }

// RemoveSession drops the session with exactly this (trimmed) name
func (m *Manager) RemoveSession(ctx context.Context, name string) error {
	return m.sessions.RemoveExact(ctx, name)
}

// ResetSessions clears the session list
func (m *Manager) ResetSessions(ctx context.Context) error {
	return m.sessions.Reset(ctx)
}

// ReadFavorites reads the encoded favorites straight from storage
func (m *Manager) ReadFavorites(ctx context.Context) ([]string, error) {
	rec, _, err := settings.GetRecord(ctx, m.store, m.key)
	if err != nil {
		return nil, fmt.Errorf("read %s favorites: %w", m.schema, err)
	}
	favs, _, err := rec.Strings(FieldFavorites)
	if err != nil {
		return nil, err
	}
	return favs, nil
}

// UpdateFavorites writes the encoded favorites list
func (m *Manager) UpdateFavorites(ctx context.Context, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	return m.write(ctx, FieldFavorites, favorites)
}
