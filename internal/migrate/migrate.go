// Package migrate rewrites legacy settings keys into the current layout the
// first time a new major version runs.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/host"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/settings"
	"github.com/marcus/mfx/internal/version"
)

// VersionKey holds the major version that last migrated a scope
const VersionKey = "mfx.settings.version"

// Rule moves one legacy key to its current location
type Rule struct {
	Legacy  string
	Current string
	// Convert rewrites the legacy value; nil copies it unchanged
	Convert func(raw json.RawMessage) (json.RawMessage, error)
}

// Rules returns the legacy key mappings in the order they are applied
func Rules() []Rule {
	rules := make([]Rule, 0, len(models.AllSchemas)+2)
	for _, s := range models.AllSchemas {
		rules = append(rules, Rule{
			Legacy:  filters.LegacyKey(s),
			Current: filters.SettingsKey(s),
			Convert: convertHistoryRecord,
		})
	}
	rules = append(rules,
		Rule{Legacy: "MFX-Automatic-Validation", Current: "mfx.automaticProfileValidation"},
		Rule{Legacy: "MFX-Temp-Folder-Location", Current: "mfx.files.temporaryDownloadsFolder.path", Convert: convertTempFolder},
	)
	return rules
}

// convertHistoryRecord splits the legacy combined history into the current
// record shape. The legacy list becomes the search history.
func convertHistoryRecord(raw json.RawMessage) (json.RawMessage, error) {
	legacy, err := settings.DecodeRecord(raw)
	if err != nil {
		return nil, err
	}
	out := settings.Record{}
	for _, field := range []string{filters.FieldPersistence, filters.FieldFavorites, filters.FieldSessions} {
		if v, ok := legacy[field]; ok {
			out[field] = v
		}
	}
	if v, ok := legacy[filters.FieldLegacyHistory]; ok {
		out[filters.FieldSearchHistory] = v
	}
	return out.Marshal()
}

// convertTempFolder unwraps {"folderPath": "..."} into a plain string
func convertTempFolder(raw json.RawMessage) (json.RawMessage, error) {
	var wrapped struct {
		FolderPath string `json:"folderPath"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.FolderPath == "" {
		return raw, nil
	}
	return json.Marshal(wrapped.FolderPath)
}

// ScopeResult describes what happened to one scope
type ScopeResult struct {
	Scope settings.Scope
	// Previous is the stored marker, empty when unset
	Previous string
	// Skipped is true when the marker already matched
	Skipped  bool
	Migrated []string
}

// Result is the outcome of Run
type Result struct {
	Major    string
	Scopes   []ScopeResult
	Reloaded bool
}

// Migrated reports whether any legacy key was rewritten
func (r Result) Migrated() bool {
	for _, s := range r.Scopes {
		if len(s.Migrated) > 0 {
			return true
		}
	}
	return false
}

// Run migrates the global and workspace scopes independently, each gated by
// its own version marker. When any legacy key was rewritten the user is asked
// to reload.
func Run(ctx context.Context, store settings.Store, h host.Host, currentVersion string) (Result, error) {
	res := Result{Major: version.Major(currentVersion)}
	rules := Rules()

	for _, scope := range []settings.Scope{settings.Global, settings.Workspace} {
		sr, err := migrateScope(ctx, store, scope, res.Major, rules)
		if errors.Is(err, settings.ErrNoWorkspace) {
			slog.Debug("migrate: no workspace scope")
			continue
		}
		if err != nil {
			return res, fmt.Errorf("migrate %s settings: %w", scope, err)
		}
		res.Scopes = append(res.Scopes, sr)
	}

	if !res.Migrated() || h == nil {
		return res, nil
	}
	ok, err := h.Confirm(ctx, "Settings from an earlier version were migrated. Reload now?")
	if err != nil {
		return res, err
	}
	if !ok {
		h.ShowInfo("Reload to finish applying migrated settings.")
		return res, nil
	}
	if err := h.ExecuteCommand(ctx, host.CommandReload); err != nil {
		return res, err
	}
	res.Reloaded = true
	return res, nil
}

func migrateScope(ctx context.Context, store settings.Store, scope settings.Scope, major string, rules []Rule) (ScopeResult, error) {
	sr := ScopeResult{Scope: scope}

	marker, err := store.Inspect(ctx, VersionKey)
	if err != nil {
		return sr, err
	}
	if raw := marker.Value(scope); len(raw) > 0 {
		if err := json.Unmarshal(raw, &sr.Previous); err != nil {
			slog.Warn("migrate: unreadable version marker", "scope", scope, "err", err)
		}
	}
	if sr.Previous == major {
		sr.Skipped = true
		return sr, nil
	}

	for _, r := range rules {
		in, err := store.Inspect(ctx, r.Legacy)
		if err != nil {
			return sr, err
		}
		raw := in.Value(scope)
		if len(raw) == 0 {
			continue
		}
		if r.Convert != nil {
			if raw, err = r.Convert(raw); err != nil {
				return sr, fmt.Errorf("%s: %w", r.Legacy, err)
			}
		}
		if err := store.Set(ctx, r.Current, raw, scope); err != nil {
			return sr, err
		}
		if err := store.Delete(ctx, r.Legacy, scope); err != nil {
			return sr, err
		}
		slog.Info("migrate: rewrote legacy key", "scope", scope, "from", r.Legacy, "to", r.Current)
		sr.Migrated = append(sr.Migrated, r.Legacy)
	}

	stamp, err := json.Marshal(major)
	if err != nil {
		return sr, err
	}
	if err := store.Set(ctx, VersionKey, stamp, scope); err != nil {
		return sr, err
	}
	return sr, nil
}
