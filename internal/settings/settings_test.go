package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "user", "settings.json"), filepath.Join(dir, "ws", ".mfx", "settings.json"))
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "mfx.ds.history")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestUpdateCreatesRecordAndKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Update(ctx, "mfx.ds.history", "searchHistory", []string{"A.B"}, Global); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update(ctx, "mfx.ds.history", "persistence", true, Global); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, ok, err := GetRecord(ctx, s, "mfx.ds.history")
	if err != nil || !ok {
		t.Fatalf("GetRecord: ok=%v err=%v", ok, err)
	}
	got, _, _ := rec.Strings("searchHistory")
	if !reflect.DeepEqual(got, []string{"A.B"}) {
		t.Errorf("searchHistory = %v", got)
	}
	if !rec.Bool("persistence", false) {
		t.Error("persistence should be true")
	}
}

func TestWorkspaceOverridesGlobal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Set(ctx, "mfx.automaticProfileValidation", json.RawMessage(`true`), Global)
	s.Set(ctx, "mfx.automaticProfileValidation", json.RawMessage(`false`), Workspace)

	raw, _, _ := s.Get(ctx, "mfx.automaticProfileValidation")
	if string(raw) != "false" {
		t.Errorf("effective = %s, want false", raw)
	}

	in, err := s.Inspect(ctx, "mfx.automaticProfileValidation")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if string(in.Global) != "true" || string(in.Workspace) != "false" {
		t.Errorf("inspect = %s / %s", in.Global, in.Workspace)
	}
}

func TestNoWorkspaceScope(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "settings.json"), "")
	err := s.Set(context.Background(), "k", json.RawMessage(`1`), Workspace)
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("err = %v, want ErrNoWorkspace", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Set(ctx, "legacy", json.RawMessage(`{"a":1}`), Global)

	if err := s.Delete(ctx, "legacy", Global); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "legacy"); ok {
		t.Error("key should be gone")
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	s := newTestStore(t)
	path := s.Path(Global)
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, []byte("{not json"), 0644)

	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWatchReportsExternalWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestStore(t)

	changed := make(chan Scope, 4)
	if err := s.Watch(ctx, 20*time.Millisecond, func(sc Scope) { changed <- sc }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	other := NewFileStore(s.Path(Global), "")
	if err := other.Set(ctx, "mfx.uss.history", json.RawMessage(`{}`), Global); err != nil {
		t.Fatalf("Set: %v", err)
	}

	select {
	case sc := <-changed:
		if sc != Global {
			t.Errorf("scope = %v, want global", sc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
}
