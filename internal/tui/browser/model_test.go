package browser

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/profiles"
	"github.com/marcus/mfx/internal/remote"
	"github.com/marcus/mfx/internal/settings"
	"github.com/marcus/mfx/internal/tree"
)

type env struct {
	store *settings.MemoryStore
	host  *Host
	ds    *tree.DatasetTree
	uss   *tree.USSTree
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{store: settings.NewMemoryStore(), host: NewHost()}

	dsAPI := remote.NewMemory(models.SchemaDatasets)
	dsAPI.Put("P1", remote.Object{Path: "USER.A", Tag: models.TagDS})
	dsAPI.Put("P1", remote.Object{Path: "USER.PDS", Tag: models.TagPDS})
	dsAPI.Put("P1", remote.Object{Path: "USER.PDS(MEM1)", Tag: models.TagMember})
	ussAPI := remote.NewMemory(models.SchemaUSS)
	ussAPI.Put("P1", remote.Object{Path: "/u/p1/a.txt", Tag: models.TagTextFile})
	apis := remote.NewRegistry(dsAPI, ussAPI)

	resolver := profiles.NewStatic(&models.Profile{Name: "P1", Type: "zosmf", Host: "mf1.example.com", User: "ibmuser"})
	trees := tree.NewRegistry()
	deps := func(s models.Schema) tree.Deps {
		fm, err := filters.New(ctx, e.store, s, filters.Options{})
		if err != nil {
			t.Fatalf("filters.New: %v", err)
		}
		return tree.Deps{Filters: fm, Profiles: resolver, APIs: apis, Host: e.host, Trees: trees}
	}

	var err error
	if e.ds, err = tree.NewDatasetTree(ctx, deps(models.SchemaDatasets)); err != nil {
		t.Fatalf("NewDatasetTree: %v", err)
	}
	if e.uss, err = tree.NewUSSTree(ctx, deps(models.SchemaUSS)); err != nil {
		t.Fatalf("NewUSSTree: %v", err)
	}
	if _, err := e.ds.AddSession(ctx, "P1"); err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	if _, err := e.uss.AddSession(ctx, "P1"); err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	return e
}

func (e *env) model(t *testing.T, opts Options) Model {
	t.Helper()
	opts.Host = e.host
	m := NewModel(context.Background(), []*tree.Provider{e.ds.Provider, e.uss.Provider}, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return drain(t, next.(Model), m.Init())
}

// drain runs cmd and feeds every resulting message back into m until no
// commands remain
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 50 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return drain(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText enters text into the open input without running cursor commands
func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(runes(string(r)))
		m = next.(Model)
	}
	return m
}

func labels(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Item.Label
	}
	return out
}

func TestInitialRows(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	if got := labels(m.Rows); strings.Join(got, ",") != "Favorites,P1" {
		t.Errorf("rows = %v", got)
	}
	if !strings.Contains(m.View(), "datasets") {
		t.Error("view missing tree tabs")
	}
}

func TestSearchExpandsSession(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	m = press(t, m, runes("j"))

	next, _ := m.Update(runes("/"))
	m = typeText(next.(Model), "user.*")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := strings.Join(labels(m.Rows), ","); got != "Favorites,P1,USER.A,USER.PDS" {
		t.Fatalf("rows = %v", got)
	}
	if m.Rows[2].Depth != 1 {
		t.Errorf("depth = %d, want 1", m.Rows[2].Depth)
	}
	if !strings.Contains(m.View(), "USER.PDS") {
		t.Error("view missing listed data set")
	}
}

func TestFavoriteFromBrowser(t *testing.T) {
	e := newEnv(t)
	m := e.model(t, Options{})
	m = press(t, m, runes("j"))
	next, _ := m.Update(runes("/"))
	m = typeText(next.(Model), "USER.*")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = press(t, m, runes("j"))
	m = press(t, m, runes("j"))
	m = press(t, m, runes("f"))

	rec, _, _ := settings.GetRecord(context.Background(), e.store, filters.SettingsKey(models.SchemaDatasets))
	favs, _, _ := rec.Strings(filters.FieldFavorites)
	if len(favs) != 1 || favs[0] != "[P1]: USER.PDS{pds}" {
		t.Fatalf("stored favorites = %v", favs)
	}

	for m.Cursor > 0 {
		m = press(t, m, runes("k"))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := strings.Join(labels(m.Rows), ","); got != "Favorites,P1,P1,USER.A,USER.PDS" {
		t.Errorf("rows = %v", got)
	}
}

func TestWarningShownInStatus(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	m = press(t, m, runes("j"))
	next, _ := m.Update(runes("/"))
	m = press(t, next.(Model), tea.KeyMsg{Type: tea.KeyEnter})

	if m.Level != LevelWarning || !strings.Contains(m.Status, "search pattern") {
		t.Errorf("status = %q level = %v", m.Status, m.Level)
	}
}

func TestSearchNeedsSession(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	next, cmd := m.Update(runes("/"))
	m = next.(Model)
	if cmd != nil || m.mode != modeNone || m.Level != LevelWarning {
		t.Errorf("mode = %v status = %q", m.mode, m.Status)
	}
}

func TestCancelInput(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	m = press(t, m, runes("j"))
	next, _ := m.Update(runes("R"))
	m = next.(Model)
	if m.mode != modeRename || m.input.Value() != "P1" {
		t.Fatalf("mode = %v value = %q", m.mode, m.input.Value())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(Model).mode != modeNone {
		t.Error("esc did not close the input")
	}
}

func TestSwitchTree(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Active != 1 || len(m.Rows) != 2 {
		t.Fatalf("active = %d rows = %v", m.Active, labels(m.Rows))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Active != 0 {
		t.Errorf("active = %d, want 0", m.Active)
	}
}

func TestCheckProfileStatus(t *testing.T) {
	m := newEnv(t).model(t, Options{})
	m = press(t, m, runes("j"))
	m = press(t, m, runes("c"))
	if m.Status != "Profile P1: valid" {
		t.Errorf("status = %q", m.Status)
	}
	if !strings.HasSuffix(m.Rows[1].Item.ContextValue, "_active") {
		t.Errorf("context = %q", m.Rows[1].Item.ContextValue)
	}
}

func TestExternalChangeReloads(t *testing.T) {
	e := newEnv(t)
	changes := make(chan struct{})
	close(changes)
	m := e.model(t, Options{Changes: changes})

	favs, _ := json.Marshal([]string{"[P1]: USER.A{ds}"})
	e.store.Update(context.Background(), filters.SettingsKey(models.SchemaDatasets), filters.FieldFavorites, json.RawMessage(favs), settings.Global)

	next, cmd := m.Update(ChangedMsg{})
	m = drain(t, next.(Model), cmd)
	if got := e.ds.FavoritesRoot().Children; len(got) != 1 || got[0].Label != "P1" {
		t.Errorf("favorite groups = %v", got)
	}
	if m.Status != "Settings changed on disk, reloaded" {
		t.Errorf("status = %q", m.Status)
	}
}
