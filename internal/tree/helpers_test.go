package tree

import (
	"context"
	"testing"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/host"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/profiles"
	"github.com/marcus/mfx/internal/remote"
	"github.com/marcus/mfx/internal/settings"
)

type fixture struct {
	store    *settings.MemoryStore
	host     *host.Recorder
	profiles *profiles.Static
	backends map[models.Schema]*remote.Memory
	apis     *remote.Registry
	trees    *Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: settings.NewMemoryStore(),
		host:  &host.Recorder{},
		profiles: profiles.NewStatic(
			&models.Profile{Name: "P1", Type: "zosmf", Host: "mf1.example.com", User: "ibmuser"},
			&models.Profile{Name: "P2", Type: "zosmf", Host: "mf2.example.com", User: "ibmuser"},
		),
		backends: make(map[models.Schema]*remote.Memory),
		apis:     remote.NewRegistry(),
		trees:    NewRegistry(),
	}
	for _, s := range models.AllSchemas {
		m := remote.NewMemory(s)
		f.backends[s] = m
		f.apis.Register(m)
	}
	return f
}

func (f *fixture) deps(t *testing.T, schema models.Schema) Deps {
	t.Helper()
	fm, err := filters.New(context.Background(), f.store, schema, filters.Options{})
	if err != nil {
		t.Fatalf("filters.New: %v", err)
	}
	return Deps{Filters: fm, Profiles: f.profiles, APIs: f.apis, Host: f.host, Trees: f.trees}
}

func (f *fixture) datasets(t *testing.T) *DatasetTree {
	t.Helper()
	tr, err := NewDatasetTree(context.Background(), f.deps(t, models.SchemaDatasets))
	if err != nil {
		t.Fatalf("NewDatasetTree: %v", err)
	}
	return tr
}

func (f *fixture) uss(t *testing.T) *USSTree {
	t.Helper()
	tr, err := NewUSSTree(context.Background(), f.deps(t, models.SchemaUSS))
	if err != nil {
		t.Fatalf("NewUSSTree: %v", err)
	}
	return tr
}

func (f *fixture) jobs(t *testing.T) *JobTree {
	t.Helper()
	tr, err := NewJobTree(context.Background(), f.deps(t, models.SchemaJobs))
	if err != nil {
		t.Fatalf("NewJobTree: %v", err)
	}
	return tr
}

func (f *fixture) storedFavorites(t *testing.T, schema models.Schema) []string {
	t.Helper()
	rec, _, err := settings.GetRecord(context.Background(), f.store, filters.SettingsKey(schema))
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	favs, _, err := rec.Strings(filters.FieldFavorites)
	if err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	return favs
}

// searched adds a session for profile, searches pattern and lists the results
func searched(t *testing.T, p *Provider, profile, pattern string) (*models.Node, []*models.Node) {
	t.Helper()
	ctx := context.Background()
	s, err := p.AddSession(ctx, profile)
	if err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	if err := p.Search(ctx, s, pattern); err != nil {
		t.Fatalf("Search: %v", err)
	}
	children, err := p.GetChildren(ctx, s)
	if err != nil {
		t.Fatalf("GetChildren: %v", err)
	}
	return s, children
}

func childByLabel(t *testing.T, nodes []*models.Node, label string) *models.Node {
	t.Helper()
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	t.Fatalf("no node labeled %q", label)
	return nil
}
