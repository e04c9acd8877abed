package cmd

import (
	"context"
	"testing"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/host"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/profiles"
	"github.com/marcus/mfx/internal/remote"
	"github.com/marcus/mfx/internal/settings"
	"github.com/marcus/mfx/internal/tree"
)

func newDatasetTree(t *testing.T) *tree.DatasetTree {
	t.Helper()
	ctx := context.Background()

	api := remote.NewMemory(models.SchemaDatasets)
	api.Put("P1", remote.Object{Path: "USER.SEQ", Tag: models.TagDS})
	api.Put("P1", remote.Object{Path: "USER.PDS", Tag: models.TagPDS})
	api.Put("P1", remote.Object{Path: "USER.PDS(MEM1)", Tag: models.TagMember})

	fm, err := filters.New(ctx, settings.NewMemoryStore(), models.SchemaDatasets, filters.Options{})
	if err != nil {
		t.Fatalf("filters.New: %v", err)
	}
	ds, err := tree.NewDatasetTree(ctx, tree.Deps{
		Filters:  fm,
		Profiles: profiles.NewStatic(&models.Profile{Name: "P1", Type: "zosmf", Host: "mf1.example.com"}),
		APIs:     remote.NewRegistry(api),
		Host:     &host.Recorder{},
		Trees:    tree.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("NewDatasetTree: %v", err)
	}
	return ds
}

func TestLocateDataSetAndMember(t *testing.T) {
	ctx := context.Background()
	ds := newDatasetTree(t)

	n, err := locate(ctx, ds.Provider, "P1", "user.seq")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if n.Path != "USER.SEQ" {
		t.Errorf("path = %q, want USER.SEQ", n.Path)
	}

	m, err := locate(ctx, ds.Provider, "P1", "USER.PDS(MEM1)")
	if err != nil {
		t.Fatalf("locate member: %v", err)
	}
	if m.Path != "USER.PDS(MEM1)" {
		t.Errorf("path = %q, want USER.PDS(MEM1)", m.Path)
	}
	if len(ds.Sessions()) != 1 {
		t.Errorf("sessions = %d, want 1", len(ds.Sessions()))
	}
}

func TestLocateMissing(t *testing.T) {
	ds := newDatasetTree(t)
	if _, err := locate(context.Background(), ds.Provider, "P1", "USER.NOPE"); err == nil {
		t.Error("expected error for missing data set")
	}
}

func TestSessionForReusesExisting(t *testing.T) {
	ctx := context.Background()
	ds := newDatasetTree(t)

	first, err := sessionFor(ctx, ds.Provider, "P1")
	if err != nil {
		t.Fatalf("sessionFor: %v", err)
	}
	second, err := sessionFor(ctx, ds.Provider, "P1")
	if err != nil {
		t.Fatalf("sessionFor: %v", err)
	}
	if first != second {
		t.Error("second call should return the existing session")
	}
}

func TestSearchPatternFor(t *testing.T) {
	tests := []struct {
		schema models.Schema
		target string
		want   string
	}{
		{models.SchemaDatasets, "USER.PDS(MEM1)", "USER.PDS"},
		{models.SchemaDatasets, "USER.SEQ", "USER.SEQ"},
		{models.SchemaUSS, "/u/user/a.txt", "/u/user"},
		{models.SchemaUSS, "/", "/"},
		{models.SchemaJobs, "JOB00123", "*"},
	}
	for _, tt := range tests {
		if got := searchPatternFor(tt.schema, tt.target); got != tt.want {
			t.Errorf("searchPatternFor(%s, %q) = %q, want %q", tt.schema, tt.target, got, tt.want)
		}
	}
}
