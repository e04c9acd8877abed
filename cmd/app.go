package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marcus/mfx/internal/config"
	"github.com/marcus/mfx/internal/db"
	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/host"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/profiles"
	"github.com/marcus/mfx/internal/remote"
	"github.com/marcus/mfx/internal/settings"
	"github.com/marcus/mfx/internal/tree"
	"golang.org/x/sync/errgroup"
)

// app bundles the collaborators every tree command needs
type app struct {
	store    settings.Store
	files    *settings.FileStore
	sqlite   *db.DB
	host     host.Host
	profiles *profiles.TeamConfig
	apis     *remote.Registry
	trees    *tree.Registry

	datasets *tree.DatasetTree
	uss      *tree.USSTree
	jobs     *tree.JobTree
}

// openStore opens the settings backend selected in the config
func openStore(c *config.Config) (settings.Store, *settings.FileStore, *db.DB, error) {
	switch c.Storage.Backend {
	case config.BackendSQLite:
		d, err := db.Open(c.Storage.GlobalPath, c.Storage.WorkspacePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return d, nil, d, nil
	case config.BackendMemory:
		s := settings.NewMemoryStore()
		if c.Storage.WorkspacePath == "" {
			s.DisableWorkspace()
		}
		return s, nil, nil, nil
	default:
		fs := settings.NewFileStore(c.Storage.GlobalPath, c.Storage.WorkspacePath)
		return fs, fs, nil, nil
	}
}

// openRemote builds the resource API registry, seeded from the configured fixture
func openRemote(c *config.Config) (*remote.Registry, error) {
	if c.Remote.Fixture == "" {
		reg := remote.NewRegistry()
		for _, s := range models.AllSchemas {
			reg.Register(remote.NewMemory(s))
		}
		return reg, nil
	}
	backends, err := remote.LoadFixtureFile(c.Remote.Fixture)
	if err != nil {
		return nil, fmt.Errorf("load remote fixture: %w", err)
	}
	reg := remote.NewRegistry()
	for _, s := range models.AllSchemas {
		reg.Register(backends[s])
	}
	return reg, nil
}

// openApp wires the store, resolvers and all three trees. h may be nil for
// the terminal host.
func openApp(ctx context.Context, h host.Host) (*app, error) {
	store, files, sqlite, err := openStore(cfg)
	if err != nil {
		output.Error("open settings: %v", err)
		return nil, err
	}
	apis, err := openRemote(cfg)
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}

	term := host.NewTerminal()
	if h == nil {
		h = term
	}
	team := profiles.NewTeamConfig(cfg.Profiles.GlobalDir, cfg.Profiles.ProjectDir, term)
	team.Validate = cfg.AutomaticValidation()

	a := &app{
		store:    store,
		files:    files,
		sqlite:   sqlite,
		host:     h,
		profiles: team,
		apis:     apis,
		trees:    tree.NewRegistry(),
	}
	if err := a.buildTrees(ctx); err != nil {
		a.Close()
		output.Error("load trees: %v", err)
		return nil, err
	}

	if t, ok := h.(interface {
		Handle(string, host.CommandFunc)
	}); ok {
		a.handleRefresh(t.Handle)
	}
	return a, nil
}

// buildTrees constructs the three trees concurrently
func (a *app) buildTrees(ctx context.Context) error {
	opts := filters.Options{
		MaxSearchHistory: cfg.History.MaxSearch,
		MaxFileHistory:   cfg.History.MaxFile,
	}
	deps := func(ctx context.Context, s models.Schema) (tree.Deps, error) {
		fm, err := filters.New(ctx, a.store, s, opts)
		if err != nil {
			return tree.Deps{}, err
		}
		return tree.Deps{Filters: fm, Profiles: a.profiles, APIs: a.apis, Host: a.host, Trees: a.trees}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := deps(gctx, models.SchemaDatasets)
		if err != nil {
			return err
		}
		a.datasets, err = tree.NewDatasetTree(gctx, d)
		return err
	})
	g.Go(func() error {
		d, err := deps(gctx, models.SchemaUSS)
		if err != nil {
			return err
		}
		a.uss, err = tree.NewUSSTree(gctx, d)
		return err
	})
	g.Go(func() error {
		d, err := deps(gctx, models.SchemaJobs)
		if err != nil {
			return err
		}
		a.jobs, err = tree.NewJobTree(gctx, d)
		return err
	})
	return g.Wait()
}

// handleRefresh routes the per-tree refresh commands to RefreshAll
func (a *app) handleRefresh(handle func(string, host.CommandFunc)) {
	for _, p := range a.trees.All() {
		p := p
		handle(host.RefreshCommand(p.Schema()), func(ctx context.Context) error {
			slog.Debug("cmd: refresh", "schema", p.Schema())
			return p.RefreshAll(ctx)
		})
	}
	handle(host.CommandReload, func(ctx context.Context) error {
		a.profiles.Reload()
		for _, p := range a.trees.All() {
			if err := p.RefreshAll(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// provider returns the tree for schema
func (a *app) provider(s models.Schema) *tree.Provider {
	return a.trees.Get(s)
}

// Close releases the settings backend
func (a *app) Close() error {
	if a.sqlite != nil {
		return a.sqlite.Close()
	}
	return nil
}
