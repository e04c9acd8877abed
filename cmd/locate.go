package cmd

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/tree"
)

// sessionFor returns the session root for profile, adding it when missing
func sessionFor(ctx context.Context, p *tree.Provider, profile string) (*models.Node, error) {
	if n := p.SessionByLabel(profile); n != nil {
		return n, nil
	}
	return p.AddSession(ctx, profile)
}

// searchPatternFor is the session search that lists the resource at target
func searchPatternFor(schema models.Schema, target string) string {
	switch schema {
	case models.SchemaUSS:
		if target == "/" {
			return "/"
		}
		return path.Dir(target)
	case models.SchemaJobs:
		return "*"
	default:
		if i := strings.IndexByte(target, '('); i >= 0 {
			return target[:i]
		}
		return target
	}
}

// locate finds the node for target below profile's session, searching and
// expanding as the user would
func locate(ctx context.Context, p *tree.Provider, profile, target string) (*models.Node, error) {
	session, err := sessionFor(ctx, p, profile)
	if err != nil {
		return nil, err
	}
	if p.Schema() == models.SchemaDatasets {
		target = strings.ToUpper(target)
	}
	if err := p.Search(ctx, session, searchPatternFor(p.Schema(), target)); err != nil {
		return nil, err
	}
	children, err := p.GetChildren(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Path == target {
			return c, nil
		}
		if strings.HasPrefix(target, c.Path+"(") {
			members, err := p.GetChildren(ctx, c)
			if err != nil {
				return nil, err
			}
			for _, m := range members {
				if m.Path == target {
					return m, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%s not found for profile %s", target, profile)
}

// findFavorite returns the favorite of profile whose path or label is target
func findFavorite(p *tree.Provider, profile, target string) *models.Node {
	for _, g := range p.FavoritesRoot().Children {
		if g.Label != profile {
			continue
		}
		for _, f := range g.Children {
			if f.Path == target || f.Label == target || strings.EqualFold(f.Path, target) {
				return f
			}
		}
	}
	return nil
}
