package tree

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/marcus/mfx/internal/models"
)

// LoadFavorites rebuilds the favorites forest from the stored entries.
// Profiles and sessions are bound later, when a group is expanded.
func (p *Provider) LoadFavorites(ctx context.Context) error {
	lines, err := p.filters.ReadFavorites(ctx)
	if err != nil {
		return err
	}
	p.index.SetChildren(p.favorites, nil)

	var bad []string
	for _, line := range lines {
		f, err := DecodeFavorite(line)
		if err != nil {
			slog.Debug("tree: bad favorite", "schema", p.schema, "err", err)
			bad = append(bad, line)
			continue
		}
		group := p.ensureGroup(f.Profile)
		if p.findInGroup(group, f.Label, f.Tag) != nil {
			continue
		}
		p.index.Adopt(group, p.favoriteFromEntry(f))
	}
	for _, g := range p.favorites.Children {
		sortNodes(g.Children)
	}
	p.sortGroups()
	if len(bad) > 0 {
		p.host.ShowWarning(fmt.Sprintf("Skipped %d unreadable favorite(s): %s", len(bad), strings.Join(bad, ", ")))
	}
	return nil
}

func (p *Provider) favoriteFromEntry(f Favorite) *models.Node {
	opts := models.NodeOptions{
		Kind:        models.KindForBase(f.Tag.Base),
		Label:       f.Label,
		Tag:         f.Tag,
		ProfileName: f.Profile,
	}
	if models.IsSessionBase(f.Tag.Base) {
		opts.Kind = models.KindResource
		n := models.NewNode(opts)
		n.Pattern = f.Label
		return n
	}
	opts.Path = p.kind.favoritePath(f)
	return models.NewNode(opts)
}

func (p *Provider) group(profile string) *models.Node {
	for _, g := range p.favorites.Children {
		if g.Label == profile {
			return g
		}
	}
	return nil
}

func (p *Provider) ensureGroup(profile string) *models.Node {
	if g := p.group(profile); g != nil {
		return g
	}
	g := models.NewNode(models.NodeOptions{
		Kind:        models.KindFavoriteGroup,
		Label:       profile,
		Tag:         models.ContextTag{Base: models.TagProfile},
		ProfileName: profile,
	})
	p.index.Adopt(p.favorites, g)
	return g
}

func (p *Provider) sortGroups() {
	sort.SliceStable(p.favorites.Children, func(i, j int) bool {
		return p.favorites.Children[i].Label < p.favorites.Children[j].Label
	})
}

func (p *Provider) findInGroup(g *models.Node, label string, tag models.ContextTag) *models.Node {
	for _, c := range g.Children {
		if c.Label == label && c.Tag.SameBase(tag) {
			return c
		}
	}
	return nil
}

// encodeFavorites flattens the forest into its stored form
func (p *Provider) encodeFavorites() []string {
	out := []string{}
	for _, g := range p.favorites.Children {
		for _, c := range g.Children {
			out = append(out, EncodeFavorite(g.Label, c.Label, c.Tag))
		}
	}
	return out
}

func (p *Provider) persistFavorites(ctx context.Context) error {
	return p.filters.UpdateFavorites(ctx, p.encodeFavorites())
}

// AddFavorite adds an independent favorite copy of n under its profile group
func (p *Provider) AddFavorite(ctx context.Context, n *models.Node) error {
	if p.inFavorites(n) {
		p.host.ShowInfo(n.Label + " is already a favorite")
		return nil
	}

	var fav *models.Node
	if n.Kind == models.KindSession {
		if n.Pattern == "" {
			p.host.ShowWarning("Search " + n.Label + " before adding it to favorites")
			return fmt.Errorf("%w: session %s has no search", ErrValidation, n.Label)
		}
		fav = models.NewNode(models.NodeOptions{
			Kind:        models.KindResource,
			Label:       n.Pattern,
			Tag:         n.Tag.AsFavorite(),
			ProfileName: n.ProfileName,
			Profile:     n.Profile,
			Session:     n.Session,
		})
		fav.Pattern = n.Pattern
	} else {
		target, err := p.kind.favoriteTarget(n)
		if err != nil {
			p.host.ShowWarning(err.Error())
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		fav = models.NewNode(models.NodeOptions{
			Kind:        target.Kind,
			Label:       p.kind.favoriteLabel(target),
			Path:        target.Path,
			Tag:         target.Tag.AsFavorite(),
			ProfileName: target.ProfileName,
			Profile:     target.Profile,
			Session:     target.Session,
		})
	}

	group := p.ensureGroup(fav.ProfileName)
	if p.findInGroup(group, fav.Label, fav.Tag) != nil {
		p.host.ShowInfo(fav.Label + " is already a favorite")
		return nil
	}
	if group.Profile == nil {
		group.Profile = fav.Profile
		group.Session = fav.Session
	}
	p.index.Adopt(group, fav)
	sortNodes(group.Children)
	p.sortGroups()

	if err := p.persistFavorites(ctx); err != nil {
		return err
	}
	p.fire(p.favorites)
	return nil
}

// RemoveFavorite removes the favorite for n, which may be the favorite
// itself or its session-side original. An emptied group is pruned.
func (p *Provider) RemoveFavorite(ctx context.Context, n *models.Node) error {
	fav := n
	if !p.inFavorites(n) || n.Kind == models.KindFavoriteGroup {
		lookup := n
		if n.Kind != models.KindSession {
			if target, err := p.kind.favoriteTarget(n); err == nil {
				lookup = target
			}
		}
		fav = p.FindFavoritedNode(lookup)
		if fav == nil {
			return nil
		}
	}
	// A descendant is removed through its favorite only when favoriting it
	// would have favorited that ancestor, as a member does its PDS. Results
	// listed under a saved search are not favorites of their own.
	if parent := p.index.Get(fav.Parent); parent != nil && parent.Kind != models.KindFavoriteGroup {
		top := p.sessionOf(fav)
		target, err := p.kind.favoriteTarget(fav)
		if err != nil || target != top {
			return nil
		}
		fav = top
	}

	group := p.index.Get(fav.Parent)
	if group == nil {
		return nil
	}
	p.removeFromGroup(group, fav.Label, fav.Tag)
	if len(group.Children) == 0 {
		p.pruneGroup(group.Label)
	}
	if err := p.persistFavorites(ctx); err != nil {
		return err
	}
	p.fire(p.favorites)
	return nil
}

func (p *Provider) removeFromGroup(g *models.Node, label string, tag models.ContextTag) {
	kept := g.Children[:0:0]
	for _, c := range g.Children {
		if c.Label == label && c.Tag.SameBase(tag) {
			p.index.Remove(c)
			continue
		}
		kept = append(kept, c)
	}
	g.Children = kept
}

func (p *Provider) pruneGroup(profile string) bool {
	g := p.group(profile)
	if g == nil {
		return false
	}
	return p.index.Detach(p.favorites, g)
}

// RemoveFavProfile removes a whole profile group. When the user picked the
// action directly they are asked to confirm first.
func (p *Provider) RemoveFavProfile(ctx context.Context, profile string, userSelected bool) error {
	if p.group(profile) == nil {
		return nil
	}
	if userSelected {
		ok, err := p.host.Confirm(ctx, fmt.Sprintf("Remove all favorites of profile %s?", profile))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	p.pruneGroup(profile)
	if err := p.persistFavorites(ctx); err != nil {
		return err
	}
	p.fire(p.favorites)
	return nil
}

// FindFavoritedNode returns the loaded favorite mirror of a session-side
// node, or nil
func (p *Provider) FindFavoritedNode(n *models.Node) *models.Node {
	g := p.group(n.ProfileName)
	if g == nil {
		return nil
	}
	if n.Kind == models.KindSession {
		return p.findInGroup(g, n.Pattern, n.Tag)
	}
	for _, c := range g.Children {
		if c.Path != "" && c.Path == n.Path && c.Tag.SameBase(n.Tag) {
			return c
		}
	}
	for _, c := range g.Children {
		if m := findByPath(c, n); m != nil {
			return m
		}
	}
	return nil
}

// FindNonFavoritedNode returns the loaded session-side original of a
// favorite, or nil
func (p *Provider) FindNonFavoritedNode(n *models.Node) *models.Node {
	s := p.SessionByLabel(n.ProfileName)
	if s == nil {
		return nil
	}
	if n.IsSavedSearch() {
		if s.Pattern == n.Pattern {
			return s
		}
		return nil
	}
	for _, c := range s.Children {
		if m := findByPath(c, n); m != nil {
			return m
		}
	}
	return nil
}

// findByPath walks root and its loaded descendants for a node with the
// same path and base context as want
func findByPath(root, want *models.Node) *models.Node {
	if root.Path != "" && root.Path == want.Path && root.Tag.SameBase(want.Tag) {
		return root
	}
	for _, c := range root.Children {
		if m := findByPath(c, want); m != nil {
			return m
		}
	}
	return nil
}

// RenameFavorite applies a rename to the loaded favorite mirror of n.
// It reports whether a mirror was found.
func (p *Provider) RenameFavorite(n *models.Node, newPath string) bool {
	fav := p.FindFavoritedNode(n)
	if fav == nil {
		return false
	}
	p.applyRename(fav, newPath)
	return true
}

// RenameNode applies a rename to the loaded session-side node of profile
// at oldPath. It reports whether the node was found.
func (p *Provider) RenameNode(profile, oldPath, newPath string) bool {
	s := p.SessionByLabel(profile)
	if s == nil {
		return false
	}
	var hit *models.Node
	for _, c := range s.Children {
		if hit = findPath(c, oldPath); hit != nil {
			break
		}
	}
	if hit == nil {
		return false
	}
	p.applyRename(hit, newPath)
	return true
}

func findPath(root *models.Node, path string) *models.Node {
	if root.Path == path {
		return root
	}
	for _, c := range root.Children {
		if m := findPath(c, path); m != nil {
			return m
		}
	}
	return nil
}

// applyRename updates a loaded node for its new path. Containers are marked
// dirty so their children are listed again under the new name.
func (p *Provider) applyRename(n *models.Node, newPath string) {
	n.Path = newPath
	if p.inFavorites(n) && p.index.Get(n.Parent) != nil && p.index.Get(n.Parent).Kind == models.KindFavoriteGroup {
		n.Label = p.kind.favoriteLabel(n)
	} else {
		parent := p.index.Get(n.Parent)
		if parent == nil {
			parent = n
		}
		n.Label = p.kind.childLabel(parent, renamedEntry(n))
	}
	n.Tooltip = newPath
	if n.Collapsible != models.CollapsibleNone {
		n.Dirty = true
	}
}
