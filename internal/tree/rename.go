package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/remote"
)

func renamedEntry(n *models.Node) remote.Entry {
	return remote.Entry{Path: n.Path, Tag: n.Tag.Base}
}

// Rename renames the resource behind n. The remote rename runs first; only
// when it succeeds are n and its loaded mirror updated and the favorites
// persisted.
func (p *Provider) Rename(ctx context.Context, n *models.Node, newName string) error {
	if n.Path == "" || n.Kind == models.KindSession || n.IsSavedSearch() {
		return fmt.Errorf("%w: %s cannot be renamed", ErrValidation, n.Label)
	}
	newPath, err := p.kind.renamedPath(n, newName)
	if err != nil {
		p.host.ShowWarning(err.Error())
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if newPath == n.Path {
		return nil
	}
	if parent := p.index.Get(n.Parent); parent != nil {
		for _, sib := range parent.Children {
			if sib != n && sib.Path == newPath {
				p.host.ShowWarning(newPath + " already exists")
				return fmt.Errorf("%w: %s already exists", ErrValidation, newPath)
			}
		}
	}

	if err := p.bind(ctx, n); err != nil {
		return err
	}
	api, err := p.apis.For(p.schema)
	if err != nil {
		return err
	}
	oldPath := n.Path
	if err := api.Rename(ctx, n.Session, oldPath, newPath); err != nil {
		return p.remoteError("rename "+n.Label, err)
	}

	favSide := p.inFavorites(n)
	var mirrored bool
	if favSide {
		mirrored = p.RenameNode(n.ProfileName, oldPath, newPath)
		p.applyRename(n, newPath)
	} else {
		mirrored = p.RenameFavorite(n, newPath)
		p.applyRename(n, newPath)
	}

	var moved bool
	if n.Collapsible != models.CollapsibleNone {
		moved = p.moveDescendants(n.ProfileName, oldPath, newPath)
	}

	if p.kind.tracksFileHistory() {
		if err := p.filters.RemoveFileHistory(ctx, FileHistoryEntry(n.ProfileName, oldPath)); err != nil {
			return err
		}
	}
	if favSide || mirrored || moved {
		if err := p.persistFavorites(ctx); err != nil {
			return err
		}
	}
	p.fire(nil)
	return nil
}

// descendantPath maps p below oldPath to the same place below newPath.
// USS paths nest with "/", data set members with "(".
func descendantPath(p, oldPath, newPath string) (string, bool) {
	for _, sep := range []string{"/", "("} {
		if strings.HasPrefix(p, oldPath+sep) {
			return newPath + strings.TrimPrefix(p, oldPath), true
		}
	}
	return "", false
}

// moveDescendants rewrites the loaded nodes of profile that lived below a
// renamed container, on the session side and in the favorites. It reports
// whether a stored favorite changed.
func (p *Provider) moveDescendants(profile, oldPath, newPath string) bool {
	var walk func(n *models.Node)
	walk = func(n *models.Node) {
		if moved, ok := descendantPath(n.Path, oldPath, newPath); ok {
			n.Path = moved
			n.Tooltip = moved
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if s := p.SessionByLabel(profile); s != nil {
		for _, c := range s.Children {
			walk(c)
		}
	}

	g := p.group(profile)
	if g == nil {
		return false
	}
	changed := false
	for _, c := range g.Children {
		if moved, ok := descendantPath(c.Path, oldPath, newPath); ok {
			c.Path = moved
			c.Tooltip = moved
			c.Label = p.kind.favoriteLabel(c)
			changed = true
		}
		for _, d := range c.Children {
			walk(d)
		}
	}
	if changed {
		sortNodes(g.Children)
	}
	return changed
}

// DeleteResource deletes the resource behind n after confirmation and
// removes it from both sides of the tree
func (p *Provider) DeleteResource(ctx context.Context, n *models.Node, confirm bool) error {
	if n.Path == "" || n.Kind == models.KindSession || n.IsSavedSearch() {
		return fmt.Errorf("%w: %s cannot be deleted", ErrValidation, n.Label)
	}
	if confirm {
		ok, err := p.host.Confirm(ctx, fmt.Sprintf("Delete %s?", n.Path))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := p.bind(ctx, n); err != nil {
		return err
	}
	api, err := p.apis.For(p.schema)
	if err != nil {
		return err
	}
	if err := api.Delete(ctx, n.Session, n.Path); err != nil {
		return p.remoteError("delete "+n.Label, err)
	}

	var fav, original *models.Node
	if p.inFavorites(n) {
		fav, original = n, p.FindNonFavoritedNode(n)
	} else {
		fav, original = p.FindFavoritedNode(n), n
	}
	if original != nil {
		if parent := p.index.Get(original.Parent); parent != nil {
			p.index.Detach(parent, original)
		}
	}

	favoritesChanged := false
	if fav != nil {
		if parent := p.index.Get(fav.Parent); parent != nil {
			if parent.Kind == models.KindFavoriteGroup {
				p.removeFromGroup(parent, fav.Label, fav.Tag)
				if len(parent.Children) == 0 {
					p.pruneGroup(parent.Label)
				}
				favoritesChanged = true
			} else {
				p.index.Detach(parent, fav)
			}
		}
	}

	if p.kind.tracksFileHistory() {
		if err := p.filters.RemoveFileHistory(ctx, FileHistoryEntry(n.ProfileName, n.Path)); err != nil {
			return err
		}
	}
	if favoritesChanged {
		if err := p.persistFavorites(ctx); err != nil {
			return err
		}
	}
	p.fire(nil)
	return nil
}
