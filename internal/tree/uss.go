package tree

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/remote"
)

// USSTree is the Unix System Services file tree
type USSTree struct {
	*Provider
}

// NewUSSTree builds the USS tree from the stored sessions and favorites
func NewUSSTree(ctx context.Context, deps Deps) (*USSTree, error) {
	t := &USSTree{Provider: newProvider(models.SchemaUSS, deps)}
	if err := t.init(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *USSTree) favoriteTarget(n *models.Node) (*models.Node, error) {
	return n, nil
}

// favoriteLabel is the full path, so favorites from different directories stay apart
func (t *USSTree) favoriteLabel(n *models.Node) string {
	return n.Path
}

func (t *USSTree) favoritePath(f Favorite) string {
	return f.Label
}

func (t *USSTree) renamedPath(n *models.Node, newName string) (string, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return "", errors.New("enter a new name")
	}
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %s", name)
	}
	return path.Join(path.Dir(n.Path), name), nil
}

func (t *USSTree) childLabel(_ *models.Node, e remote.Entry) string {
	if e.Label != "" {
		return e.Label
	}
	return path.Base(e.Path)
}

func (t *USSTree) normalizeSearch(pattern string) (string, error) {
	pattern = strings.TrimSpace(pattern)
	if !strings.HasPrefix(pattern, "/") {
		return "", errors.New("enter an absolute USS path")
	}
	return path.Clean(pattern), nil
}

func (t *USSTree) tracksFileHistory() bool { return true }
