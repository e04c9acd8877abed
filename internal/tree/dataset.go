package tree

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/remote"
)

var (
	qualifierRe = regexp.MustCompile(`^[A-Z#@$][A-Z0-9#@$-]{0,7}$`)
	memberRe    = regexp.MustCompile(`^[A-Z#@$][A-Z0-9#@$]{0,7}$`)
)

// DatasetTree is the data set tree
type DatasetTree struct {
	*Provider
}

// NewDatasetTree builds the data set tree from the stored sessions and favorites
func NewDatasetTree(ctx context.Context, deps Deps) (*DatasetTree, error) {
	t := &DatasetTree{Provider: newProvider(models.SchemaDatasets, deps)}
	if err := t.init(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidDatasetName reports whether name is a well-formed data set name
func ValidDatasetName(name string) bool {
	if name == "" || len(name) > 44 {
		return false
	}
	for _, q := range strings.Split(name, ".") {
		if !qualifierRe.MatchString(q) {
			return false
		}
	}
	return true
}

func memberParent(path string) string {
	if i := strings.IndexByte(path, '('); i >= 0 {
		return path[:i]
	}
	return path
}

// favoriteTarget favorites the owning PDS when a member is picked
func (t *DatasetTree) favoriteTarget(n *models.Node) (*models.Node, error) {
	if n.Tag.Base != models.TagMember {
		return n, nil
	}
	parent := t.Parent(n)
	if parent == nil || parent.Tag.Base != models.TagPDS {
		return nil, fmt.Errorf("member %s has no loaded data set", n.Label)
	}
	return parent, nil
}

func (t *DatasetTree) favoriteLabel(n *models.Node) string {
	return n.Path
}

func (t *DatasetTree) favoritePath(f Favorite) string {
	return f.Label
}

func (t *DatasetTree) renamedPath(n *models.Node, newName string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(newName))
	if name == "" {
		return "", errors.New("enter a new name")
	}
	if n.Tag.Base == models.TagMember {
		if !memberRe.MatchString(name) {
			return "", fmt.Errorf("invalid member name %s", name)
		}
		return memberParent(n.Path) + "(" + name + ")", nil
	}
	if !ValidDatasetName(name) {
		return "", fmt.Errorf("invalid data set name %s", name)
	}
	return name, nil
}

func (t *DatasetTree) childLabel(_ *models.Node, e remote.Entry) string {
	if e.Label != "" {
		return e.Label
	}
	if i := strings.IndexByte(e.Path, '('); i >= 0 {
		return strings.TrimSuffix(e.Path[i+1:], ")")
	}
	return e.Path
}

func (t *DatasetTree) normalizeSearch(pattern string) (string, error) {
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	if pattern == "" {
		return "", errors.New("enter a data set search pattern")
	}
	return pattern, nil
}

func (t *DatasetTree) tracksFileHistory() bool { return true }
