package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/remote"
)

// JobTree is the job tree
type JobTree struct {
	*Provider
}

// NewJobTree builds the job tree from the stored sessions and favorites
func NewJobTree(ctx context.Context, deps Deps) (*JobTree, error) {
	t := &JobTree{Provider: newProvider(models.SchemaJobs, deps)}
	if err := t.init(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Submit submits JCL through the session's API and relists the session
func (t *JobTree) Submit(ctx context.Context, session *models.Node, jcl []byte) (string, error) {
	if session.Kind != models.KindSession {
		return "", fmt.Errorf("%w: submit needs a session", ErrValidation)
	}
	if err := t.bind(ctx, session); err != nil {
		return "", err
	}
	api, err := t.apis.For(t.schema)
	if err != nil {
		return "", err
	}
	sub, ok := api.(remote.Submitter)
	if !ok {
		return "", fmt.Errorf("%w: %s cannot submit jobs", ErrValidation, t.schema)
	}
	id, err := sub.Submit(ctx, session.Session, jcl)
	if err != nil {
		return "", t.remoteError("submit", err)
	}
	session.Dirty = true
	t.fire(session)
	return id, nil
}

func (t *JobTree) favoriteTarget(n *models.Node) (*models.Node, error) {
	if n.Tag.Base != models.TagJob {
		return nil, errors.New("only jobs and searches can be favorited")
	}
	return n, nil
}

func (t *JobTree) favoriteLabel(n *models.Node) string {
	return n.Label
}

// favoritePath takes the job ID from a "NAME(JOBID)" label
func (t *JobTree) favoritePath(f Favorite) string {
	open := strings.LastIndexByte(f.Label, '(')
	if open < 0 || !strings.HasSuffix(f.Label, ")") {
		return f.Label
	}
	return f.Label[open+1 : len(f.Label)-1]
}

func (t *JobTree) renamedPath(*models.Node, string) (string, error) {
	return "", errors.New("jobs cannot be renamed")
}

func (t *JobTree) childLabel(_ *models.Node, e remote.Entry) string {
	if e.Label != "" {
		return e.Label
	}
	if i := strings.IndexByte(e.Path, '/'); i >= 0 {
		return e.Path[i+1:]
	}
	return e.Path
}

func (t *JobTree) normalizeSearch(pattern string) (string, error) {
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	if pattern == "" {
		pattern = "*"
	}
	return pattern, nil
}

func (t *JobTree) tracksFileHistory() bool { return false }
