// Package tree implements the data set, USS and job trees: session roots,
// the favorites forest mirrored from persisted settings, and the operations
// that keep both sides consistent.
package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/marcus/mfx/internal/filters"
	"github.com/marcus/mfx/internal/host"
	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/profiles"
	"github.com/marcus/mfx/internal/remote"
)

// Deps are the collaborators shared by all trees
type Deps struct {
	Filters  *filters.Manager
	Profiles profiles.Resolver
	APIs     *remote.Registry
	Host     host.Host
	// Trees is the cross-tree registry; the new tree registers itself
	Trees *Registry
}

// schemaKind holds the behavior that differs between the tree schemas
type schemaKind interface {
	// favoriteTarget returns the node favorited when the user favorites n
	favoriteTarget(n *models.Node) (*models.Node, error)
	// favoriteLabel is the label stored for a favorited resource
	favoriteLabel(n *models.Node) string
	// favoritePath recovers the resource path from a stored favorite
	favoritePath(f Favorite) string
	// renamedPath validates newName and returns the resource's new path
	renamedPath(n *models.Node, newName string) (string, error)
	// childLabel is the label a listed resource gets below parent
	childLabel(parent *models.Node, e remote.Entry) string
	normalizeSearch(pattern string) (string, error)
	tracksFileHistory() bool
}

// TreeItem is what the host renders for a node
type TreeItem struct {
	ID           models.NodeID
	Label        string
	Tooltip      string
	ContextValue string
	Icon         models.Icon
	Collapsible  models.CollapsibleState
}

// Provider carries the node lifecycle shared by the three trees. It is not
// safe for concurrent use; callers serialize commands.
type Provider struct {
	schema   models.Schema
	kind     schemaKind
	filters  *filters.Manager
	profiles profiles.Resolver
	apis     *remote.Registry
	host     host.Host
	trees    *Registry
	changes  *host.Emitter

	index     *models.NodeIndex
	favorites *models.Node
	// sessions holds the favorites root at index 0, then the session roots
	sessions []*models.Node

	validProfileState models.ValidationState
}

func newProvider(schema models.Schema, deps Deps) *Provider {
	p := &Provider{
		schema:   schema,
		filters:  deps.Filters,
		profiles: deps.Profiles,
		apis:     deps.APIs,
		host:     deps.Host,
		trees:    deps.Trees,
		changes:  host.NewEmitter(),
		index:    models.NewNodeIndex(),
	}
	p.favorites = models.NewNode(models.NodeOptions{
		Kind:  models.KindFavoritesRoot,
		Label: "Favorites",
		Tag:   models.ContextTag{Base: models.TagFavorites},
	})
	p.index.Add(p.favorites)
	p.sessions = []*models.Node{p.favorites}
	return p
}

// init hydrates favorites and the persisted session list
func (p *Provider) init(ctx context.Context, kind schemaKind) error {
	p.kind = kind
	if err := p.LoadFavorites(ctx); err != nil {
		return err
	}
	for _, name := range p.filters.GetSessions() {
		if _, err := p.addSession(ctx, name, false); err != nil {
			slog.Debug("tree: skipping stored session", "schema", p.schema, "session", name, "err", err)
		}
	}
	if p.trees != nil {
		p.trees.Register(p)
	}
	return nil
}

// Schema returns the tree's schema
func (p *Provider) Schema() models.Schema { return p.schema }

// Filters returns the tree's persistent filter manager
func (p *Provider) Filters() *filters.Manager { return p.filters }

// ValidProfileState returns the result of the last profile check
func (p *Provider) ValidProfileState() models.ValidationState { return p.validProfileState }

// FavoritesRoot returns the favorites root node
func (p *Provider) FavoritesRoot() *models.Node { return p.favorites }

// Node returns the indexed node for id, or nil
func (p *Provider) Node(id models.NodeID) *models.Node { return p.index.Get(id) }

// Parent returns n's parent, or nil for top-level nodes
func (p *Provider) Parent(n *models.Node) *models.Node { return p.index.Get(n.Parent) }

// Subscribe registers a change listener
func (p *Provider) Subscribe(l host.Listener) func() { return p.changes.Subscribe(l) }

func (p *Provider) fire(n *models.Node) { p.changes.Fire(n) }

// Roots returns the favorites root followed by the session roots
func (p *Provider) Roots() []*models.Node {
	out := make([]*models.Node, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// Sessions returns the session roots without the favorites root
func (p *Provider) Sessions() []*models.Node {
	out := make([]*models.Node, len(p.sessions)-1)
	copy(out, p.sessions[1:])
	return out
}

// SessionByLabel returns the session root for a profile, or nil
func (p *Provider) SessionByLabel(label string) *models.Node {
	for _, s := range p.sessions[1:] {
		if s.Label == label {
			return s
		}
	}
	return nil
}

// GetTreeItem returns the rendering of n
func (p *Provider) GetTreeItem(n *models.Node) TreeItem {
	return TreeItem{
		ID:           n.ID,
		Label:        n.Label,
		Tooltip:      n.Tooltip,
		ContextValue: n.ContextValue(),
		Icon:         n.Icon,
		Collapsible:  n.Collapsible,
	}
}

// GetChildren returns the children of n, or the roots when n is nil.
// Favorite groups bind their profile and session on first expansion;
// other containers are listed through the remote API when dirty.
func (p *Provider) GetChildren(ctx context.Context, n *models.Node) ([]*models.Node, error) {
	switch {
	case n == nil:
		return p.Roots(), nil
	case n.Kind == models.KindFavoritesRoot:
		return append([]*models.Node(nil), n.Children...), nil
	case n.Kind == models.KindFavoriteGroup:
		if err := p.bindGroup(ctx, n); err != nil {
			return nil, err
		}
		return append([]*models.Node(nil), n.Children...), nil
	case n.Collapsible == models.CollapsibleNone:
		return nil, nil
	}

	if !n.Dirty {
		return append([]*models.Node(nil), n.Children...), nil
	}
	if err := p.bind(ctx, n); err != nil {
		return nil, err
	}
	api, err := p.apis.For(p.schema)
	if err != nil {
		return nil, err
	}

	q := remote.Query{Path: n.Path}
	if n.IsSessionRoot() || n.IsSavedSearch() {
		if n.Pattern == "" {
			n.Dirty = false
			return nil, nil
		}
		q = remote.Query{Pattern: n.Pattern}
	}
	entries, err := api.List(ctx, n.Session, q)
	if err != nil {
		return nil, p.remoteError("list "+n.Label, err)
	}

	existing := make(map[string]*models.Node, len(n.Children))
	for _, c := range n.Children {
		existing[c.Path] = c
	}
	children := make([]*models.Node, 0, len(entries))
	for _, e := range entries {
		label := p.kind.childLabel(n, e)
		if c, ok := existing[e.Path]; ok && c.Tag.Base == e.Tag {
			c.Label = label
			delete(existing, e.Path)
			children = append(children, c)
			continue
		}
		children = append(children, models.NewNode(models.NodeOptions{
			Kind:        models.KindForBase(e.Tag),
			Label:       label,
			Path:        e.Path,
			Tag:         models.ContextTag{Base: e.Tag},
			ProfileName: n.ProfileName,
			Profile:     n.Profile,
			Session:     n.Session,
		}))
	}
	for _, stale := range existing {
		p.index.Remove(stale)
	}
	n.Children = nil
	p.index.SetChildren(n, children)
	n.Dirty = false
	return append([]*models.Node(nil), children...), nil
}

// bind resolves profile and session for n when missing
func (p *Provider) bind(ctx context.Context, n *models.Node) error {
	if n.Profile == nil {
		prof, err := p.profiles.LoadNamedProfile(ctx, n.ProfileName, "")
		if err != nil {
			return fmt.Errorf("load profile %s: %w", n.ProfileName, err)
		}
		n.Profile = prof
	}
	if n.Session == nil {
		api, err := p.apis.For(p.schema)
		if err != nil {
			return err
		}
		sess, err := api.Session(ctx, n.Profile)
		if err != nil {
			return p.remoteError("open session "+n.ProfileName, err)
		}
		n.Session = sess
	}
	return nil
}

// bindGroup binds a favorite group once and hands its handles to children
// that have none yet
func (p *Provider) bindGroup(ctx context.Context, g *models.Node) error {
	if err := p.bind(ctx, g); err != nil {
		return err
	}
	for _, c := range g.Children {
		if c.Profile == nil {
			c.Profile = g.Profile
		}
		if c.Session == nil {
			c.Session = g.Session
		}
	}
	return nil
}

// FlipState records an expand or collapse. Collapsing marks the node dirty;
// only expanding fires a change.
func (p *Provider) FlipState(n *models.Node, open bool) {
	if open {
		n.Collapsible = models.Expanded
	} else {
		n.Collapsible = models.Collapsed
		n.Dirty = true
	}
	n.Icon = models.IconFor(n, open)
	if open {
		p.fire(n)
	}
}

// CheckCurrentProfile validates the profile of n and returns the tree's
// new validation state. Only session roots have their tag and icon updated.
func (p *Provider) CheckCurrentProfile(ctx context.Context, n *models.Node) (models.ValidationState, error) {
	prof := n.Profile
	if prof == nil {
		loaded, err := p.profiles.LoadNamedProfile(ctx, n.ProfileName, "")
		if err != nil {
			return p.validProfileState, fmt.Errorf("load profile %s: %w", n.ProfileName, err)
		}
		prof = loaded
	}
	st, err := p.profiles.CheckCurrentProfile(ctx, prof)
	if err != nil {
		return p.validProfileState, err
	}

	switch st.Status {
	case models.StatusInactive:
		p.validProfileState = models.Invalid
		p.host.ShowWarning(fmt.Sprintf("Profile %s is inactive. Check the connection details and try again.", st.Name))
	case models.StatusActive:
		p.validProfileState = models.Valid
	default:
		st.Status = models.StatusUnverified
		p.validProfileState = models.Unverified
	}
	if n.Kind == models.KindSession {
		n.Tag.Status = st.Status
		n.Icon = models.IconFor(n, n.Collapsible == models.Expanded)
	}
	p.fire(nil)
	return p.validProfileState, nil
}

// SSOLogin logs the node's profile in and refreshes the owning schema
func (p *Provider) SSOLogin(ctx context.Context, n *models.Node) error {
	return p.sso(ctx, n, p.profiles.SSOLogin)
}

// SSOLogout logs the node's profile out and refreshes the owning schema
func (p *Provider) SSOLogout(ctx context.Context, n *models.Node) error {
	return p.sso(ctx, n, p.profiles.SSOLogout)
}

func (p *Provider) sso(ctx context.Context, n *models.Node, fn func(context.Context, *models.Profile) error) error {
	prof := n.Profile
	if prof == nil {
		loaded, err := p.profiles.LoadNamedProfile(ctx, n.ProfileName, "")
		if err != nil {
			return fmt.Errorf("load profile %s: %w", n.ProfileName, err)
		}
		prof = loaded
		n.Profile = loaded
	}
	if err := fn(ctx, prof); err != nil {
		return err
	}
	if n.Session != nil {
		n.Session.Rebind(prof)
	}
	return p.host.ExecuteCommand(ctx, refreshCommandFor(n.Tag))
}

func refreshCommandFor(tag models.ContextTag) string {
	switch tag.Base {
	case models.TagDSSession:
		return host.CommandRefreshDatasets
	case models.TagUSSSession:
		return host.CommandRefreshUSS
	default:
		return host.CommandRefreshJobs
	}
}

func schemaForSession(tag models.ContextTag) models.Schema {
	switch tag.Base {
	case models.TagUSSSession:
		return models.SchemaUSS
	case models.TagJobSession:
		return models.SchemaJobs
	default:
		return models.SchemaDatasets
	}
}

// EditSession edits the connection details of n's profile. When n has a
// session its fields are rebound in place; otherwise the session root is
// recreated in the tree that owns it.
func (p *Provider) EditSession(ctx context.Context, n *models.Node) error {
	prof := n.Profile
	if prof == nil {
		loaded, err := p.profiles.LoadNamedProfile(ctx, n.ProfileName, "")
		if err != nil {
			return fmt.Errorf("load profile %s: %w", n.ProfileName, err)
		}
		prof = loaded
	}
	updated, err := p.profiles.EditSession(ctx, prof, n.ProfileName)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	target := n
	if n.Session != nil {
		n.Profile = updated
		n.Session.Rebind(updated)
		rebindDescendants(n, updated)
	} else {
		owner := p
		if p.trees != nil {
			if o := p.trees.Get(schemaForSession(n.Tag)); o != nil {
				owner = o
			}
		}
		if err := owner.DeleteSession(ctx, n); err != nil {
			return err
		}
		created, err := owner.addSession(ctx, updated.Name, true)
		if err != nil {
			return err
		}
		target = created
	}

	p.fire(nil)
	_, err = p.CheckCurrentProfile(ctx, target)
	return err
}

func rebindDescendants(n *models.Node, prof *models.Profile) {
	for _, c := range n.Children {
		c.Profile = prof
		rebindDescendants(c, prof)
	}
}

// RefreshHomeProfileContext marks a session whose profile comes from the
// global team config
func (p *Provider) RefreshHomeProfileContext(ctx context.Context, n *models.Node) error {
	if n.Tag.Home || !p.profiles.UsingTeamConfig() {
		return nil
	}
	global, err := p.profiles.IsGlobalProfile(ctx, n.ProfileName)
	if err != nil {
		return err
	}
	if global {
		n.Tag.Home = true
	}
	return nil
}

// AddSession adds a session root for the named profile, or the default
// profile when name is empty. Adding an existing session is a no-op.
func (p *Provider) AddSession(ctx context.Context, name string) (*models.Node, error) {
	n, err := p.addSession(ctx, name, true)
	if err != nil {
		return nil, err
	}
	p.fire(nil)
	return n, nil
}

func (p *Provider) addSession(ctx context.Context, name string, persist bool) (*models.Node, error) {
	var prof *models.Profile
	var err error
	if name == "" {
		prof, err = p.profiles.DefaultProfile(ctx, "")
	} else {
		prof, err = p.profiles.LoadNamedProfile(ctx, name, "")
	}
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) || errors.Is(err, profiles.ErrNoDefault) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	if existing := p.SessionByLabel(prof.Name); existing != nil {
		return existing, nil
	}

	api, err := p.apis.For(p.schema)
	if err != nil {
		return nil, err
	}
	sess, err := api.Session(ctx, prof)
	if err != nil {
		return nil, p.remoteError("open session "+prof.Name, err)
	}

	n := models.NewNode(models.NodeOptions{
		Kind:        models.KindSession,
		Label:       prof.Name,
		Tag:         models.ContextTag{Base: models.SessionTag(p.schema)},
		ProfileName: prof.Name,
		Profile:     prof,
		Session:     sess,
	})
	if err := p.RefreshHomeProfileContext(ctx, n); err != nil {
		slog.Debug("tree: home context", "session", prof.Name, "err", err)
	}
	p.sessions = append(p.sessions, n)
	p.index.Add(n)

	if persist {
		if err := p.filters.AddSession(ctx, prof.Name); err != nil {
			return n, err
		}
	}
	return n, nil
}

// DeleteSession removes a session root from the tree and the stored list
func (p *Provider) DeleteSession(ctx context.Context, n *models.Node) error {
	for i, s := range p.sessions {
		if i == 0 || s != n {
			continue
		}
		p.sessions = append(p.sessions[:i:i], p.sessions[i+1:]...)
		p.index.Remove(n)
		if err := p.filters.RemoveSession(ctx, n.Label); err != nil {
			return err
		}
		p.fire(nil)
		return nil
	}
	return nil
}

// DeleteSessionByLabel removes the session root with the given label
func (p *Provider) DeleteSessionByLabel(ctx context.Context, label string) error {
	n := p.SessionByLabel(label)
	if n == nil {
		return nil
	}
	return p.DeleteSession(ctx, n)
}

// Search sets the search pattern of a session root and records it in the
// search history
func (p *Provider) Search(ctx context.Context, n *models.Node, pattern string) error {
	if n.Kind != models.KindSession {
		return fmt.Errorf("%w: search needs a session", ErrValidation)
	}
	normalized, err := p.kind.normalizeSearch(pattern)
	if err != nil {
		p.host.ShowWarning(err.Error())
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	n.Pattern = normalized
	n.Tooltip = normalized
	n.Dirty = true
	n.Collapsible = models.Expanded
	n.Icon = models.IconFor(n, true)
	if err := p.filters.AddSearchHistory(ctx, normalized); err != nil {
		return err
	}
	p.fire(n)
	return nil
}

// RefreshAll reloads favorites and marks every session dirty
func (p *Provider) RefreshAll(ctx context.Context) error {
	for _, s := range p.sessions[1:] {
		s.Dirty = true
	}
	if err := p.LoadFavorites(ctx); err != nil {
		return err
	}
	p.fire(nil)
	return nil
}

// OpenFile reads a leaf's contents and records it in the file history
func (p *Provider) OpenFile(ctx context.Context, n *models.Node) ([]byte, error) {
	if n.Collapsible != models.CollapsibleNone {
		return nil, fmt.Errorf("%w: %s is not a file", ErrValidation, n.Label)
	}
	if err := p.bind(ctx, n); err != nil {
		return nil, err
	}
	api, err := p.apis.For(p.schema)
	if err != nil {
		return nil, err
	}
	data, err := api.GetContents(ctx, n.Session, n.Path)
	if err != nil {
		return nil, p.remoteError("open "+n.Label, err)
	}
	if p.kind.tracksFileHistory() {
		if err := p.filters.AddFileHistory(ctx, FileHistoryEntry(n.ProfileName, n.Path)); err != nil {
			return data, err
		}
	}
	return data, nil
}

// FileHistoryEntry is the file history form of a resource
func FileHistoryEntry(profile, path string) string {
	return "[" + profile + "]: " + path
}

func (p *Provider) remoteError(op string, err error) error {
	p.host.ShowError(fmt.Sprintf("%s: %v", op, err))
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}

// inFavorites reports whether n sits below the favorites root
func (p *Provider) inFavorites(n *models.Node) bool {
	for cur := n; cur != nil; cur = p.index.Get(cur.Parent) {
		if cur == p.favorites {
			return true
		}
	}
	return false
}

// sessionOf returns the root a node hangs from (session root or favorite group)
func (p *Provider) sessionOf(n *models.Node) *models.Node {
	cur := n
	for {
		parent := p.index.Get(cur.Parent)
		if parent == nil || parent == p.favorites {
			return cur
		}
		cur = parent
	}
}

func sortNodes(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Tag.Base != nodes[j].Tag.Base {
			return nodes[i].Tag.Base < nodes[j].Tag.Base
		}
		return nodes[i].Label < nodes[j].Label
	})
}
