// Package browser is the interactive tree browser behind "mfx browse".
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/tree"
)

// Row is one visible node. Item is captured while the trees are locked so
// rendering never reads live nodes.
type Row struct {
	Node  *models.Node
	Depth int
	Item  tree.TreeItem
}

type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeRename
)

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 8

type rowsMsg struct {
	tree int
	rows []Row
	err  error
}

type opMsg struct {
	status string
	err    error
}

// ChangedMsg reports an external settings change
type ChangedMsg struct{}

// Model is the Bubble Tea model for the tree browser
type Model struct {
	ctx   context.Context
	mu    *sync.Mutex
	trees []*tree.Provider
	host  *Host
	keys  KeyMap

	// changes delivers external settings changes; nil disables watching
	changes <-chan struct{}

	Width  int
	Height int

	Active   int
	Rows     []Row
	Cursor   int
	Offset   int
	expanded map[models.NodeID]bool

	input  textinput.Model
	mode   inputMode
	target *models.Node

	Status   string
	Level    Level
	ShowHelp bool

	// Validate checks the profile when a session is expanded
	Validate bool
}

// Options configures NewModel
type Options struct {
	Host     *Host
	Changes  <-chan struct{}
	Validate bool
	// Lock serializes tree access with other users of the providers
	Lock *sync.Mutex
}

// NewModel creates a browser over trees, shown in the given order
func NewModel(ctx context.Context, trees []*tree.Provider, opts Options) Model {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 50

	mu := opts.Lock
	if mu == nil {
		mu = &sync.Mutex{}
	}
	h := opts.Host
	if h == nil {
		h = NewHost()
	}
	return Model{
		ctx:      ctx,
		mu:       mu,
		trees:    trees,
		host:     h,
		keys:     DefaultKeyMap(),
		changes:  opts.Changes,
		expanded: make(map[models.NodeID]bool),
		input:    in,
		Validate: opts.Validate,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)

	case rowsMsg:
		if msg.tree != m.Active {
			return m, nil
		}
		m.Rows = msg.rows
		m.clampCursor()
		m.applyMessages(msg.err)
		return m, nil

	case opMsg:
		if msg.status != "" {
			m.Status, m.Level = msg.status, LevelInfo
		}
		m.applyMessages(msg.err)
		return m, m.load()

	case ChangedMsg:
		return m, tea.Batch(m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			for _, t := range m.trees {
				if err := t.RefreshAll(ctx); err != nil {
					return "", err
				}
			}
			return "Settings changed on disk, reloaded", nil
		}), m.waitForChange())
	}
	return m, nil
}

// applyMessages shows the last host message, or err when there is none
func (m *Model) applyMessages(err error) {
	msgs := m.host.Drain()
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		m.Status, m.Level = last.Text, last.Level
	}
	if err != nil && len(msgs) == 0 {
		m.Status, m.Level = err.Error(), LevelError
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = !m.ShowHelp
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.Cursor++
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.Cursor--
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.NextTree):
		return m.switchTree(1)
	case key.Matches(msg, m.keys.PrevTree):
		return m.switchTree(len(m.trees) - 1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "Refreshed", p.RefreshAll(ctx)
		})
	}

	row, ok := m.selected()
	if !ok {
		return m, nil
	}
	n := row.Node

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if row.Item.Collapsible == models.CollapsibleNone {
			return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
				data, err := p.OpenFile(ctx, n)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Opened %s (%d bytes)", row.Item.Label, len(data)), nil
			})
		}
		open := !m.expanded[n.ID]
		m.expanded[n.ID] = open
		session := n.Kind == models.KindSession
		validate := m.Validate
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			p.FlipState(n, open)
			if open && session && validate {
				_, err := p.CheckCurrentProfile(ctx, n)
				return "", err
			}
			return "", nil
		})

	case key.Matches(msg, m.keys.Search):
		if n.Kind != models.KindSession {
			m.Status, m.Level = "Select a session to search", LevelWarning
			return m, nil
		}
		return m.startInput(modeSearch, n, "pattern: ", "")

	case key.Matches(msg, m.keys.Rename):
		return m.startInput(modeRename, n, "new name: ", row.Item.Label)

	case key.Matches(msg, m.keys.Favorite):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "", p.AddFavorite(ctx, n)
		})

	case key.Matches(msg, m.keys.Unfav):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			if n.Kind == models.KindFavoriteGroup {
				return "", p.RemoveFavProfile(ctx, n.Label, true)
			}
			return "", p.RemoveFavorite(ctx, n)
		})

	case key.Matches(msg, m.keys.Check):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			st, err := p.CheckCurrentProfile(ctx, n)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Profile %s: %s", n.ProfileName, st), nil
		})

	case key.Matches(msg, m.keys.Login):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "Logged in to " + n.ProfileName, p.SSOLogin(ctx, n)
		})

	case key.Matches(msg, m.keys.Logout):
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "Logged out of " + n.ProfileName, p.SSOLogout(ctx, n)
		})

	case key.Matches(msg, m.keys.Remove):
		if n.Kind != models.KindSession {
			return m, nil
		}
		delete(m.expanded, n.ID)
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "Removed session " + n.Label, p.DeleteSession(ctx, n)
		})
	}
	return m, nil
}

func (m Model) startInput(mode inputMode, n *models.Node, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.target = n
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNone
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		value := m.input.Value()
		n := m.target
		mode := m.mode
		m.mode = modeNone
		m.target = nil
		m.input.Blur()
		if mode == modeSearch {
			m.expanded[n.ID] = true
			return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
				return "", p.Search(ctx, n, value)
			})
		}
		return m, m.do(func(ctx context.Context, p *tree.Provider) (string, error) {
			return "", p.Rename(ctx, n, value)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) switchTree(step int) (tea.Model, tea.Cmd) {
	if len(m.trees) == 0 {
		return m, nil
	}
	m.Active = (m.Active + step) % len(m.trees)
	m.Rows = nil
	m.Cursor, m.Offset = 0, 0
	return m, m.load()
}

func (m Model) selected() (Row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return Row{}, false
	}
	return m.Rows[m.Cursor], true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	visible := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if visible > 0 && m.Cursor >= m.Offset+visible {
		m.Offset = m.Cursor - visible + 1
	}
}

// do runs fn against the active tree while holding the tree lock
func (m Model) do(fn func(ctx context.Context, p *tree.Provider) (string, error)) tea.Cmd {
	if len(m.trees) == 0 {
		return nil
	}
	p := m.trees[m.Active]
	ctx, mu := m.ctx, m.mu
	return func() tea.Msg {
		mu.Lock()
		defer mu.Unlock()
		status, err := fn(ctx, p)
		if err != nil {
			status = ""
		}
		return opMsg{status: status, err: err}
	}
}

// load flattens the active tree, listing expanded containers
func (m Model) load() tea.Cmd {
	if len(m.trees) == 0 {
		return nil
	}
	idx := m.Active
	p := m.trees[idx]
	ctx, mu := m.ctx, m.mu
	expanded := make(map[models.NodeID]bool, len(m.expanded))
	for id, open := range m.expanded {
		expanded[id] = open
	}
	return func() tea.Msg {
		mu.Lock()
		defer mu.Unlock()
		rows, err := flatten(ctx, p, expanded)
		return rowsMsg{tree: idx, rows: rows, err: err}
	}
}

func flatten(ctx context.Context, p *tree.Provider, expanded map[models.NodeID]bool) ([]Row, error) {
	var rows []Row
	var firstErr error
	var walk func(nodes []*models.Node, depth int)
	walk = func(nodes []*models.Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, Row{Node: n, Depth: depth, Item: p.GetTreeItem(n)})
			if !expanded[n.ID] {
				continue
			}
			children, err := p.GetChildren(ctx, n)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			walk(children, depth+1)
		}
	}
	roots, err := p.GetChildren(ctx, nil)
	if err != nil {
		return nil, err
	}
	walk(roots, 0)
	return rows, firstErr
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}
