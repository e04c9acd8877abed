package browser

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browser key bindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	NextTree key.Binding
	PrevTree key.Binding
	Search   key.Binding
	Rename   key.Binding
	Favorite key.Binding
	Unfav    key.Binding
	Check    key.Binding
	Login    key.Binding
	Logout   key.Binding
	Remove   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/open")),
		NextTree: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tree")),
		PrevTree: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tree")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search session")),
		Rename:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rename")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "add favorite")),
		Unfav:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "remove favorite")),
		Check:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check profile")),
		Login:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sso login")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sso logout")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove session")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:   key.NewBinding(key.WithKeys("enter")),
		Cancel:   key.NewBinding(key.WithKeys("esc")),
	}
}

// helpBindings lists the bindings shown in the help view, in order
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Toggle, k.NextTree, k.PrevTree, k.Search, k.Rename,
		k.Favorite, k.Unfav, k.Check, k.Login, k.Logout, k.Remove, k.Refresh, k.Quit,
	}
}
