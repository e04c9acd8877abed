package models

import (
	"github.com/google/uuid"
)

// NodeID identifies a node inside its tree's index
type NodeID string

// NewNodeID returns a fresh random node ID
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Node is a tree node of any variant. Children is the only ownership edge;
// Parent is a lookup key into the owning tree's NodeIndex.
type Node struct {
	ID      NodeID
	Kind    NodeKind
	Label   string
	Tooltip string
	// Path is the remote identity: data set name ("HLQ.PDS(MEM)" for members),
	// absolute USS path, or job ID. Empty for synthetic nodes.
	Path string
	// Pattern is the search filter of a session root or saved search favorite.
	Pattern string
	Tag     ContextTag

	Parent   NodeID
	Children []*Node
	Dirty    bool

	Collapsible CollapsibleState
	Icon        Icon

	ProfileName string
	Profile     *Profile
	Session     *Session
}

// NodeOptions configures NewNode
type NodeOptions struct {
	Kind        NodeKind
	Label       string
	Path        string
	Tag         ContextTag
	ProfileName string
	Profile     *Profile
	Session     *Session
}

// NewNode creates a node and derives its initial collapse state and icon
func NewNode(opts NodeOptions) *Node {
	n := &Node{
		ID:          NewNodeID(),
		Kind:        opts.Kind,
		Label:       opts.Label,
		Tooltip:     opts.Label,
		Path:        opts.Path,
		Tag:         opts.Tag,
		ProfileName: opts.ProfileName,
		Profile:     opts.Profile,
		Session:     opts.Session,
	}
	if n.Path != "" && n.Path != n.Label {
		n.Tooltip = n.Path
	}
	if IsContainerBase(opts.Tag.Base) || opts.Kind == KindSession || opts.Kind == KindFavoriteGroup || opts.Kind == KindFavoritesRoot {
		n.Collapsible = Collapsed
		n.Dirty = true
	}
	n.Icon = IconFor(n, false)
	return n
}

// IsFavorite reports whether the node lives in the favorites forest
func (n *Node) IsFavorite() bool {
	return n.Tag.Favorite || n.Kind == KindFavoriteGroup || n.Kind == KindFavoritesRoot
}

// IsSessionRoot reports whether the node is a session root (not a saved search)
func (n *Node) IsSessionRoot() bool {
	return n.Kind == KindSession
}

// IsSavedSearch reports whether the node is a favorited session search
func (n *Node) IsSavedSearch() bool {
	return n.Kind == KindResource && IsSessionBase(n.Tag.Base)
}

// ContextValue is the rendered context tag
func (n *Node) ContextValue() string {
	return n.Tag.String()
}

// IconFor picks the icon for a node given whether it is displayed open
func IconFor(n *Node, open bool) Icon {
	switch n.Kind {
	case KindSession:
		switch n.Tag.Status {
		case StatusActive:
			return IconSessionActive
		case StatusInactive:
			return IconSessionInactive
		}
		if open {
			return IconSessionOpen
		}
		return IconSessionClosed
	case KindFavoritesRoot, KindFavoriteGroup:
		if open {
			return IconFavoriteOpen
		}
		return IconFavoriteClosed
	}
	switch n.Tag.Base {
	case TagPDS, TagDirectory:
		if open {
			return IconFolderOpen
		}
		return IconFolderClosed
	case TagJob:
		return IconJob
	case TagDSSession, TagUSSSession, TagJobSession:
		if open {
			return IconFolderOpen
		}
		return IconFolderClosed
	case TagFavorites, TagProfile:
		return IconNone
	}
	return IconDocument
}

// NodeIndex resolves node IDs for parent lookups
type NodeIndex struct {
	nodes map[NodeID]*Node
}

// NewNodeIndex creates an empty index
func NewNodeIndex() *NodeIndex {
	return &NodeIndex{nodes: make(map[NodeID]*Node)}
}

// Add registers n and all of its loaded descendants
func (x *NodeIndex) Add(n *Node) {
	if n == nil {
		return
	}
	x.nodes[n.ID] = n
	for _, c := range n.Children {
		x.Add(c)
	}
}

// Remove unregisters n and all of its loaded descendants
func (x *NodeIndex) Remove(n *Node) {
	if n == nil {
		return
	}
	delete(x.nodes, n.ID)
	for _, c := range n.Children {
		x.Remove(c)
	}
}

// Get returns the node for id or nil
func (x *NodeIndex) Get(id NodeID) *Node {
	if id == "" {
		return nil
	}
	return x.nodes[id]
}

// Len returns the number of indexed nodes
func (x *NodeIndex) Len() int {
	return len(x.nodes)
}

// Adopt appends child to parent's children and indexes it
func (x *NodeIndex) Adopt(parent, child *Node) {
	child.Parent = parent.ID
	parent.Children = append(parent.Children, child)
	x.Add(child)
}

// Detach removes child from parent's children and unindexes it.
// Returns false when child is not a direct child of parent.
func (x *NodeIndex) Detach(parent, child *Node) bool {
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
			x.Remove(child)
			return true
		}
	}
	return false
}

// SetChildren replaces parent's children, unindexing the previous set
func (x *NodeIndex) SetChildren(parent *Node, children []*Node) {
	for _, c := range parent.Children {
		x.Remove(c)
	}
	parent.Children = children
	for _, c := range children {
		c.Parent = parent.ID
		x.Add(c)
	}
}
