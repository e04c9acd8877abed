package models

import "strings"

// Base context values. The rendered context value of a node is one of these
// followed by its modifier suffixes, e.g. "pds_fav" or "session_home_active".
const (
	TagDSSession  = "session"
	TagDS         = "ds"
	TagPDS        = "pds"
	TagMember     = "member"
	TagMigrated   = "migr"
	TagVSAM       = "vsam"
	TagUSSSession = "ussSession"
	TagDirectory  = "directory"
	TagTextFile   = "textFile"
	TagBinaryFile = "binaryFile"
	TagJobSession = "server"
	TagJob        = "job"
	TagSpool      = "spool"
	TagFavorites  = "favorite"
	TagProfile    = "profile"
)

const (
	suffixFavorite = "fav"
	suffixHome     = "home"
)

// ProfileStatus is the connectivity status reported for a profile
type ProfileStatus string

const (
	StatusUnset      ProfileStatus = ""
	StatusActive     ProfileStatus = "active"
	StatusInactive   ProfileStatus = "inactive"
	StatusUnverified ProfileStatus = "unverified"
)

// ContextTag is the typed capability set behind a node's context value
type ContextTag struct {
	Base     string
	Favorite bool
	Home     bool
	Status   ProfileStatus
}

// String renders the context value handed to the host
func (t ContextTag) String() string {
	var b strings.Builder
	b.WriteString(t.Base)
	if t.Favorite {
		b.WriteString("_" + suffixFavorite)
	}
	if t.Home {
		b.WriteString("_" + suffixHome)
	}
	if t.Status != StatusUnset {
		b.WriteString("_" + string(t.Status))
	}
	return b.String()
}

// ParseContextTag reads a rendered context value. Unknown suffixes are dropped.
func ParseContextTag(s string) ContextTag {
	parts := strings.Split(strings.TrimSpace(s), "_")
	t := ContextTag{Base: parts[0]}
	for _, p := range parts[1:] {
		switch p {
		case suffixFavorite:
			t.Favorite = true
		case suffixHome:
			t.Home = true
		case string(StatusActive), string(StatusInactive), string(StatusUnverified):
			t.Status = ProfileStatus(p)
		}
	}
	return t
}

// AsFavorite returns the favorite variant of the tag without profile decorations
func (t ContextTag) AsFavorite() ContextTag {
	return ContextTag{Base: t.Base, Favorite: true}
}

// SameBase reports whether two tags share a base context, ignoring modifiers
func (t ContextTag) SameBase(o ContextTag) bool {
	return t.Base == o.Base
}

// IsSessionBase reports whether base names a session root of any schema
func IsSessionBase(base string) bool {
	switch base {
	case TagDSSession, TagUSSSession, TagJobSession:
		return true
	}
	return false
}

// SessionTag returns the session base context for a schema
func SessionTag(s Schema) string {
	switch s {
	case SchemaUSS:
		return TagUSSSession
	case SchemaJobs:
		return TagJobSession
	default:
		return TagDSSession
	}
}

// KindForBase maps a base context value to the node variant it implies
func KindForBase(base string) NodeKind {
	switch base {
	case TagDSSession, TagUSSSession, TagJobSession:
		return KindSession
	case TagFavorites:
		return KindFavoritesRoot
	case TagProfile:
		return KindFavoriteGroup
	case TagMember, TagSpool:
		return KindLeaf
	default:
		return KindResource
	}
}

// IsContainerBase reports whether nodes with this base can have children
func IsContainerBase(base string) bool {
	switch base {
	case TagDSSession, TagUSSSession, TagJobSession, TagFavorites, TagProfile,
		TagPDS, TagDirectory, TagJob:
		return true
	}
	return false
}
