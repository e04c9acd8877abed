package models

import (
	"fmt"
	"strings"
)

// Schema names a tree kind and the persistence namespace that goes with it
type Schema string

const (
	SchemaDatasets Schema = "datasets"
	SchemaUSS      Schema = "uss"
	SchemaJobs     Schema = "jobs"
)

// AllSchemas lists the tree schemas in display order
var AllSchemas = []Schema{SchemaDatasets, SchemaUSS, SchemaJobs}

// ParseSchema accepts the canonical names plus the short aliases used on the command line
func ParseSchema(s string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "datasets", "dataset", "ds", "mvs":
		return SchemaDatasets, nil
	case "uss", "unix", "files":
		return SchemaUSS, nil
	case "jobs", "job", "jes":
		return SchemaJobs, nil
	default:
		return "", fmt.Errorf("unknown schema %q (use datasets, uss or jobs)", s)
	}
}

// NodeKind is the mutually exclusive variant tag of a tree node
type NodeKind int

const (
	KindSession NodeKind = iota
	KindFavoritesRoot
	KindFavoriteGroup
	KindResource
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindFavoritesRoot:
		return "favorites"
	case KindFavoriteGroup:
		return "favorite-group"
	case KindResource:
		return "resource"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// ValidationState is the per-tree profile validity state
type ValidationState int

const (
	Unverified ValidationState = iota
	Valid
	Invalid
)

func (v ValidationState) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unverified"
	}
}

// CollapsibleState mirrors the host's tree item collapse state
type CollapsibleState int

const (
	CollapsibleNone CollapsibleState = iota
	Collapsed
	Expanded
)

// Icon identifies the glyph the host draws next to a node
type Icon string

const (
	IconFolderClosed    Icon = "folder-closed"
	IconFolderOpen      Icon = "folder-open"
	IconSessionClosed   Icon = "session-closed"
	IconSessionOpen     Icon = "session-open"
	IconSessionActive   Icon = "session-active"
	IconSessionInactive Icon = "session-inactive"
	IconFavoriteClosed  Icon = "favorite-closed"
	IconFavoriteOpen    Icon = "favorite-open"
	IconDocument        Icon = "document"
	IconJob             Icon = "job"
	IconNone            Icon = ""
)

// Profile is a resolved connection profile
type Profile struct {
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	Host       string            `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int               `json:"port,omitempty" yaml:"port,omitempty"`
	User       string            `json:"user,omitempty" yaml:"user,omitempty"`
	Password   string            `json:"-" yaml:"password,omitempty"`
	TokenType  string            `json:"tokenType,omitempty" yaml:"tokenType,omitempty"`
	TokenValue string            `json:"-" yaml:"-"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Global is true when the profile is defined in the user's home team config
	Global bool `json:"-" yaml:"-"`
}

// Clone returns a deep copy
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Properties != nil {
		c.Properties = make(map[string]string, len(p.Properties))
		for k, v := range p.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// Session carries the connection parameters of a bound profile
type Session struct {
	ProfileName string
	Host        string
	Port        int
	User        string
	TokenType   string
	TokenValue  string
}

// NewSession derives session fields from a profile
func NewSession(p *Profile) *Session {
	s := &Session{}
	s.Rebind(p)
	return s
}

// Rebind overwrites the connection fields in place
func (s *Session) Rebind(p *Profile) {
	if p == nil {
		return
	}
	s.ProfileName = p.Name
	s.Host = p.Host
	s.Port = p.Port
	s.User = p.User
	s.TokenType = p.TokenType
	s.TokenValue = p.TokenValue
}
