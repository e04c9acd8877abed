// Package profiles resolves connection profiles for the trees: loading by
// name, status checks, interactive edits and SSO token handling.
package profiles

import (
	"context"
	"errors"

	"github.com/marcus/mfx/internal/models"
)

var (
	ErrNotFound       = errors.New("profiles: profile not found")
	ErrNoDefault      = errors.New("profiles: no default profile")
	ErrNoCredentials  = errors.New("profiles: profile has no credentials for login")
	ErrNoProfilesFile = errors.New("profiles: no team configuration found")
)

// Status is the result of a profile check
type Status struct {
	Name   string
	Status models.ProfileStatus
}

// Resolver is the profile collaborator consumed by the trees
type Resolver interface {
	LoadNamedProfile(ctx context.Context, name, profileType string) (*models.Profile, error)
	DefaultProfile(ctx context.Context, profileType string) (*models.Profile, error)
	CheckCurrentProfile(ctx context.Context, p *models.Profile) (Status, error)
	// EditSession returns the updated profile, or nil when the user cancelled
	EditSession(ctx context.Context, p *models.Profile, name string) (*models.Profile, error)
	SSOLogin(ctx context.Context, p *models.Profile) error
	SSOLogout(ctx context.Context, p *models.Profile) error
	FetchAllProfiles(ctx context.Context) ([]*models.Profile, error)
	UsingTeamConfig() bool
	IsGlobalProfile(ctx context.Context, name string) (bool, error)
}

// Prompter collects free-text input. ok is false when the user cancelled.
type Prompter interface {
	Input(ctx context.Context, prompt, value string, secret bool) (answer string, ok bool, err error)
}
