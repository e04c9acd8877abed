package profiles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marcus/mfx/internal/models"
)

// Static is a fixed in-memory Resolver. Statuses default to active.
type Static struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	statuses map[string]models.ProfileStatus
	global   map[string]bool
	team     bool

	// Edit, when set, answers EditSession
	Edit func(p *models.Profile, name string) (*models.Profile, error)

	Logins  []string
	Logouts []string
}

// NewStatic creates a resolver over profiles
func NewStatic(profiles ...*models.Profile) *Static {
	s := &Static{
		profiles: make(map[string]*models.Profile),
		statuses: make(map[string]models.ProfileStatus),
		global:   make(map[string]bool),
	}
	for _, p := range profiles {
		s.profiles[p.Name] = p.Clone()
	}
	return s
}

// SetStatus fixes the status reported for name
func (s *Static) SetStatus(name string, st models.ProfileStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[name] = st
}

// SetTeamConfig marks name as defined in the global team config
func (s *Static) SetTeamConfig(globalNames ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team = true
	for _, n := range globalNames {
		s.global[n] = true
	}
}

// Add registers or replaces a profile
func (s *Static) Add(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Name] = p.Clone()
}

func (s *Static) LoadNamedProfile(_ context.Context, name, _ string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	c := p.Clone()
	c.Global = s.global[name]
	return c, nil
}

func (s *Static) DefaultProfile(ctx context.Context, _ string) (*models.Profile, error) {
	all, _ := s.FetchAllProfiles(ctx)
	if len(all) == 0 {
		return nil, ErrNoDefault
	}
	return all[0], nil
}

func (s *Static) CheckCurrentProfile(_ context.Context, p *models.Profile) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[p.Name]
	if !ok {
		st = models.StatusActive
	}
	return Status{Name: p.Name, Status: st}, nil
}

func (s *Static) EditSession(_ context.Context, p *models.Profile, name string) (*models.Profile, error) {
	if s.Edit == nil {
		return nil, nil
	}
	edited, err := s.Edit(p, name)
	if err != nil || edited == nil {
		return nil, err
	}
	s.Add(edited)
	return edited, nil
}

func (s *Static) SSOLogin(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logins = append(s.Logins, p.Name)
	return nil
}

func (s *Static) SSOLogout(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logouts = append(s.Logouts, p.Name)
	return nil
}

func (s *Static) FetchAllProfiles(_ context.Context) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Static) UsingTeamConfig() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team
}

func (s *Static) IsGlobalProfile(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global[name], nil
}
