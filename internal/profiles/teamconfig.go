package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/marcus/mfx/internal/models"
)

// FileName is the team configuration file looked up in each config dir
const FileName = "mfx.config.yaml"

// teamFile is the on-disk layout of a team configuration file
type teamFile struct {
	Profiles map[string]*models.Profile `yaml:"profiles"`
	Defaults map[string]string          `yaml:"defaults,omitempty"`
}

type layers struct {
	global  *teamFile
	project *teamFile
}

// TeamConfig resolves profiles from a global (home) and a project team
// configuration file. Project entries override global ones of the same name.
type TeamConfig struct {
	globalDir  string
	projectDir string
	prompter   Prompter

	// Probe checks connectivity; nil treats every complete profile as active
	Probe func(ctx context.Context, p *models.Profile) error
	// Validate turns status checks on; when false every check is unverified
	Validate bool

	group  singleflight.Group
	mu     sync.Mutex
	cached *layers
	tokens map[string]string
}

// NewTeamConfig creates a resolver over the two config dirs. Either may be
// empty. prompter backs EditSession and may be nil for non-interactive use.
func NewTeamConfig(globalDir, projectDir string, prompter Prompter) *TeamConfig {
	return &TeamConfig{
		globalDir:  globalDir,
		projectDir: projectDir,
		prompter:   prompter,
		Validate:   true,
		tokens:     make(map[string]string),
	}
}

// Reload drops the cached files so the next call rereads them
func (t *TeamConfig) Reload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cached = nil
}

func (t *TeamConfig) load() (*layers, error) {
	t.mu.Lock()
	if t.cached != nil {
		l := t.cached
		t.mu.Unlock()
		return l, nil
	}
	t.mu.Unlock()

	v, err, _ := t.group.Do("load", func() (any, error) {
		g, err := readTeamFile(t.globalDir)
		if err != nil {
			return nil, err
		}
		p, err := readTeamFile(t.projectDir)
		if err != nil {
			return nil, err
		}
		l := &layers{global: g, project: p}
		t.mu.Lock()
		t.cached = l
		t.mu.Unlock()
		slog.Debug("profiles: loaded team config", "global", g != nil, "project", p != nil)
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*layers), nil
}

func readTeamFile(dir string) (*teamFile, error) {
	if dir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var f teamFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, FileName), err)
	}
	for name, p := range f.Profiles {
		if p == nil {
			p = &models.Profile{}
			f.Profiles[name] = p
		}
		p.Name = name
	}
	return &f, nil
}

func writeTeamFile(dir string, f *teamFile) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "mfx.config-*.yaml.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, FileName))
}

// lookup returns a copy of the effective profile and whether it came from the global file
func (t *TeamConfig) lookup(name string) (*models.Profile, bool, error) {
	l, err := t.load()
	if err != nil {
		return nil, false, err
	}
	if l.project != nil {
		if p, ok := l.project.Profiles[name]; ok {
			return t.withToken(p.Clone()), false, nil
		}
	}
	if l.global != nil {
		if p, ok := l.global.Profiles[name]; ok {
			c := t.withToken(p.Clone())
			c.Global = true
			return c, true, nil
		}
	}
	return nil, false, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (t *TeamConfig) withToken(p *models.Profile) *models.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok, ok := t.tokens[p.Name]; ok {
		p.TokenValue = tok
	}
	return p
}

// LoadNamedProfile implements Resolver. An empty profileType matches any type.
func (t *TeamConfig) LoadNamedProfile(_ context.Context, name, profileType string) (*models.Profile, error) {
	p, _, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	if profileType != "" && p.Type != "" && p.Type != profileType {
		return nil, fmt.Errorf("%w: %s has type %s, not %s", ErrNotFound, name, p.Type, profileType)
	}
	return p, nil
}

// DefaultProfile implements Resolver
func (t *TeamConfig) DefaultProfile(ctx context.Context, profileType string) (*models.Profile, error) {
	l, err := t.load()
	if err != nil {
		return nil, err
	}
	for _, f := range []*teamFile{l.project, l.global} {
		if f == nil {
			continue
		}
		if name, ok := f.Defaults[profileType]; ok {
			return t.LoadNamedProfile(ctx, name, profileType)
		}
	}
	return nil, fmt.Errorf("%w for type %q", ErrNoDefault, profileType)
}

// CheckCurrentProfile implements Resolver
func (t *TeamConfig) CheckCurrentProfile(ctx context.Context, p *models.Profile) (Status, error) {
	if p == nil {
		return Status{}, ErrNotFound
	}
	st := Status{Name: p.Name, Status: models.StatusUnverified}
	if !t.Validate || p.Host == "" {
		return st, nil
	}
	if p.User == "" && p.TokenValue == "" {
		st.Status = models.StatusInactive
		return st, nil
	}
	if t.Probe != nil {
		if err := t.Probe(ctx, p); err != nil {
			slog.Debug("profiles: probe failed", "profile", p.Name, "err", err)
			st.Status = models.StatusInactive
			return st, nil
		}
	}
	st.Status = models.StatusActive
	return st, nil
}

// EditSession implements Resolver. It prompts for the connection fields and
// writes the result to the file that defines the profile.
func (t *TeamConfig) EditSession(ctx context.Context, p *models.Profile, name string) (*models.Profile, error) {
	if t.prompter == nil {
		return nil, errors.New("profiles: editing needs an interactive prompter")
	}
	if p == nil {
		return nil, ErrNotFound
	}
	edited := p.Clone()
	if name != "" {
		edited.Name = name
	}

	host, ok, err := t.prompter.Input(ctx, "Host", edited.Host, false)
	if err != nil || !ok {
		return nil, err
	}
	port, ok, err := t.prompter.Input(ctx, "Port", portString(edited.Port), false)
	if err != nil || !ok {
		return nil, err
	}
	user, ok, err := t.prompter.Input(ctx, "User", edited.User, false)
	if err != nil || !ok {
		return nil, err
	}

	edited.Host = strings.TrimSpace(host)
	edited.User = strings.TrimSpace(user)
	if port = strings.TrimSpace(port); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", port)
		}
		edited.Port = n
	} else {
		edited.Port = 0
	}

	if err := t.save(edited, p.Name); err != nil {
		return nil, err
	}
	return edited, nil
}

func portString(p int) string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(p)
}

// save writes p into the file that defined previousName, or the project
// file (falling back to global) for new profiles
func (t *TeamConfig) save(p *models.Profile, previousName string) error {
	l, err := t.load()
	if err != nil {
		return err
	}
	dir, f := t.projectDir, l.project
	_, inProject := profileIn(l.project, previousName)
	_, inGlobal := profileIn(l.global, previousName)
	if (!inProject && inGlobal) || dir == "" {
		dir, f = t.globalDir, l.global
	}
	if dir == "" {
		return ErrNoProfilesFile
	}
	if f == nil {
		f = &teamFile{}
	}
	next := &teamFile{Profiles: make(map[string]*models.Profile, len(f.Profiles)+1), Defaults: f.Defaults}
	for n, existing := range f.Profiles {
		if n != previousName {
			next.Profiles[n] = existing
		}
	}
	stored := p.Clone()
	stored.Global = false
	stored.TokenValue = ""
	next.Profiles[p.Name] = stored
	if err := writeTeamFile(dir, next); err != nil {
		return err
	}
	t.Reload()
	return nil
}

func profileIn(f *teamFile, name string) (*models.Profile, bool) {
	if f == nil {
		return nil, false
	}
	p, ok := f.Profiles[name]
	return p, ok
}

// SSOLogin implements Resolver. The issued token lives for the process.
func (t *TeamConfig) SSOLogin(_ context.Context, p *models.Profile) error {
	if p == nil {
		return ErrNotFound
	}
	if p.User == "" || p.Password == "" {
		return fmt.Errorf("%w: %s", ErrNoCredentials, p.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[p.Name] = uuid.NewString()
	p.TokenType = "apimlAuthenticationToken"
	p.TokenValue = t.tokens[p.Name]
	return nil
}

// SSOLogout implements Resolver
func (t *TeamConfig) SSOLogout(_ context.Context, p *models.Profile) error {
	if p == nil {
		return ErrNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, p.Name)
	p.TokenValue = ""
	return nil
}

// FetchAllProfiles implements Resolver
func (t *TeamConfig) FetchAllProfiles(_ context.Context) ([]*models.Profile, error) {
	l, err := t.load()
	if err != nil {
		return nil, err
	}
	names := map[string]bool{}
	for _, f := range []*teamFile{l.global, l.project} {
		if f == nil {
			continue
		}
		for n := range f.Profiles {
			names[n] = true
		}
	}
	out := make([]*models.Profile, 0, len(names))
	for n := range names {
		p, _, err := t.lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UsingTeamConfig implements Resolver
func (t *TeamConfig) UsingTeamConfig() bool {
	l, err := t.load()
	return err == nil && (l.global != nil || l.project != nil)
}

// IsGlobalProfile implements Resolver
func (t *TeamConfig) IsGlobalProfile(_ context.Context, name string) (bool, error) {
	_, global, err := t.lookup(name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return global, err
}
