package remote

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/marcus/mfx/internal/models"
)

// Object is a resource held by a Memory backend
type Object struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label,omitempty"`
	Tag   string `yaml:"tag"`
	Data  string `yaml:"data,omitempty"`
}

// Memory is an in-process API for one schema. Resources are kept per
// profile name. It backs fixture-driven sessions and tests.
type Memory struct {
	mu      sync.Mutex
	schema  models.Schema
	objects map[string]map[string]*Object
	failing map[string]error
	nextJob int
}

// NewMemory creates an empty backend for schema
func NewMemory(schema models.Schema) *Memory {
	return &Memory{
		schema:  schema,
		objects: make(map[string]map[string]*Object),
		failing: make(map[string]error),
		nextJob: 1,
	}
}

// Schema implements API
func (m *Memory) Schema() models.Schema { return m.schema }

// Put stores obj under profile, deriving a label when none is given
func (m *Memory) Put(profile string, obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(profile, obj)
}

func (m *Memory) put(profile string, obj Object) {
	if obj.Label == "" {
		obj.Label = m.label(obj.Path)
	}
	objs, ok := m.objects[profile]
	if !ok {
		objs = make(map[string]*Object)
		m.objects[profile] = objs
	}
	o := obj
	objs[obj.Path] = &o
}

// Fail makes every later call of op ("session", "list", "rename", "delete",
// "get", "put", "submit") return err until cleared with a nil err
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failing, op)
		return
	}
	m.failing[op] = err
}

// Exists reports whether path exists for profile
func (m *Memory) Exists(profile, p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[profile][p]
	return ok
}

func (m *Memory) check(op string) error {
	if err, ok := m.failing[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Session implements API
func (m *Memory) Session(_ context.Context, p *models.Profile) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("session"); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	return models.NewSession(p), nil
}

// List implements API
func (m *Memory) List(_ context.Context, s *models.Session, q Query) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("list"); err != nil {
		return nil, err
	}
	objs := m.objects[profileOf(s)]

	var out []Entry
	for _, o := range objs {
		var match bool
		switch {
		case q.Path != "":
			match = m.parent(o.Path) == q.Path
		case m.schema == models.SchemaUSS:
			match = m.parent(o.Path) == path.Clean(q.Pattern)
		case m.schema == models.SchemaJobs:
			match = m.parent(o.Path) == "" && matchJob(q.Pattern, o.Label)
		default:
			match = m.parent(o.Path) == "" && MatchDatasetPattern(q.Pattern, o.Path)
		}
		if match {
			out = append(out, Entry{Path: o.Path, Label: o.Label, Tag: o.Tag})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// Rename implements API. Renaming a container moves its descendants.
func (m *Memory) Rename(_ context.Context, s *models.Session, oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("rename"); err != nil {
		return err
	}
	if m.schema == models.SchemaJobs {
		return fmt.Errorf("rename %s: %w", oldPath, ErrUnsupported)
	}
	objs := m.objects[profileOf(s)]
	o, ok := objs[oldPath]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldPath, ErrNotFound)
	}
	if _, taken := objs[newPath]; taken {
		return fmt.Errorf("rename %s: %s: %w", oldPath, newPath, ErrExists)
	}

	for p, child := range objs {
		if p != oldPath && m.isDescendant(p, oldPath) {
			delete(objs, p)
			moved := *child
			moved.Path = newPath + strings.TrimPrefix(p, oldPath)
			moved.Label = m.label(moved.Path)
			objs[moved.Path] = &moved
		}
	}
	delete(objs, oldPath)
	o.Path = newPath
	o.Label = m.label(newPath)
	objs[newPath] = o
	return nil
}

// Delete implements API. Deleting a container removes its descendants.
func (m *Memory) Delete(_ context.Context, s *models.Session, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("delete"); err != nil {
		return err
	}
	objs := m.objects[profileOf(s)]
	if _, ok := objs[p]; !ok {
		return fmt.Errorf("delete %s: %w", p, ErrNotFound)
	}
	for other := range objs {
		if other == p || m.isDescendant(other, p) {
			delete(objs, other)
		}
	}
	return nil
}

// GetContents implements API
func (m *Memory) GetContents(_ context.Context, s *models.Session, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("get"); err != nil {
		return nil, err
	}
	o, ok := m.objects[profileOf(s)][p]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", p, ErrNotFound)
	}
	return []byte(o.Data), nil
}

// PutContents implements API
func (m *Memory) PutContents(_ context.Context, s *models.Session, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("put"); err != nil {
		return err
	}
	profile := profileOf(s)
	if o, ok := m.objects[profile][p]; ok {
		o.Data = string(data)
		return nil
	}
	m.put(profile, Object{Path: p, Tag: m.leafTag(), Data: string(data)})
	return nil
}

// Submit implements Submitter for job backends
func (m *Memory) Submit(_ context.Context, s *models.Session, jcl []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("submit"); err != nil {
		return "", err
	}
	if m.schema != models.SchemaJobs {
		return "", fmt.Errorf("submit: %w", ErrUnsupported)
	}
	id := fmt.Sprintf("JOB%05d", m.nextJob)
	m.nextJob++
	name := jobName(jcl)
	profile := profileOf(s)
	m.put(profile, Object{Path: id, Label: name + "(" + id + ")", Tag: models.TagJob})
	m.put(profile, Object{Path: id + "/JESJCL", Tag: models.TagSpool, Data: string(jcl)})
	return id, nil
}

func (m *Memory) parent(p string) string {
	switch m.schema {
	case models.SchemaUSS:
		if p == "/" {
			return ""
		}
		return path.Dir(p)
	case models.SchemaJobs:
		if i := strings.IndexByte(p, '/'); i >= 0 {
			return p[:i]
		}
		return ""
	default:
		if i := strings.IndexByte(p, '('); i >= 0 {
			return p[:i]
		}
		return ""
	}
}

func (m *Memory) isDescendant(p, ancestor string) bool {
	for q := m.parent(p); q != ""; q = m.parent(q) {
		if q == ancestor {
			return true
		}
		if q == "/" || q == "." {
			break
		}
	}
	return false
}

func (m *Memory) label(p string) string {
	switch m.schema {
	case models.SchemaUSS:
		return path.Base(p)
	case models.SchemaJobs:
		if i := strings.IndexByte(p, '/'); i >= 0 {
			return p[i+1:]
		}
		return p
	default:
		if i := strings.IndexByte(p, '('); i >= 0 {
			return strings.TrimSuffix(p[i+1:], ")")
		}
		return p
	}
}

func (m *Memory) leafTag() string {
	switch m.schema {
	case models.SchemaUSS:
		return models.TagTextFile
	case models.SchemaJobs:
		return models.TagSpool
	default:
		return models.TagDS
	}
}

func profileOf(s *models.Session) string {
	if s == nil {
		return ""
	}
	return s.ProfileName
}

func jobName(jcl []byte) string {
	line, _, _ := strings.Cut(string(jcl), "\n")
	line = strings.TrimPrefix(strings.TrimSpace(line), "//")
	name, _, _ := strings.Cut(line, " ")
	if name == "" {
		return "JOB"
	}
	return strings.ToUpper(name)
}

func matchJob(pattern, label string) bool {
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	if pattern == "" || pattern == "*" {
		return true
	}
	name, _, _ := strings.Cut(label, "(")
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// MatchDatasetPattern reports whether name matches a data set search
// pattern. "*" matches within one qualifier, "**" matches any number of
// qualifiers, "%" matches one character. Several patterns may be given
// separated by commas. A pattern without wildcards matches the name
// itself and everything qualified below it.
func MatchDatasetPattern(pattern, name string) bool {
	name = strings.ToUpper(name)
	for _, p := range strings.Split(pattern, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*%") {
			p += ".**"
		}
		if matchQualifiers(strings.Split(p, "."), strings.Split(name, ".")) {
			return true
		}
	}
	return false
}

func matchQualifiers(pat, name []string) bool {
	if len(pat) == 0 {
		return len(name) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(name); i++ {
			if matchQualifiers(pat[1:], name[i:]) {
				return true
			}
		}
		return false
	}
	if len(name) == 0 {
		return false
	}
	ok, err := path.Match(strings.ReplaceAll(pat[0], "%", "?"), name[0])
	if err != nil || !ok {
		return false
	}
	return matchQualifiers(pat[1:], name[1:])
}
