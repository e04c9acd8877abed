package filters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/marcus/mfx/internal/models"
)

// Template is a named data set allocation template. It is stored as a
// single-key object, {"NAME": {attributes}}.
type Template struct {
	Name       string
	Attributes map[string]any
}

// MarshalJSON implements json.Marshaler
func (t Template) MarshalJSON() ([]byte, error) {
	attrs := t.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return json.Marshal(map[string]map[string]any{t.Name: attrs})
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Template) UnmarshalJSON(data []byte) error {
	var m map[string]map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("template must have exactly one name, got %d", len(m))
	}
	for name, attrs := range m {
		t.Name = name
		t.Attributes = attrs
	}
	return nil
}

func templateKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AddDsTemplateHistory stores a template at the front, replacing any
// template with the same name
func (m *Manager) AddDsTemplateHistory(ctx context.Context, t Template) error {
	if m.schema != models.SchemaDatasets {
		return ErrTemplatesUnsupported
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil
	}
	key := templateKey(t.Name)
	next := []Template{t}
	for _, existing := range m.templates {
		if templateKey(existing.Name) != key {
			next = append(next, existing)
		}
	}
	m.templates = next
	return m.write(ctx, FieldTemplates, m.templates)
}

// GetDsTemplates returns a copy of the stored templates
func (m *Manager) GetDsTemplates() []Template {
	out := make([]Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// TemplateNames returns the stored template names in sorted order
func (m *Manager) TemplateNames() []string {
	names := make([]string, 0, len(m.templates))
	for _, t := range m.templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// ResetDsTemplateHistory removes all templates
func (m *Manager) ResetDsTemplateHistory(ctx context.Context) error {
	if m.schema != models.SchemaDatasets {
		return ErrTemplatesUnsupported
	}
	m.templates = []Template{}
	return m.write(ctx, FieldTemplates, m.templates)
}
