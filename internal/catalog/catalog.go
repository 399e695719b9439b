// Package catalog holds the read-only palettes the canvas draws from:
// component definitions (one per kind) and pre-composed block templates.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"sitebuilder/internal/domain"
)

//go:embed data/components.yaml data/templates.yaml
var embedded embed.FS

// Library is a snapshot of both catalogs. Replace swaps the contents
// atomically; callers always receive copies.
type Library struct {
	mu         sync.RWMutex
	components []domain.ComponentDefinition
	byKind     map[domain.Kind]int
	templates  []domain.BlockTemplate
	byID       map[string]int
}

// Override is the on-disk format for replacing one or both catalogs.
// An empty section keeps the built-in entries.
type Override struct {
	Components []domain.ComponentDefinition `yaml:"components"`
	Templates  []domain.BlockTemplate       `yaml:"templates"`
}

// Default parses the built-in catalogs.
func Default() (*Library, error) {
	comps, err := embedded.ReadFile("data/components.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded components: %w", err)
	}
	tmpls, err := embedded.ReadFile("data/templates.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	return Parse(comps, tmpls)
}

// MustDefault panics if the built-in catalogs are invalid.
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// Parse builds a Library from the YAML lists of definitions and templates.
func Parse(componentsYAML, templatesYAML []byte) (*Library, error) {
	var comps []domain.ComponentDefinition
	if err := yaml.Unmarshal(componentsYAML, &comps); err != nil {
		return nil, fmt.Errorf("parse components: %w", err)
	}
	var tmpls []domain.BlockTemplate
	if err := yaml.Unmarshal(templatesYAML, &tmpls); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return New(comps, tmpls)
}

// New validates and indexes the given catalogs.
func New(comps []domain.ComponentDefinition, tmpls []domain.BlockTemplate) (*Library, error) {
	l := &Library{}
	if err := l.set(comps, tmpls); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadOverride reads an override file and returns a library that combines it
// with base.
func LoadOverride(base *Library, path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog override: %w", err)
	}
	var ov Override
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse catalog override %s: %w", path, err)
	}
	comps := ov.Components
	if len(comps) == 0 {
		comps = base.Components()
	}
	tmpls := ov.Templates
	if len(tmpls) == 0 {
		tmpls = base.Templates()
	}
	return New(comps, tmpls)
}

func (l *Library) set(comps []domain.ComponentDefinition, tmpls []domain.BlockTemplate) error {
	byKind := make(map[domain.Kind]int, len(comps))
	for i, c := range comps {
		if !c.Type.Valid() {
			return fmt.Errorf("component %d: %w: %q", i, domain.ErrUnknownKind, c.Type)
		}
		if _, dup := byKind[c.Type]; dup {
			return fmt.Errorf("component %d: duplicate kind %q", i, c.Type)
		}
		if err := validateStyle(c.DefaultStyles); err != nil {
			return fmt.Errorf("component %q: %w", c.Type, err)
		}
		byKind[c.Type] = i
	}

	byID := make(map[string]int, len(tmpls))
	for i, t := range tmpls {
		if t.ID == "" {
			return fmt.Errorf("template %d: missing id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return fmt.Errorf("template %d: duplicate id %q", i, t.ID)
		}
		for j, m := range t.Components {
			if !m.Type.Valid() {
				return fmt.Errorf("template %q component %d: %w: %q", t.ID, j, domain.ErrUnknownKind, m.Type)
			}
			if err := validateStyle(m.Styles); err != nil {
				return fmt.Errorf("template %q component %d: %w", t.ID, j, err)
			}
		}
		byID[t.ID] = i
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = comps
	l.byKind = byKind
	l.templates = tmpls
	l.byID = byID
	return nil
}

func validateStyle(s domain.Style) error {
	for k := range s {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownStyleKey, k)
		}
	}
	return nil
}

// Replace adopts the contents of other. Existing canvas instances are unaffected.
func (l *Library) Replace(other *Library) {
	comps := other.Components()
	tmpls := other.Templates()
	// other was validated on construction
	_ = l.set(comps, tmpls)
}

// Lookup returns the definition for kind.
func (l *Library) Lookup(kind domain.Kind) (domain.ComponentDefinition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byKind[kind]
	if !ok {
		return domain.ComponentDefinition{}, false
	}
	return cloneDefinition(l.components[i]), true
}

func (l *Library) Components() []domain.ComponentDefinition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ComponentDefinition, len(l.components))
	for i, c := range l.components {
		out[i] = cloneDefinition(c)
	}
	return out
}

func (l *Library) Template(id string) (domain.BlockTemplate, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return domain.BlockTemplate{}, false
	}
	return cloneTemplate(l.templates[i]), true
}

func (l *Library) Templates() []domain.BlockTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.BlockTemplate, len(l.templates))
	for i, t := range l.templates {
		out[i] = cloneTemplate(t)
	}
	return out
}

func cloneDefinition(c domain.ComponentDefinition) domain.ComponentDefinition {
	c.DefaultStyles = c.DefaultStyles.Clone()
	return c
}

func cloneTemplate(t domain.BlockTemplate) domain.BlockTemplate {
	members := make([]domain.TemplateComponent, len(t.Components))
	for i, m := range t.Components {
		m.Styles = m.Styles.Clone()
		members[i] = m
	}
	t.Components = members
	return t
}
