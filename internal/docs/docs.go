// Package docs holds keyword documentation metadata: parameter lists and
// documentation sections, addressed by owner and "#"+keyword name.
package docs

import (
	"fmt"
	"sort"
	"strings"
)

// SectionKind names one accessor of a Descriptor.
type SectionKind string

const (
	SectionDocstring SectionKind = "docstring"
	SectionFile      SectionKind = "file"
	SectionSource    SectionKind = "source"
	SectionParams    SectionKind = "params"
)

var knownSections = map[SectionKind]bool{
	SectionDocstring: true,
	SectionFile:      true,
	SectionSource:    true,
	SectionParams:    true,
}

// Section is one configured documentation section and the heading printed above it.
type Section struct {
	Kind  SectionKind `yaml:"kind"`
	Label string      `yaml:"label"`
}

// DefaultSections shows the docstring with no heading.
func DefaultSections() []Section {
	return []Section{{Kind: SectionDocstring}}
}

// ParseSections parses "kind:label,kind:label". A missing label means no heading.
func ParseSections(s string) ([]Section, error) {
	var out []Section
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, label, _ := strings.Cut(part, ":")
		k := SectionKind(strings.ToLower(strings.TrimSpace(kind)))
		if !knownSections[k] {
			return nil, fmt.Errorf("unknown documentation section %q (expected docstring, file, source, or params)", kind)
		}
		out = append(out, Section{Kind: k, Label: strings.TrimSpace(label)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no documentation sections in %q", s)
	}
	return out, nil
}

// ValidateSections checks that every section kind is known.
func ValidateSections(sections []Section) error {
	for _, s := range sections {
		if !knownSections[s.Kind] {
			return fmt.Errorf("unknown documentation section %q", s.Kind)
		}
	}
	return nil
}

// Param is one declared keyword parameter.
type Param struct {
	Name        string `yaml:"name"`
	Default     string `yaml:"default,omitempty"`
	HasDefault  bool   `yaml:"has_default,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Required returns a parameter without a default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional returns a parameter with a default value.
func Optional(name, def string) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Signature renders the parameter as "name" or "name=default".
func (p Param) Signature() string {
	if !p.HasDefault {
		return p.Name
	}
	return p.Name + "=" + p.Default
}

// Descriptor is the documentation of one keyword.
type Descriptor struct {
	Owner     string
	Name      string
	Params    []Param
	Docstring string
	File      string
	Source    string
}

// Text returns the content of the given section.
func (d *Descriptor) Text(kind SectionKind) string {
	switch kind {
	case SectionDocstring:
		return d.Docstring
	case SectionFile:
		return d.File
	case SectionSource:
		return d.Source
	case SectionParams:
		lines := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			line := p.Signature()
			if p.Description != "" {
				line += " - " + p.Description
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

// Render concatenates the configured sections. Each section with a label is
// preceded by "<label>:\n", and every section is followed by a blank line.
func (d *Descriptor) Render(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		if s.Label != "" {
			sb.WriteString(s.Label)
			sb.WriteString(":\n")
		}
		sb.WriteString(d.Text(s.Kind))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Registry maps owner#name to descriptors.
type Registry struct {
	entries map[string]*Descriptor
}

// NewRegistry creates a registry holding the given descriptors.
func NewRegistry(descs ...*Descriptor) *Registry {
	r := &Registry{entries: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		r.Add(d)
	}
	return r
}

// Add inserts or replaces a descriptor.
func (r *Registry) Add(d *Descriptor) {
	r.entries[key(d.Owner, "#"+d.Name)] = d
}

// Resolve returns the descriptor for owner and a "#name" path.
func (r *Registry) Resolve(owner, path string) (*Descriptor, error) {
	if !strings.HasPrefix(path, "#") {
		return nil, fmt.Errorf("invalid documentation path %q: expected #name", path)
	}
	d, ok := r.entries[key(owner, path)]
	if !ok {
		return nil, fmt.Errorf("no documentation for %s%s", owner, path)
	}
	return d, nil
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Keys returns every owner#name key, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func key(owner, path string) string {
	return owner + path
}
