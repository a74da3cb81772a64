package docs

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// OverlayEntry replaces parts of one keyword's documentation. Empty fields
// leave the existing text unchanged.
type OverlayEntry struct {
	Owner     string            `yaml:"owner"`
	Name      string            `yaml:"name"`
	Docstring string            `yaml:"docstring,omitempty"`
	Params    map[string]string `yaml:"params,omitempty"` // parameter name -> description
}

// Overlay is the on-disk documentation overlay format.
type Overlay struct {
	Keywords []OverlayEntry `yaml:"keywords"`
}

// LoadFile reads an overlay file and applies it to r.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening documentation overlay: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}

// Load decodes a YAML overlay and applies it to r. Entries naming a keyword
// the registry does not know are an error.
func (r *Registry) Load(rd io.Reader) error {
	var ov Overlay
	if err := yaml.NewDecoder(rd).Decode(&ov); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding documentation overlay: %w", err)
	}
	for _, e := range ov.Keywords {
		d, err := r.Resolve(e.Owner, "#"+e.Name)
		if err != nil {
			return fmt.Errorf("documentation overlay: %w", err)
		}
		if e.Docstring != "" {
			d.Docstring = e.Docstring
		}
		for i, p := range d.Params {
			if desc, ok := e.Params[p.Name]; ok {
				d.Params[i].Description = desc
			}
		}
	}
	return nil
}
