package keyword

import (
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
)

// Catalog answers introspection requests by joining the keyword table with
// the documentation registry.
type Catalog struct {
	reg      *Registry
	docs     *docs.Registry
	sections []docs.Section
}

// NewCatalog creates a catalog. A nil documentation registry is built from
// the keyword table; nil sections mean docs.DefaultSections.
func NewCatalog(reg *Registry, d *docs.Registry, sections []docs.Section) *Catalog {
	if d == nil {
		d = docs.NewRegistry(reg.Descriptors()...)
	}
	if len(sections) == 0 {
		sections = docs.DefaultSections()
	}
	return &Catalog{reg: reg, docs: d, sections: sections}
}

// Names lists every keyword name in sorted order.
func (c *Catalog) Names() []string {
	return c.reg.Names()
}

// Arguments renders the declared parameters of a keyword in order, each as
// "name" or "name=default".
func (c *Catalog) Arguments(name string) ([]string, error) {
	d, err := c.descriptor(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Signature()
	}
	return out, nil
}

// Documentation renders the configured documentation sections of a keyword.
func (c *Catalog) Documentation(name string) (string, error) {
	d, err := c.descriptor(name)
	if err != nil {
		return "", err
	}
	return d.Render(c.sections), nil
}

// Sections returns the configured documentation sections.
func (c *Catalog) Sections() []docs.Section {
	return c.sections
}

func (c *Catalog) descriptor(name string) (*docs.Descriptor, error) {
	k, ok := c.reg.Lookup(name)
	if !ok {
		return nil, failure.Lookupf("No keyword with name '%s' found.", name)
	}
	d, err := c.docs.Resolve(k.Owner, "#"+k.Name)
	if err != nil {
		return nil, failure.Lookupf("%v", err)
	}
	return d, nil
}
