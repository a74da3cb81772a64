// Package keyword holds the table of remotely invokable keywords, their
// introspection and the engine that runs them.
package keyword

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/mj1618/keyword-server/internal/docs"
)

// Handler runs one keyword. The returned value is marshaled into the result
// envelope; a non-nil error turns the call into a failure.
type Handler func(c *Call) (any, error)

// Keyword is one registered, remotely invokable operation.
type Keyword struct {
	Name    string
	Owner   string // group the keyword belongs to, used for documentation lookup
	Doc     string
	Params  []docs.Param
	Handler Handler

	file   string
	source string
}

// Call is the invocation context passed to a Handler. Args always has one
// entry per declared parameter, with defaults filled in.
type Call struct {
	Ctx  context.Context
	Name string
	Args []string
	Out  io.Writer

	engine *Engine
}

// Arg returns the i-th argument, or "" if out of range.
func (c *Call) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Printf writes to the call's captured output.
func (c *Call) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the call's captured output.
func (c *Call) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Invoke runs another keyword from inside this one. The nested call captures
// its own output, which does not appear in this call's output.
func (c *Call) Invoke(name string, args ...string) Result {
	return c.engine.Invoke(c.Ctx, name, args)
}

func (k *Keyword) required() int {
	n := 0
	for _, p := range k.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// Normalize maps a keyword name to its lookup form: trimmed, lower case,
// spaces as underscores.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// Registry is the explicit table of keywords exposed by the server.
type Registry struct {
	byName map[string]*Keyword
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Keyword)}
}

// Register adds a keyword. Names must be unique after normalization.
func (r *Registry) Register(k Keyword) error {
	if k.Name == "" {
		return fmt.Errorf("keyword name is required")
	}
	if k.Handler == nil {
		return fmt.Errorf("keyword %q has no handler", k.Name)
	}
	seenOptional := false
	for _, p := range k.Params {
		if p.HasDefault {
			seenOptional = true
		} else if seenOptional {
			return fmt.Errorf("keyword %q: required parameter %q follows an optional one", k.Name, p.Name)
		}
	}
	key := Normalize(k.Name)
	if _, dup := r.byName[key]; dup {
		return fmt.Errorf("keyword %q is already registered", k.Name)
	}
	k.file, k.source = handlerLocation(k.Handler)
	r.byName[key] = &k
	return nil
}

// MustRegister registers each keyword and panics on error. It is meant for
// static tables built at startup.
func (r *Registry) MustRegister(ks ...Keyword) {
	for _, k := range ks {
		if err := r.Register(k); err != nil {
			panic(err)
		}
	}
}

// Lookup finds a keyword by exact or normalized name.
func (r *Registry) Lookup(name string) (*Keyword, bool) {
	k, ok := r.byName[Normalize(name)]
	return k, ok
}

// Names returns every registered keyword name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for _, k := range r.byName {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered keywords.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Descriptors builds the documentation descriptors of every keyword.
func (r *Registry) Descriptors() []*docs.Descriptor {
	out := make([]*docs.Descriptor, 0, len(r.byName))
	for _, name := range r.Names() {
		k, _ := r.Lookup(name)
		params := make([]docs.Param, len(k.Params))
		copy(params, k.Params)
		out = append(out, &docs.Descriptor{
			Owner:     k.Owner,
			Name:      k.Name,
			Params:    params,
			Docstring: k.Doc,
			File:      k.file,
			Source:    k.source,
		})
	}
	return out
}

// handlerLocation reports where a handler function is defined.
func handlerLocation(h Handler) (file, source string) {
	fn := runtime.FuncForPC(reflect.ValueOf(h).Pointer())
	if fn == nil {
		return "", ""
	}
	file, line := fn.FileLine(fn.Entry())
	return file, fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
}
