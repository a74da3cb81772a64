// Package library is the keyword catalogue exposed by the server. Keywords
// drive a browser.Browser session and the native capability, and report
// postcondition failures as verification failures.
package library

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
	"github.com/mj1618/keyword-server/internal/native"
)

// DefaultBrowser is the browser name used when open_browser gets none.
const DefaultBrowser = "firefox"

// DefaultSeparator joins multi-valued results such as list items.
const DefaultSeparator = ";;"

// Library holds the state shared by all keywords: the current browser
// session and the native provider. Keywords run one at a time.
type Library struct {
	launcher       browser.Launcher
	browser        browser.Browser
	defaultBrowser string

	newProvider func() (*native.Provider, error)
	provider    *native.Provider

	log *zap.Logger
	now func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) { lib.log = l }
}

// WithDefaultBrowser sets the default of the browser parameter.
func WithDefaultBrowser(name string) Option {
	return func(lib *Library) {
		if name != "" {
			lib.defaultBrowser = name
		}
	}
}

// WithNativeProvider replaces native.NewProvider as the source of the native
// capability. The provider is created on first use.
func WithNativeProvider(fn func() (*native.Provider, error)) Option {
	return func(lib *Library) { lib.newProvider = fn }
}

// New creates a library that starts browsers with launcher.
func New(launcher browser.Launcher, opts ...Option) *Library {
	l := &Library{
		launcher:       launcher,
		defaultBrowser: DefaultBrowser,
		newProvider:    native.NewProvider,
		log:            zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Keywords returns the full keyword table.
func (l *Library) Keywords() []keyword.Keyword {
	groups := [][]keyword.Keyword{
		l.browserKeywords(),
		l.elementKeywords(),
		l.pageKeywords(),
		l.formKeywords(),
		l.listKeywords(),
		l.tableKeywords(),
		l.selectKeywords(),
		l.checkboxKeywords(),
		l.radioKeywords(),
		l.textFieldKeywords(),
		l.fileFieldKeywords(),
		l.clickKeywords(),
		l.nativeKeywords(),
	}
	var all []keyword.Keyword
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// Register adds every keyword to reg.
func (l *Library) Register(reg *keyword.Registry) error {
	for _, k := range l.Keywords() {
		if err := reg.Register(k); err != nil {
			return fmt.Errorf("registering library: %w", err)
		}
	}
	return nil
}

// Close closes the open browser, if any.
func (l *Library) Close() error {
	if l.browser == nil {
		return nil
	}
	err := l.browser.Close()
	l.browser = nil
	return err
}

func (l *Library) launch(ctx context.Context, name string) error {
	if l.browser != nil {
		if err := l.browser.Close(); err != nil {
			l.log.Warn("closing previous browser", zap.Error(err))
		}
		l.browser = nil
	}
	b, err := l.launcher(ctx, name)
	if err != nil {
		return failure.Delegate(fmt.Errorf("starting browser %q: %w", name, err))
	}
	l.browser = b
	l.log.Info("browser opened", zap.String("browser", name))
	return nil
}

// session returns the open browser or a usage failure.
func (l *Library) session() (browser.Browser, error) {
	if l.browser == nil {
		return nil, failure.Usagef("No browser is open; call Open Browser first")
	}
	return l.browser, nil
}

// element returns a lazily resolved element of the current page.
func (l *Library) element(kind browser.Kind, loc string) (browser.Element, error) {
	b, err := l.session()
	if err != nil {
		return nil, err
	}
	return b.Element(kind, locator.Parse(loc)), nil
}

// delegate classifies a capability error, keeping failures that are already
// typed.
func delegate(err error) error {
	if err == nil {
		return nil
	}
	if failure.As(err) != nil {
		return err
	}
	return failure.Delegate(err)
}

// number parses a numeric keyword argument.
func number(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, failure.Usagef("Argument '%s' must be an integer, got %q", name, s)
	}
	return n, nil
}

// Shared parameter declarations.
var (
	pLoc      = docs.Param{Name: "loc", Description: "attribute/value pairs, css= or xpath= expression that match an HTML element"}
	pText     = docs.Param{Name: "text", Description: "the text to compare against"}
	pURL      = docs.Param{Name: "url", Description: "the URL to navigate to"}
	pSep      = docs.Param{Name: "sep", Default: DefaultSeparator, HasDefault: true, Description: "separator placed between results"}
	pOrdered  = docs.Param{Name: "ordered", HasDefault: true, Description: "true for <ol>, false for <ul>, empty to accept either"}
	pFormLoc  = docs.Param{Name: "form_loc", Description: "attribute/value pairs that match the form"}
	pFieldLoc = docs.Param{Name: "field_loc", Description: "attribute/value pairs that match the field inside the form"}
)

func params(ps ...docs.Param) []docs.Param {
	return ps
}

func named(name string) docs.Param {
	return docs.Required(name)
}

// elementAction builds a keyword that resolves one element and acts on it.
func (l *Library) elementAction(owner, name, doc string, kind browser.Kind, act func(c *keyword.Call, el browser.Element) (any, error), extra ...docs.Param) keyword.Keyword {
	return keyword.Keyword{
		Name:   name,
		Owner:  owner,
		Doc:    doc,
		Params: append(params(pLoc), extra...),
		Handler: func(c *keyword.Call) (any, error) {
			el, err := l.element(kind, c.Arg(0))
			if err != nil {
				return nil, err
			}
			ret, err := act(c, el)
			return ret, delegate(err)
		},
	}
}
