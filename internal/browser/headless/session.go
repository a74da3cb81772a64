// Package headless implements the browser capability without an external
// driver: pages are fetched over HTTP, parsed into a DOM and manipulated in
// memory. JavaScript is not executed.
package headless

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"time"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/locator"
)

// Options configures new sessions.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// NewLauncher returns a browser.Launcher producing headless sessions. The
// requested browser name is recorded but does not change behavior.
func NewLauncher(opts Options) browser.Launcher {
	return func(ctx context.Context, name string) (browser.Browser, error) {
		return New(name, opts)
	}
}

// Session is a headless browser with its own cookie jar and windows.
type Session struct {
	name      string
	client    *http.Client
	jar       *cookiejar.Jar
	userAgent string
	log       *zap.Logger

	windows []*window
	current int
	closed  bool
}

// New creates a session with one blank window.
func New(name string, opts Options) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		name:      name,
		client:    &http.Client{Jar: jar, Timeout: timeout},
		jar:       jar,
		userAgent: opts.UserAgent,
		log:       log.With(zap.String("browser", name)),
	}
	s.windows = []*window{newWindow(s, blank())}
	return s, nil
}

// Name returns the browser name the session was started with.
func (s *Session) Name() string {
	return s.name
}

func (s *Session) win() (*window, error) {
	if s.closed || len(s.windows) == 0 {
		return nil, browser.ErrClosed
	}
	return s.windows[s.current], nil
}

// Goto loads url in the current window.
func (s *Session) Goto(ctx context.Context, raw string) error {
	w, err := s.win()
	if err != nil {
		return err
	}
	u, err := parseURL(raw)
	if err != nil {
		return err
	}
	return w.navigate(ctx, request{method: http.MethodGet, url: u})
}

// Back moves one step back in the current window's history.
func (s *Session) Back(ctx context.Context) error {
	w, err := s.win()
	if err != nil {
		return err
	}
	if w.pos > 0 {
		w.pos--
	}
	return nil
}

// Forward moves one step forward in the current window's history.
func (s *Session) Forward(ctx context.Context) error {
	w, err := s.win()
	if err != nil {
		return err
	}
	if w.pos < len(w.history)-1 {
		w.pos++
	}
	return nil
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) error {
	w, err := s.win()
	if err != nil {
		return err
	}
	p, err := s.load(ctx, request{method: http.MethodGet, url: w.page().url})
	if err != nil {
		return err
	}
	w.history[w.pos] = p
	return nil
}

func (s *Session) currentPage() *page {
	w, err := s.win()
	if err != nil {
		return nil
	}
	return w.page()
}

// URL returns the current page's URL.
func (s *Session) URL() string {
	if p := s.currentPage(); p != nil {
		return p.url.String()
	}
	return ""
}

// Title returns the current page's title.
func (s *Session) Title() string {
	if p := s.currentPage(); p != nil {
		return p.title()
	}
	return ""
}

// HTML returns the current page's source, reflecting form state changes.
func (s *Session) HTML() string {
	if p := s.currentPage(); p != nil {
		return p.html()
	}
	return ""
}

// Text returns the visible text of the current page.
func (s *Session) Text() string {
	if p := s.currentPage(); p != nil {
		return p.text()
	}
	return ""
}

// Status returns the window status bar text, which is always empty without
// script support.
func (s *Session) Status() string {
	return ""
}

// Cookies returns the cookies visible to the current page, sorted by name.
func (s *Session) Cookies() ([]browser.Cookie, error) {
	p := s.currentPage()
	if p == nil {
		return nil, browser.ErrClosed
	}
	var out []browser.Cookie
	for _, c := range s.jar.Cookies(p.url) {
		out = append(out, browser.Cookie{Name: c.Name, Value: c.Value, Domain: p.url.Hostname(), Path: "/"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCookie expires the named cookie for the current site.
func (s *Session) DeleteCookie(name string) error {
	p := s.currentPage()
	if p == nil {
		return browser.ErrClosed
	}
	s.jar.SetCookies(p.url, []*http.Cookie{{Name: name, Path: "/", MaxAge: -1}})
	return nil
}

// ClearCookies drops every cookie of the session.
func (s *Session) ClearCookies() error {
	if s.closed {
		return browser.ErrClosed
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	s.jar = jar
	s.client.Jar = jar
	return nil
}

// ExecuteScript is not supported.
func (s *Session) ExecuteScript(code string) (any, error) {
	return nil, fmt.Errorf("execute script: %w", browser.ErrUnsupported)
}

// Windows lists the open windows.
func (s *Session) Windows() []browser.Window {
	if s.closed {
		return nil
	}
	out := make([]browser.Window, len(s.windows))
	for i, w := range s.windows {
		out[i] = w
	}
	return out
}

// Element returns a lazily resolved element in the current window.
func (s *Session) Element(kind browser.Kind, spec locator.Spec) browser.Element {
	return &element{
		session: s,
		kind:    kind,
		spec:    spec,
		scope: func() (*html.Node, error) {
			p := s.currentPage()
			if p == nil {
				return nil, browser.ErrClosed
			}
			return p.doc, nil
		},
	}
}

// ElementsByXPath returns every element matching expr in the current page.
func (s *Session) ElementsByXPath(expr string) ([]browser.Element, error) {
	p := s.currentPage()
	if p == nil {
		return nil, browser.ErrClosed
	}
	nodes, err := htmlquery.QueryAll(p.doc, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, s.fixed(n, browser.KindElement))
		}
	}
	return out, nil
}

// Close closes every window.
func (s *Session) Close() error {
	s.closed = true
	s.windows = nil
	s.current = 0
	s.client.CloseIdleConnections()
	return nil
}

// openWindow adds a window, leaving the current one active.
func (s *Session) openWindow(ctx context.Context, req request) error {
	w := newWindow(s, nil)
	if err := w.navigate(ctx, req); err != nil {
		return err
	}
	s.windows = append(s.windows, w)
	return nil
}

// window is one window with its own history.
type window struct {
	session *Session
	history []*page
	pos     int
}

func newWindow(s *Session, first *page) *window {
	w := &window{session: s}
	if first != nil {
		w.history = []*page{first}
	}
	return w
}

func (w *window) page() *page {
	if len(w.history) == 0 {
		return blank()
	}
	return w.history[w.pos]
}

func (w *window) navigate(ctx context.Context, req request) error {
	p, err := w.session.load(ctx, req)
	if err != nil {
		return err
	}
	if len(w.history) > 0 {
		w.history = w.history[:w.pos+1]
	}
	w.history = append(w.history, p)
	w.pos = len(w.history) - 1
	return nil
}

func (w *window) index() int {
	for i, o := range w.session.windows {
		if o == w {
			return i
		}
	}
	return -1
}

// Use makes w the current window.
func (w *window) Use() error {
	i := w.index()
	if i < 0 {
		return fmt.Errorf("window has been closed")
	}
	w.session.current = i
	return nil
}

// Close closes w. Closing the current window activates the previous one;
// closing the last window closes the browser.
func (w *window) Close() error {
	s := w.session
	i := w.index()
	if i < 0 {
		return fmt.Errorf("window has been closed")
	}
	s.windows = append(s.windows[:i], s.windows[i+1:]...)
	if len(s.windows) == 0 {
		return s.Close()
	}
	switch {
	case s.current > i:
		s.current--
	case s.current == i && i > 0:
		s.current = i - 1
	}
	return nil
}

// Current reports whether w is the active window.
func (w *window) Current() bool {
	i := w.index()
	return i >= 0 && i == w.session.current
}

// Title returns the title of the window's page.
func (w *window) Title() string {
	return w.page().title()
}

// URL returns the URL of the window's page.
func (w *window) URL() string {
	return w.page().url.String()
}

func resolveRef(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(r), nil
}
