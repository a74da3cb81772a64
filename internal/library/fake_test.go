package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/locator"
	"github.com/mj1618/keyword-server/internal/native"
)

// fakeBrowser is an in-memory browser.Browser. Elements are registered by
// kind and locator expression; anything else does not exist.
type fakeBrowser struct {
	name     string
	url      string
	title    string
	html     string
	text     string
	cookies  []browser.Cookie
	elements map[string]*fakeElement
	windows  []*fakeWindow
	current  int
	closed   bool
	visited  []string
}

func newFakeBrowser(name string) *fakeBrowser {
	b := &fakeBrowser{name: name, elements: map[string]*fakeElement{}}
	b.windows = []*fakeWindow{{b: b, title: "One", url: "http://one/"}}
	return b
}

func elementKey(kind browser.Kind, spec locator.Spec) string {
	return string(kind) + "|" + spec.String()
}

func (b *fakeBrowser) add(kind browser.Kind, loc string, el *fakeElement) *fakeElement {
	b.elements[elementKey(kind, locator.Parse(loc))] = el
	return el
}

func (b *fakeBrowser) addWindow(title, url string) {
	b.windows = append(b.windows, &fakeWindow{b: b, title: title, url: url})
}

func (b *fakeBrowser) Goto(ctx context.Context, url string) error {
	b.url = url
	b.visited = append(b.visited, url)
	return nil
}
func (b *fakeBrowser) Back(ctx context.Context) error    { return nil }
func (b *fakeBrowser) Forward(ctx context.Context) error { return nil }
func (b *fakeBrowser) Refresh(ctx context.Context) error { return nil }
func (b *fakeBrowser) URL() string                       { return b.url }
func (b *fakeBrowser) Title() string                     { return b.title }
func (b *fakeBrowser) HTML() string                      { return b.html }
func (b *fakeBrowser) Text() string                      { return b.text }
func (b *fakeBrowser) Status() string                    { return "" }

func (b *fakeBrowser) Cookies() ([]browser.Cookie, error) { return b.cookies, nil }
func (b *fakeBrowser) DeleteCookie(name string) error {
	out := b.cookies[:0]
	for _, c := range b.cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	b.cookies = out
	return nil
}
func (b *fakeBrowser) ClearCookies() error {
	b.cookies = nil
	return nil
}

func (b *fakeBrowser) ExecuteScript(code string) (any, error) {
	return nil, fmt.Errorf("execute script: %w", browser.ErrUnsupported)
}

func (b *fakeBrowser) Windows() []browser.Window {
	out := make([]browser.Window, len(b.windows))
	for i, w := range b.windows {
		out[i] = w
	}
	return out
}

func (b *fakeBrowser) Element(kind browser.Kind, spec locator.Spec) browser.Element {
	if el, ok := b.elements[elementKey(kind, spec)]; ok {
		return el
	}
	return &fakeElement{missing: &browser.NotFoundError{Kind: kind, Spec: spec}}
}

func (b *fakeBrowser) ElementsByXPath(expr string) ([]browser.Element, error) {
	var out []browser.Element
	for _, text := range []string{"a", "b"} {
		out = append(out, &fakeElement{text: text})
	}
	return out, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	b.windows = nil
	return nil
}

type fakeWindow struct {
	b          *fakeBrowser
	title, url string
}

func (w *fakeWindow) index() int {
	for i, o := range w.b.windows {
		if o == w {
			return i
		}
	}
	return -1
}

func (w *fakeWindow) Use() error {
	i := w.index()
	if i < 0 {
		return errors.New("window closed")
	}
	w.b.current = i
	return nil
}

func (w *fakeWindow) Close() error {
	i := w.index()
	if i < 0 {
		return errors.New("window closed")
	}
	w.b.windows = append(w.b.windows[:i], w.b.windows[i+1:]...)
	if w.b.current > i {
		w.b.current--
	}
	return nil
}

func (w *fakeWindow) Current() bool { return w.index() == w.b.current }
func (w *fakeWindow) Title() string { return w.title }
func (w *fakeWindow) URL() string   { return w.url }

// fakeElement is a browser.Element with fixed state. A missing element fails
// every operation with its NotFoundError.
type fakeElement struct {
	missing  *browser.NotFoundError
	hidden   bool
	text     string
	value    string
	attrs    map[string]string
	checked  bool
	selected bool
	clicks   int
	children map[browser.Kind][]browser.Element
	sub      map[string]*fakeElement
}

func (e *fakeElement) err() error {
	if e.missing != nil {
		return e.missing
	}
	return nil
}

func (e *fakeElement) Exists() bool { return e.missing == nil }

func (e *fakeElement) Visible() (bool, error) { return !e.hidden, e.err() }
func (e *fakeElement) Text() (string, error)  { return e.text, e.err() }
func (e *fakeElement) Value() (string, error) { return e.value, e.err() }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], e.err()
}

func (e *fakeElement) Click(ctx context.Context) error {
	if err := e.err(); err != nil {
		return err
	}
	e.clicks++
	return nil
}

func (e *fakeElement) Focus() error { return e.err() }

func (e *fakeElement) Set(value string) error {
	if err := e.err(); err != nil {
		return err
	}
	e.value = value
	return nil
}

func (e *fakeElement) Append(text string) error { return e.Set(e.value + text) }
func (e *fakeElement) Clear() error             { return e.Set("") }

func (e *fakeElement) IsSet() (bool, error) { return e.checked, e.err() }

func (e *fakeElement) SetChecked(on bool) error {
	if err := e.err(); err != nil {
		return err
	}
	e.checked = on
	return nil
}

func (e *fakeElement) SelectText(text string) error   { return e.choose(text) }
func (e *fakeElement) SelectValue(value string) error { return e.choose(value) }

func (e *fakeElement) choose(v string) error {
	if err := e.err(); err != nil {
		return err
	}
	for _, o := range e.children[browser.KindOption] {
		fo := o.(*fakeElement)
		if fo.value == v || fo.text == v {
			fo.selected = true
			return nil
		}
	}
	return fmt.Errorf("option %q not found", v)
}

func (e *fakeElement) ClearSelection() error {
	if err := e.err(); err != nil {
		return err
	}
	for _, o := range e.children[browser.KindOption] {
		o.(*fakeElement).selected = false
	}
	return nil
}

func (e *fakeElement) Selected() (bool, error) { return e.selected, e.err() }

func (e *fakeElement) Element(kind browser.Kind, spec locator.Spec) browser.Element {
	if e.missing == nil {
		if el, ok := e.sub[elementKey(kind, spec)]; ok {
			return el
		}
	}
	return &fakeElement{missing: &browser.NotFoundError{Kind: kind, Spec: spec}}
}

func (e *fakeElement) Children(kind browser.Kind) ([]browser.Element, error) {
	if err := e.err(); err != nil {
		return nil, err
	}
	return e.children[kind], nil
}

// fakeMouse records native mouse events.
type fakeMouse struct {
	events []string
}

func (m *fakeMouse) Move(x, y int) error {
	m.events = append(m.events, fmt.Sprintf("move %d,%d", x, y))
	return nil
}

func (m *fakeMouse) Press(b native.MouseButton) error {
	m.events = append(m.events, "press "+b.String())
	return nil
}

func (m *fakeMouse) Release(b native.MouseButton) error {
	m.events = append(m.events, "release "+b.String())
	return nil
}
