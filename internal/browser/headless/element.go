package headless

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/locator"
)

// element is a browser.Element. Lazily resolved elements look themselves up
// under scope on every operation; fixed elements wrap a node directly.
type element struct {
	session *Session
	kind    browser.Kind
	spec    locator.Spec
	scope   func() (*html.Node, error)
	node    *html.Node
}

func (s *Session) fixed(n *html.Node, kind browser.Kind) *element {
	return &element{session: s, kind: kind, node: n}
}

func (e *element) resolve() (*html.Node, error) {
	if e.node != nil {
		return e.node, nil
	}
	root, err := e.scope()
	if err != nil {
		return nil, err
	}
	n, err := find(root, e.kind, e.spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", &browser.NotFoundError{Kind: e.kind, Spec: e.spec}, err)
	}
	if n == nil {
		return nil, &browser.NotFoundError{Kind: e.kind, Spec: e.spec}
	}
	return n, nil
}

// Exists reports whether the element can be found.
func (e *element) Exists() bool {
	_, err := e.resolve()
	return err == nil
}

// Visible reports whether the element and all its ancestors are shown.
func (e *element) Visible() (bool, error) {
	n, err := e.resolve()
	if err != nil {
		return false, err
	}
	return visible(n), nil
}

// Text returns the element's visible text.
func (e *element) Text() (string, error) {
	n, err := e.resolve()
	if err != nil {
		return "", err
	}
	return textOf(n), nil
}

// Attribute returns an attribute value, or "" when it is absent.
func (e *element) Attribute(name string) (string, error) {
	n, err := e.resolve()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(name, "value") {
		return valueOf(n), nil
	}
	return attr(n, name), nil
}

// Value returns the current value of a form control.
func (e *element) Value() (string, error) {
	n, err := e.resolve()
	if err != nil {
		return "", err
	}
	return valueOf(n), nil
}

func valueOf(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return textareaValue(n)
	case atom.Option:
		return optionValue(n)
	case atom.Select:
		for _, o := range children(n, browser.KindOption) {
			if optionSelected(o) {
				return optionValue(o)
			}
		}
		return ""
	default:
		return attr(n, "value")
	}
}

// Click follows links, submits forms and toggles checkboxes and radios.
// Clicking any other element has no effect.
func (e *element) Click(ctx context.Context) error {
	n, err := e.resolve()
	if err != nil {
		return err
	}
	if hasAttr(n, "disabled") {
		return fmt.Errorf("element %s is disabled", e.describe())
	}

	switch {
	case n.DataAtom == atom.A || n.DataAtom == atom.Area:
		return e.session.follow(ctx, n)
	case isKind(n, browser.KindCheckbox):
		toggleChecked(n, !hasAttr(n, "checked"))
		return nil
	case isKind(n, browser.KindRadio):
		checkRadio(n)
		return nil
	case isSubmitter(n):
		form := formOf(n)
		if form == nil {
			return nil
		}
		return e.session.submit(ctx, form, n)
	}
	if link := ancestor(n, atom.A); link != nil {
		return e.session.follow(ctx, link)
	}
	return nil
}

// Focus checks that the element exists. There is no focus state without script support.
func (e *element) Focus() error {
	_, err := e.resolve()
	return err
}

func (e *element) editable() (*html.Node, error) {
	n, err := e.resolve()
	if err != nil {
		return nil, err
	}
	if !isKind(n, browser.KindTextField) && !isKind(n, browser.KindFileField) {
		return nil, fmt.Errorf("element %s is not a text or file field", e.describe())
	}
	if hasAttr(n, "disabled") || hasAttr(n, "readonly") {
		return nil, fmt.Errorf("element %s is read-only", e.describe())
	}
	return n, nil
}

// Set replaces the value of a text or file field.
func (e *element) Set(value string) error {
	n, err := e.editable()
	if err != nil {
		return err
	}
	if n.DataAtom == atom.Textarea {
		setTextareaValue(n, value)
		return nil
	}
	if limit, err := strconv.Atoi(attr(n, "maxlength")); err == nil && limit >= 0 && len([]rune(value)) > limit {
		value = string([]rune(value)[:limit])
	}
	setAttr(n, "value", value)
	return nil
}

// Append adds text to the end of a text field's value.
func (e *element) Append(text string) error {
	n, err := e.editable()
	if err != nil {
		return err
	}
	return e.Set(valueOf(n) + text)
}

// Clear empties a text field.
func (e *element) Clear() error {
	return e.Set("")
}

// IsSet reports whether a checkbox or radio button is checked.
func (e *element) IsSet() (bool, error) {
	n, err := e.resolve()
	if err != nil {
		return false, err
	}
	if !isKind(n, browser.KindCheckbox) && !isKind(n, browser.KindRadio) {
		return false, fmt.Errorf("element %s is not a checkbox or radio button", e.describe())
	}
	return hasAttr(n, "checked"), nil
}

// SetChecked checks or unchecks a checkbox, or checks a radio button.
func (e *element) SetChecked(on bool) error {
	n, err := e.resolve()
	if err != nil {
		return err
	}
	if hasAttr(n, "disabled") {
		return fmt.Errorf("element %s is disabled", e.describe())
	}
	switch {
	case isKind(n, browser.KindCheckbox):
		toggleChecked(n, on)
		return nil
	case isKind(n, browser.KindRadio):
		if !on {
			return fmt.Errorf("radio button %s cannot be unset", e.describe())
		}
		checkRadio(n)
		return nil
	default:
		return fmt.Errorf("element %s is not a checkbox or radio button", e.describe())
	}
}

// SelectText selects the option whose text or label equals text.
func (e *element) SelectText(text string) error {
	return e.selectOption(text, func(o *html.Node) bool {
		if l, ok := attrOK(o, "label"); ok && l == text {
			return true
		}
		return textOf(o) == text
	})
}

// SelectValue selects the option whose value equals value.
func (e *element) SelectValue(value string) error {
	return e.selectOption(value, func(o *html.Node) bool {
		return optionValue(o) == value
	})
}

func (e *element) selectOption(want string, match func(*html.Node) bool) error {
	n, err := e.selectList()
	if err != nil {
		return err
	}
	options := children(n, browser.KindOption)
	for _, o := range options {
		if !match(o) {
			continue
		}
		if hasAttr(o, "disabled") {
			return fmt.Errorf("option %q in select list %s is disabled", want, e.describe())
		}
		if !hasAttr(n, "multiple") {
			for _, other := range options {
				removeAttr(other, "selected")
			}
		}
		setAttr(o, "selected", "selected")
		return nil
	}
	return fmt.Errorf("option %q not found in select list %s", want, e.describe())
}

// ClearSelection deselects every option of a multiple select list.
func (e *element) ClearSelection() error {
	n, err := e.selectList()
	if err != nil {
		return err
	}
	if !hasAttr(n, "multiple") {
		return fmt.Errorf("you can only clear multi-selects, and %s is not one", e.describe())
	}
	for _, o := range children(n, browser.KindOption) {
		removeAttr(o, "selected")
	}
	return nil
}

func (e *element) selectList() (*html.Node, error) {
	n, err := e.resolve()
	if err != nil {
		return nil, err
	}
	if n.DataAtom != atom.Select {
		return nil, fmt.Errorf("element %s is not a select list", e.describe())
	}
	return n, nil
}

// Selected reports whether an option is selected. With no explicit
// selection, the first option of a single select list counts as selected.
func (e *element) Selected() (bool, error) {
	n, err := e.resolve()
	if err != nil {
		return false, err
	}
	if n.DataAtom != atom.Option {
		return false, fmt.Errorf("element %s is not an option", e.describe())
	}
	return optionSelected(n), nil
}

func optionSelected(o *html.Node) bool {
	if hasAttr(o, "selected") {
		return true
	}
	sel := ancestor(o, atom.Select)
	if sel == nil || hasAttr(sel, "multiple") {
		return false
	}
	options := children(sel, browser.KindOption)
	for _, other := range options {
		if hasAttr(other, "selected") {
			return false
		}
	}
	return len(options) > 0 && options[0] == o
}

// Element finds a descendant of e.
func (e *element) Element(kind browser.Kind, spec locator.Spec) browser.Element {
	return &element{session: e.session, kind: kind, spec: spec, scope: e.resolve}
}

// Children lists descendants of one kind.
func (e *element) Children(kind browser.Kind) ([]browser.Element, error) {
	n, err := e.resolve()
	if err != nil {
		return nil, err
	}
	nodes := children(n, kind)
	out := make([]browser.Element, len(nodes))
	for i, c := range nodes {
		out[i] = e.session.fixed(c, kind)
	}
	return out, nil
}

func (e *element) describe() string {
	if e.node != nil {
		return "<" + e.node.Data + ">"
	}
	return e.spec.String()
}

func toggleChecked(n *html.Node, on bool) {
	if on {
		setAttr(n, "checked", "checked")
	} else {
		removeAttr(n, "checked")
	}
}

// checkRadio checks n and unchecks the other radios of its group.
func checkRadio(n *html.Node) {
	name := attr(n, "name")
	if name != "" {
		root := formOf(n)
		if root == nil {
			root = n
			for root.Parent != nil {
				root = root.Parent
			}
		}
		walk(root, func(o *html.Node) bool {
			if o != n && isKind(o, browser.KindRadio) && attr(o, "name") == name && formOf(o) == formOf(n) {
				removeAttr(o, "checked")
			}
			return true
		})
	}
	setAttr(n, "checked", "checked")
}

// follow navigates to a link's href, in a new window for target=_blank.
func (s *Session) follow(ctx context.Context, link *html.Node) error {
	href, ok := attrOK(link, "href")
	if !ok {
		return nil
	}
	href = strings.TrimSpace(href)
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil
	}
	w, err := s.win()
	if err != nil {
		return err
	}
	u, err := resolveRef(w.page().url, href)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", href, err)
	}
	req := request{method: http.MethodGet, url: u}
	if strings.EqualFold(attr(link, "target"), "_blank") {
		return s.openWindow(ctx, req)
	}
	return w.navigate(ctx, req)
}
