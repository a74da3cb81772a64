package headless

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/locator"
)

var textInputTypes = map[string]bool{
	"": true, "text": true, "password": true, "email": true, "search": true,
	"tel": true, "url": true, "number": true, "date": true, "time": true,
	"datetime-local": true, "month": true, "week": true, "color": true,
}

var buttonInputTypes = map[string]bool{
	"submit": true, "reset": true, "button": true, "image": true,
}

func inputType(n *html.Node) string {
	return strings.ToLower(strings.TrimSpace(attr(n, "type")))
}

// isKind reports whether n is an element of the given kind.
func isKind(n *html.Node, kind browser.Kind) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch kind {
	case browser.KindElement, "":
		return true
	case browser.KindButton:
		return n.DataAtom == atom.Button || (n.DataAtom == atom.Input && buttonInputTypes[inputType(n)])
	case browser.KindCheckbox:
		return n.DataAtom == atom.Input && inputType(n) == "checkbox"
	case browser.KindRadio:
		return n.DataAtom == atom.Input && inputType(n) == "radio"
	case browser.KindFileField:
		return n.DataAtom == atom.Input && inputType(n) == "file"
	case browser.KindTextField:
		return n.DataAtom == atom.Textarea || (n.DataAtom == atom.Input && textInputTypes[inputType(n)])
	case browser.KindSelect:
		return n.DataAtom == atom.Select
	case browser.KindLink:
		return n.DataAtom == atom.A
	case browser.KindImage:
		return n.DataAtom == atom.Img
	case browser.KindArea:
		return n.DataAtom == atom.Area
	case browser.KindForm:
		return n.DataAtom == atom.Form
	case browser.KindTable:
		return n.DataAtom == atom.Table
	case browser.KindTableHeader:
		return n.DataAtom == atom.Thead
	case browser.KindTableRow:
		return n.DataAtom == atom.Tr
	case browser.KindTableCell:
		return n.DataAtom == atom.Td || n.DataAtom == atom.Th
	case browser.KindOrderedList:
		return n.DataAtom == atom.Ol
	case browser.KindUnordered:
		return n.DataAtom == atom.Ul
	case browser.KindListItem:
		return n.DataAtom == atom.Li
	case browser.KindOption:
		return n.DataAtom == atom.Option
	default:
		return false
	}
}

// find returns the first element under root (excluding root) of the given
// kind matching spec. Invalid CSS and XPath expressions are returned as errors.
func find(root *html.Node, kind browser.Kind, spec locator.Spec) (*html.Node, error) {
	switch spec.Strategy {
	case locator.ByCSS:
		sel, err := cascadia.Compile(spec.Selector)
		if err != nil {
			return nil, fmt.Errorf("invalid css selector %q: %w", spec.Selector, err)
		}
		var found *html.Node
		goquery.NewDocumentFromNode(root).FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if n := s.Get(0); isKind(n, kind) {
				found = n
				return false
			}
			return true
		})
		return found, nil
	case locator.ByXPath:
		nodes, err := htmlquery.QueryAll(root, spec.Selector)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if isKind(n, kind) {
				return n, nil
			}
		}
		return nil, nil
	default:
		return findByAttributes(root, kind, spec.Attributes), nil
	}
}

// findByAttributes walks root in document order. The special criterion
// "index" picks the n-th (0-based) match of the remaining criteria.
func findByAttributes(root *html.Node, kind browser.Kind, attrs map[string]locator.Value) *html.Node {
	index := 0
	criteria := attrs
	if v, ok := attrs["index"]; ok {
		n, err := strconv.Atoi(v.Text)
		if err != nil || n < 0 {
			return nil
		}
		index = n
		criteria = make(map[string]locator.Value, len(attrs)-1)
		for k, v := range attrs {
			if k != "index" {
				criteria[k] = v
			}
		}
	}

	seen := 0
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n == root || !isKind(n, kind) || !matches(n, criteria) {
			return true
		}
		if seen == index {
			found = n
			return false
		}
		seen++
		return true
	})
	return found
}

// matches reports whether every criterion holds for n.
func matches(n *html.Node, criteria map[string]locator.Value) bool {
	for key, want := range criteria {
		if !matchOne(n, key, want) {
			return false
		}
	}
	return true
}

func matchOne(n *html.Node, key string, want locator.Value) bool {
	switch key {
	case "text":
		return want.Match(textOf(n))
	case "tag_name":
		return want.Match(n.Data)
	case "class":
		raw, ok := attrOK(n, "class")
		if !ok {
			return false
		}
		if want.IsPattern() {
			return want.Match(raw)
		}
		for _, c := range strings.Fields(raw) {
			if c == want.Text {
				return true
			}
		}
		return false
	case "url":
		if v, ok := attrOK(n, "href"); ok {
			return want.Match(v)
		}
		return want.Match(attr(n, "src"))
	case "value":
		if n.DataAtom == atom.Textarea {
			return want.Match(textareaValue(n))
		}
		if n.DataAtom == atom.Option {
			return want.Match(optionValue(n))
		}
		v, ok := attrOK(n, "value")
		return ok && want.Match(v)
	case "label":
		if n.DataAtom == atom.Option {
			if l, ok := attrOK(n, "label"); ok {
				return want.Match(l)
			}
			return want.Match(textOf(n))
		}
		v, ok := attrOK(n, "label")
		return ok && want.Match(v)
	default:
		v, ok := attrOK(n, strings.ReplaceAll(key, "_", "-"))
		if !ok {
			v, ok = attrOK(n, key)
		}
		return ok && want.Match(v)
	}
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// children lists descendants of root of the given kind without descending
// into a matched element, so the rows of a nested table are not included.
func children(root *html.Node, kind browser.Kind) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isKind(c, kind) {
				out = append(out, c)
				continue
			}
			if kind != browser.KindTable && c.DataAtom == atom.Table {
				continue
			}
			visit(c)
		}
	}
	visit(root)
	return out
}

func attr(n *html.Node, name string) string {
	v, _ := attrOK(n, name)
	return v
}

func attrOK(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := attrOK(n, name)
	return ok
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || !strings.EqualFold(a.Key, name) {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// visible reports whether neither n nor any ancestor is hidden.
func visible(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		switch cur.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Title, atom.Template, atom.Noscript:
			return false
		}
		if hidden(cur) {
			return false
		}
	}
	return true
}

// hidden reports whether n itself is hidden by an attribute or inline style.
func hidden(n *html.Node) bool {
	if hasAttr(n, "hidden") {
		return true
	}
	if n.DataAtom == atom.Input && inputType(n) == "hidden" {
		return true
	}
	style := strings.ToLower(strings.ReplaceAll(attr(n, "style"), " ", ""))
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

// textOf returns the rendered text of n: script and style content removed
// and whitespace collapsed.
func textOf(n *html.Node) string {
	sel := goquery.NewDocumentFromNode(n).Selection.Clone()
	sel.Find("script, style, noscript, template, head").Remove()
	if isKind(n, browser.KindElement) && !visible(n) {
		return ""
	}
	sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		if hidden(s.Get(0)) {
			s.Remove()
		}
	})
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func textareaValue(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func setTextareaValue(n *html.Node, value string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
}

func optionValue(n *html.Node) string {
	if v, ok := attrOK(n, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(textOf(n)), " ")
}

// ancestor returns the nearest ancestor of n with the given atom.
func ancestor(n *html.Node, a atom.Atom) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.DataAtom == a {
			return cur
		}
	}
	return nil
}
