package headless

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mj1618/keyword-server/internal/browser"
)

// isSubmitter reports whether clicking n submits its form.
func isSubmitter(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Input:
		t := inputType(n)
		return t == "submit" || t == "image"
	case atom.Button:
		t := inputType(n)
		return t == "" || t == "submit"
	}
	return false
}

// formOf returns the form owning a control: the one named by its form
// attribute, otherwise the nearest enclosing form.
func formOf(n *html.Node) *html.Node {
	if id, ok := attrOK(n, "form"); ok && n.DataAtom != atom.Form {
		root := n
		for root.Parent != nil {
			root = root.Parent
		}
		var found *html.Node
		walk(root, func(c *html.Node) bool {
			if c.Type == html.ElementNode && c.DataAtom == atom.Form && attr(c, "id") == id {
				found = c
				return false
			}
			return true
		})
		return found
	}
	return ancestor(n, atom.Form)
}

// formValues collects the successful controls of form. submitter, when not
// nil, is the only button included.
func formValues(form, submitter *html.Node) url.Values {
	values := url.Values{}
	root := form
	for root.Parent != nil {
		root = root.Parent
	}
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || formOf(n) != form {
			return true
		}
		name := attr(n, "name")
		if hasAttr(n, "disabled") {
			return true
		}
		switch n.DataAtom {
		case atom.Input:
			switch t := inputType(n); {
			case t == "checkbox" || t == "radio":
				if name != "" && hasAttr(n, "checked") {
					v, ok := attrOK(n, "value")
					if !ok {
						v = "on"
					}
					values.Add(name, v)
				}
			case t == "image":
				if n == submitter {
					prefix := ""
					if name != "" {
						prefix = name + "."
					}
					values.Add(prefix+"x", "0")
					values.Add(prefix+"y", "0")
				}
			case buttonInputTypes[t]:
				if n == submitter && name != "" {
					values.Add(name, attr(n, "value"))
				}
			default:
				if name != "" {
					values.Add(name, attr(n, "value"))
				}
			}
		case atom.Button:
			if n == submitter && name != "" {
				values.Add(name, attr(n, "value"))
			}
		case atom.Textarea:
			if name != "" {
				values.Add(name, textareaValue(n))
			}
		case atom.Select:
			if name != "" {
				for _, o := range children(n, browser.KindOption) {
					if optionSelected(o) && !hasAttr(o, "disabled") {
						values.Add(name, optionValue(o))
					}
				}
			}
			return false
		}
		return true
	})
	return values
}

// submit sends form as the submitter button would.
func (s *Session) submit(ctx context.Context, form, submitter *html.Node) error {
	w, err := s.win()
	if err != nil {
		return err
	}
	base := w.page().url

	action := attr(form, "action")
	method := strings.ToUpper(strings.TrimSpace(attr(form, "method")))
	target := attr(form, "target")
	if submitter != nil {
		if v, ok := attrOK(submitter, "formaction"); ok {
			action = v
		}
		if v, ok := attrOK(submitter, "formmethod"); ok {
			method = strings.ToUpper(strings.TrimSpace(v))
		}
	}
	if method != http.MethodPost {
		method = http.MethodGet
	}

	u, err := resolveRef(base, strings.TrimSpace(action))
	if err != nil {
		return fmt.Errorf("invalid form action %q: %w", action, err)
	}
	req := request{method: method, url: u, form: formValues(form, submitter)}
	s.log.Debug("submitting form")
	if strings.EqualFold(target, "_blank") {
		return s.openWindow(ctx, req)
	}
	return w.navigate(ctx, req)
}
