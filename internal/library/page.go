package library

import (
	"strings"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

// presenceKind is one element kind with page and form presence checks.
type presenceKind struct {
	suffix string // keyword name suffix
	label  string // noun used in failure messages
	kind   browser.Kind
}

var pageKinds = []presenceKind{
	{"area", "area", browser.KindArea},
	{"button", "button", browser.KindButton},
	{"checkbox", "checkbox", browser.KindCheckbox},
	{"element", "element", browser.KindElement},
	{"image", "image", browser.KindImage},
	{"link", "link", browser.KindLink},
	{"radio_button", "radio button", browser.KindRadio},
	{"select_list", "select list", browser.KindSelect},
	{"textfield", "text field", browser.KindTextField},
}

func (l *Library) pageKeywords() []keyword.Keyword {
	const owner = "page"
	ks := []keyword.Keyword{
		{
			Name: "log_page_source", Owner: owner,
			Doc: "Print the HTML source of the current page to the keyword output.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				c.Printf("%s", b.HTML())
				return nil, nil
			}),
		},
		{
			Name: "get_page_source", Owner: owner,
			Doc:     "Return the HTML source of the current page.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) { return b.HTML(), nil }),
		},
		{
			Name: "get_page_text", Owner: owner,
			Doc:     "Return the text of the current page without markup.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) { return b.Text(), nil }),
		},
		{
			Name: "get_page_status", Owner: owner,
			Doc:     "Return the status bar text of the browser window.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) { return b.Status(), nil }),
		},
		{
			Name: "get_title", Owner: owner,
			Doc:     "Return the title of the current page.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) { return b.Title(), nil }),
		},
		{
			Name: "get_all_elements_by_xpath", Owner: owner, Params: params(named("xpath"), pSep),
			Doc: "Return the text of every element matching an XPath query, joined by sep.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				els, err := b.ElementsByXPath(c.Arg(0))
				if err != nil {
					return nil, err
				}
				texts := make([]string, 0, len(els))
				for _, el := range els {
					t, err := el.Text()
					if err != nil {
						return nil, err
					}
					texts = append(texts, t)
				}
				return strings.Join(texts, c.Arg(1)), nil
			}),
		},
		{
			Name: "execute_javascript", Owner: owner, Params: params(named("code")),
			Doc: "Execute JavaScript in the current page and return its result.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return b.ExecuteScript(c.Arg(0))
			}),
		},
		{
			Name: "page_should_contain", Owner: owner, Params: params(pText),
			Doc: "Verify that the page text contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if page := b.Text(); !strings.Contains(page, c.Arg(0)) {
					return nil, failure.Verifyf(failure.CheckPageMatch, "The expected text %s was not contained in the page: %s", c.Arg(0), page)
				}
				return nil, nil
			}),
		},
		{
			Name: "page_should_not_contain", Owner: owner, Params: params(pText),
			Doc: "Verify that the page text does not contain text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if page := b.Text(); strings.Contains(page, c.Arg(0)) {
					return nil, failure.Verifyf(failure.CheckPageMatch, "The expected text %s was contained in the page erroneously: %s", c.Arg(0), page)
				}
				return nil, nil
			}),
		},
		{
			Name: "page_should_contain_list", Owner: owner, Params: params(pLoc, pOrdered),
			Doc: "Verify that a list exists on the page. ordered selects <ol> (true) or <ul> (false); empty accepts either.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				kind, err := locator.ParseOrdered(c.Arg(1))
				if err != nil {
					return nil, err
				}
				if !listExists(b, kind, locator.Parse(c.Arg(0))) {
					return nil, failure.Verifyf(failure.CheckExistence, "The %s described by %s is not contained within the page:\n%s", listLabel(kind), c.Arg(0), b.HTML())
				}
				return nil, nil
			}),
		},
		{
			Name: "page_should_not_contain_list", Owner: owner, Params: params(pLoc, pOrdered),
			Doc: "Verify that a list does not exist on the page. ordered selects <ol> (true) or <ul> (false); empty checks both.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				kind, err := locator.ParseOrdered(c.Arg(1))
				if err != nil {
					return nil, err
				}
				if listExists(b, kind, locator.Parse(c.Arg(0))) {
					return nil, failure.Verifyf(failure.CheckAbsence, "The %s described by %s is erroneously contained within the page:\n%s", listLabel(kind), c.Arg(0), b.HTML())
				}
				return nil, nil
			}),
		},
		{
			Name: "title_should_be", Owner: owner, Params: params(named("title")),
			Doc: "Verify that the page title equals title.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if got := b.Title(); got != c.Arg(0) {
					return nil, failure.Verifyf(failure.CheckTitleMatch, "The page title %s is not correct; it should be %s", got, c.Arg(0))
				}
				return nil, nil
			}),
		},
		{
			Name: "title_should_contain", Owner: owner, Params: params(pText),
			Doc: "Verify that the page title contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if got := b.Title(); !strings.Contains(got, c.Arg(0)) {
					return nil, failure.Verifyf(failure.CheckTitleMatch, "The page title %s is not correct; it should contain %s", got, c.Arg(0))
				}
				return nil, nil
			}),
		},
	}
	for _, pk := range pageKinds {
		ks = append(ks, l.pagePresence(pk, true), l.pagePresence(pk, false))
	}
	return ks
}

// pagePresence builds page_should_contain_<kind> or its negation.
func (l *Library) pagePresence(pk presenceKind, want bool) keyword.Keyword {
	name := "page_should_contain_" + pk.suffix
	doc := "Verify that the " + pk.label + " exists on the page."
	if !want {
		name = "page_should_not_contain_" + pk.suffix
		doc = "Verify that the " + pk.label + " does not exist on the page."
	}
	return keyword.Keyword{
		Name: name, Owner: "page", Doc: doc, Params: params(pLoc),
		Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
			exists := b.Element(pk.kind, locator.Parse(c.Arg(0))).Exists()
			switch {
			case want && !exists:
				return nil, failure.Verifyf(failure.CheckExistence, "The %s described by %s is not contained within the page:\n%s", pk.label, c.Arg(0), b.HTML())
			case !want && exists:
				return nil, failure.Verifyf(failure.CheckAbsence, "The %s described by %s is erroneously contained within the page:\n%s", pk.label, c.Arg(0), b.HTML())
			}
			return nil, nil
		}),
	}
}

func listExists(b browser.Browser, kind locator.ListKind, spec locator.Spec) bool {
	switch kind {
	case locator.OrderedList:
		return b.Element(browser.KindOrderedList, spec).Exists()
	case locator.UnorderedList:
		return b.Element(browser.KindUnordered, spec).Exists()
	default:
		return b.Element(browser.KindOrderedList, spec).Exists() || b.Element(browser.KindUnordered, spec).Exists()
	}
}

func listLabel(kind locator.ListKind) string {
	switch kind {
	case locator.OrderedList:
		return "ordered list"
	case locator.UnorderedList:
		return "unordered list"
	default:
		return "list"
	}
}
