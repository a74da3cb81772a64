package library

import (
	"strings"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

func (l *Library) listKeywords() []keyword.Keyword {
	return []keyword.Keyword{
		{
			Name: "get_list_items", Owner: "list", Params: params(pLoc, pOrdered, pSep),
			Doc: "Return the text of the items of a list, joined by sep. With ordered empty, an <ol> is read if one matches, otherwise a <ul>.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				kind, err := locator.ParseOrdered(c.Arg(1))
				if err != nil {
					return nil, err
				}
				items, err := findList(b, kind, locator.Parse(c.Arg(0))).Children(browser.KindListItem)
				if err != nil {
					return nil, err
				}
				texts := make([]string, 0, len(items))
				for _, item := range items {
					t, err := item.Text()
					if err != nil {
						return nil, err
					}
					texts = append(texts, t)
				}
				return strings.Join(texts, c.Arg(2)), nil
			}),
		},
	}
}

// findList returns the list element for kind. EitherList prefers an ordered
// list and falls back to an unordered one.
func findList(b browser.Browser, kind locator.ListKind, spec locator.Spec) browser.Element {
	switch kind {
	case locator.OrderedList:
		return b.Element(browser.KindOrderedList, spec)
	case locator.UnorderedList:
		return b.Element(browser.KindUnordered, spec)
	}
	if ol := b.Element(browser.KindOrderedList, spec); ol.Exists() {
		return ol
	}
	return b.Element(browser.KindUnordered, spec)
}
