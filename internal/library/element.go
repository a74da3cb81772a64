package library

import (
	"strings"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

func (l *Library) elementKeywords() []keyword.Keyword {
	const owner = "element"
	kind := browser.KindElement

	return []keyword.Keyword{
		l.elementAction(owner, "get_element_attribute", "Return the value of an attribute of an element.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return el.Attribute(c.Arg(1))
			}, named("attr")),
		l.elementAction(owner, "get_element_text", "Return the text of an element without markup.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return el.Text()
			}),
		l.elementAction(owner, "click_element", "Click any element.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Click(c.Ctx)
			}),
		l.elementAction(owner, "focus", "Set focus to an element.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Focus()
			}),
		l.elementAction(owner, "element_should_be_visible", "Verify that an element is visible.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				visible, err := el.Visible()
				if err != nil {
					return nil, err
				}
				if !visible {
					return nil, failure.Verifyf(failure.CheckVisibility, "The element described by %s is not visible", locator.Parse(c.Arg(0)))
				}
				return nil, nil
			}),
		l.elementAction(owner, "element_should_not_be_visible", "Verify that an element is not visible.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				visible, err := el.Visible()
				if err != nil {
					return nil, err
				}
				if visible {
					return nil, failure.Verifyf(failure.CheckVisibility, "The element described by %s is visible", locator.Parse(c.Arg(0)))
				}
				return nil, nil
			}),
		l.elementAction(owner, "element_text_should_contain", "Verify that the text of an element contains text.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				text, err := el.Text()
				if err != nil {
					return nil, err
				}
				if !strings.Contains(text, c.Arg(1)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The element's text %s does not contain the text %s", text, c.Arg(1))
				}
				return nil, nil
			}, pText),
		l.elementAction(owner, "element_text_should_be", "Verify that the text of an element equals text.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				text, err := el.Text()
				if err != nil {
					return nil, err
				}
				if text != c.Arg(1) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The element's text %s does not equal %s", text, c.Arg(1))
				}
				return nil, nil
			}, pText),
	}
}
