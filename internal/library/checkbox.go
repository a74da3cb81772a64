package library

import (
	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
)

func (l *Library) checkboxKeywords() []keyword.Keyword {
	const owner = "checkbox"
	kind := browser.KindCheckbox
	return []keyword.Keyword{
		l.elementAction(owner, "select_checkbox", "Check a checkbox.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.SetChecked(true)
			}),
		l.elementAction(owner, "unselect_checkbox", "Uncheck a checkbox.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.SetChecked(false)
			}),
		l.elementAction(owner, "checkbox_should_be_selected", "Verify that a checkbox is checked.", kind,
			checkedState(true, "The checkbox located at %s is not checked off.")),
		l.elementAction(owner, "checkbox_should_not_be_selected", "Verify that a checkbox is not checked.", kind,
			checkedState(false, "The checkbox located at %s is checked off erroneously.")),
	}
}

func (l *Library) radioKeywords() []keyword.Keyword {
	const owner = "radio"
	kind := browser.KindRadio
	return []keyword.Keyword{
		l.elementAction(owner, "select_radio_button", "Select a radio button.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.SetChecked(true)
			}),
		l.elementAction(owner, "radio_button_should_be_selected", "Verify that a radio button is selected.", kind,
			checkedState(true, "The radio button located at %s is not selected.")),
		l.elementAction(owner, "radio_button_should_not_be_selected", "Verify that a radio button is not selected.", kind,
			checkedState(false, "The radio button located at %s is selected.")),
	}
}

// checkedState verifies that a checkbox or radio button is (not) checked.
// format receives the locator.
func checkedState(want bool, format string) func(c *keyword.Call, el browser.Element) (any, error) {
	return func(c *keyword.Call, el browser.Element) (any, error) {
		set, err := el.IsSet()
		if err != nil {
			return nil, err
		}
		if set != want {
			return nil, failure.Verifyf(failure.CheckSelection, format, c.Arg(0))
		}
		return nil, nil
	}
}
