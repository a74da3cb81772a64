package library

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
)

func (l *Library) textFieldKeywords() []keyword.Keyword {
	const owner = "text_field"
	kind := browser.KindTextField
	return []keyword.Keyword{
		l.elementAction(owner, "focus_textfield", "Focus the cursor inside a text field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Focus()
			}),
		l.elementAction(owner, "input_text", "Replace the value of a text field with text.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				l.log.Debug("input text", zap.String("locator", c.Arg(0)), zap.String("text", c.Arg(1)))
				return nil, el.Set(c.Arg(1))
			}, docs.Param{Name: "text", Description: "the text to type into the field"}),
		l.elementAction(owner, "input_password", "Replace the value of a password field. The password is never logged.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				l.log.Debug("input password", zap.String("locator", c.Arg(0)))
				return nil, el.Set(c.Arg(1))
			}, docs.Param{Name: "password", Description: "the password to type into the field"}),
		l.elementAction(owner, "clear_textfield", "Clear a text field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Clear()
			}),
		l.elementAction(owner, "get_textfield_value", "Return the value of a text field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return el.Value()
			}),
		l.elementAction(owner, "append_to_textfield", "Append text to the value of a text field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Append(c.Arg(1))
			}, docs.Param{Name: "text", Description: "the text to append"}),
		l.elementAction(owner, "textfield_should_contain", "Verify that the value of a text field contains text.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				v, err := el.Value()
				if err != nil {
					return nil, err
				}
				if !strings.Contains(v, c.Arg(1)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The textfield located at %s does not contain the text %s", c.Arg(0), c.Arg(1))
				}
				return nil, nil
			}, pText),
		l.elementAction(owner, "textfield_should_be", "Verify that the value of a text field equals text.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				v, err := el.Value()
				if err != nil {
					return nil, err
				}
				if v != c.Arg(1) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The textfield located at %s does not have text equal to %s", c.Arg(0), c.Arg(1))
				}
				return nil, nil
			}, pText),
	}
}

func (l *Library) fileFieldKeywords() []keyword.Keyword {
	const owner = "file_field"
	kind := browser.KindFileField
	return []keyword.Keyword{
		l.elementAction(owner, "choose_file", "Put the path of a file into a file upload field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return nil, el.Set(c.Arg(1))
			}, docs.Param{Name: "path", Description: "the path of the file to upload"}),
		l.elementAction(owner, "get_filefield_path", "Return the file path in a file upload field.", kind,
			func(c *keyword.Call, el browser.Element) (any, error) {
				return el.Value()
			}),
	}
}
