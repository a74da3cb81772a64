// Package browser defines the browser automation capability that keywords
// drive. Implementations live in subpackages.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/mj1618/keyword-server/internal/locator"
)

// ErrUnsupported is returned when an implementation cannot perform an operation.
var ErrUnsupported = errors.New("not supported by this browser")

// ErrClosed is returned for operations on a browser that has been closed.
var ErrClosed = errors.New("browser has been closed")

// Kind restricts an element lookup to one kind of HTML element.
type Kind string

const (
	KindElement     Kind = "element"
	KindArea        Kind = "area"
	KindButton      Kind = "button"
	KindCheckbox    Kind = "checkbox"
	KindFileField   Kind = "file_field"
	KindForm        Kind = "form"
	KindImage       Kind = "image"
	KindLink        Kind = "link"
	KindListItem    Kind = "li"
	KindOption      Kind = "option"
	KindOrderedList Kind = "ol"
	KindRadio       Kind = "radio"
	KindSelect      Kind = "select"
	KindTable       Kind = "table"
	KindTableCell   Kind = "cell"
	KindTableHeader Kind = "thead"
	KindTableRow    Kind = "row"
	KindTextField   Kind = "text_field"
	KindUnordered   Kind = "ul"
)

// Cookie is a browser cookie as returned to keyword callers.
type Cookie struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Domain string `yaml:"domain,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// Map returns the cookie as a string map for the wire.
func (c Cookie) Map() map[string]string {
	return map[string]string{"name": c.Name, "value": c.Value, "domain": c.Domain, "path": c.Path}
}

// Browser is one automation session with one or more windows.
type Browser interface {
	Goto(ctx context.Context, url string) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Refresh(ctx context.Context) error

	URL() string
	Title() string
	HTML() string
	Text() string
	Status() string

	Cookies() ([]Cookie, error)
	DeleteCookie(name string) error
	ClearCookies() error

	ExecuteScript(code string) (any, error)

	// Windows lists open windows in the order they were opened.
	Windows() []Window

	// Element returns a lazily resolved element of the given kind in the
	// current window. It never fails; operations on an element that does not
	// exist return an error.
	Element(kind Kind, spec locator.Spec) Element
	ElementsByXPath(expr string) ([]Element, error)

	Close() error
}

// Window is one browser window or tab.
type Window interface {
	Use() error
	Close() error
	Current() bool
	Title() string
	URL() string
}

// Element is an element handle. Handles returned by Browser.Element and
// Element.Element are resolved again on every operation.
type Element interface {
	Exists() bool
	Visible() (bool, error)
	Text() (string, error)
	Attribute(name string) (string, error)
	Value() (string, error)

	Click(ctx context.Context) error
	Focus() error

	// Set replaces a text or file field's value.
	Set(value string) error
	Append(text string) error
	Clear() error

	// IsSet reports whether a checkbox or radio button is checked.
	IsSet() (bool, error)
	SetChecked(on bool) error

	// SelectText and SelectValue choose an option of a select list.
	SelectText(text string) error
	SelectValue(value string) error
	// ClearSelection deselects every option of a multiple select list.
	ClearSelection() error
	// Selected reports whether an option is selected.
	Selected() (bool, error)

	// Element finds a descendant.
	Element(kind Kind, spec locator.Spec) Element
	// Children lists descendants of one kind in document order, not
	// descending into nested elements of the same kind.
	Children(kind Kind) ([]Element, error)
}

// Launcher starts a browser session. name is the browser requested by the
// caller, such as "firefox".
type Launcher func(ctx context.Context, name string) (Browser, error)

// NotFoundError is returned by operations on an element that does not exist.
type NotFoundError struct {
	Kind Kind
	Spec locator.Spec
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to locate %s, using %s", describe(e.Kind), e.Spec)
}

func describe(k Kind) string {
	switch k {
	case KindElement, "":
		return "element"
	case KindTextField:
		return "text field"
	case KindFileField:
		return "file field"
	case KindOrderedList:
		return "ordered list"
	case KindUnordered:
		return "unordered list"
	case KindListItem:
		return "list item"
	case KindTableRow:
		return "table row"
	case KindTableCell:
		return "table cell"
	case KindTableHeader:
		return "table header"
	case KindSelect:
		return "select list"
	case KindRadio:
		return "radio button"
	default:
		return string(k)
	}
}
