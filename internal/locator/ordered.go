package locator

import (
	"strings"

	"github.com/mj1618/keyword-server/internal/failure"
)

// ListKind selects which HTML list elements a list keyword considers.
type ListKind int

const (
	// EitherList accepts an ordered or an unordered list, ordered first.
	EitherList ListKind = iota
	OrderedList
	UnorderedList
)

// DefaultListKind applies when the ordered flag is absent or empty.
const DefaultListKind = EitherList

// String returns the list kind name.
func (k ListKind) String() string {
	switch k {
	case OrderedList:
		return "ordered"
	case UnorderedList:
		return "unordered"
	default:
		return "either"
	}
}

// ParseOrdered parses the tri-state ordered flag. The empty string means the
// flag was not supplied; otherwise only "true" and "false" (any case) are
// accepted.
func ParseOrdered(s string) (ListKind, error) {
	switch strings.ToLower(s) {
	case "":
		return DefaultListKind, nil
	case "true":
		return OrderedList, nil
	case "false":
		return UnorderedList, nil
	default:
		return DefaultListKind, failure.Usagef("If you specify ordered vs. unordered lists, the only valid values are 'true' or 'false' (case-insensitive), got %q", s)
	}
}
