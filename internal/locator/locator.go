// Package locator parses locator expressions into match specifications.
//
// A locator expression is one of:
//
//	css=<selector>              match by CSS selector
//	xpath=<expression>          match by XPath expression
//	<value>                     shorthand for id=<value>
//	key=value[,key=value...]    match by attributes; /text/ matches text as a substring
package locator

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mj1618/keyword-server/internal/failure"
)

// Strategy identifies how a Spec selects elements.
type Strategy int

const (
	ByAttributes Strategy = iota
	ByCSS
	ByXPath
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	default:
		return "attributes"
	}
}

// Value is an attribute criterion: a literal string or a compiled pattern.
type Value struct {
	Text    string
	Pattern *regexp.Regexp
}

// Literal returns a Value matching s exactly.
func Literal(s string) Value {
	return Value{Text: s}
}

// IsPattern reports whether v matches by pattern rather than equality.
func (v Value) IsPattern() bool {
	return v.Pattern != nil
}

// Match reports whether s satisfies the criterion. Patterns match anywhere in s.
func (v Value) Match(s string) bool {
	if v.Pattern != nil {
		return v.Pattern.MatchString(s)
	}
	return s == v.Text
}

// String renders the value as it would appear in a locator expression.
func (v Value) String() string {
	if v.Pattern != nil {
		return "/" + v.Text + "/"
	}
	return v.Text
}

// Spec is a parsed locator expression.
type Spec struct {
	Strategy   Strategy
	Selector   string // CSS selector or XPath expression
	Attributes map[string]Value
}

// String renders the spec in a stable form for failure messages.
func (s Spec) String() string {
	switch s.Strategy {
	case ByCSS:
		return "css=" + s.Selector
	case ByXPath:
		return "xpath=" + s.Selector
	}
	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s.Attributes[k].String()
	}
	return strings.Join(parts, ",")
}

// Attr returns the named attribute criterion.
func (s Spec) Attr(name string) (Value, bool) {
	v, ok := s.Attributes[name]
	return v, ok
}

// Parse converts a locator expression into a Spec. Every input has a parse;
// an expression that matches nothing is reported later by the browser.
func Parse(raw string) Spec {
	raw = strings.TrimSpace(raw)

	if hasPrefixFold(raw, "css=") {
		return Spec{Strategy: ByCSS, Selector: raw[len("css="):]}
	}
	if hasPrefixFold(raw, "xpath=") {
		return Spec{Strategy: ByXPath, Selector: raw[len("xpath="):]}
	}
	if !strings.Contains(raw, "=") {
		return Spec{Strategy: ByAttributes, Attributes: map[string]Value{"id": Literal(raw)}}
	}

	attrs := make(map[string]Value)
	for _, token := range strings.Split(raw, ",") {
		key, value, _ := strings.Cut(token, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		attrs[key] = parseValue(value)
	}
	return Spec{Strategy: ByAttributes, Attributes: applyIDPrecedence(attrs)}
}

// applyIDPrecedence implements the id exclusivity rule: when an id criterion
// is present it is the only criterion, and every other attribute is dropped.
func applyIDPrecedence(attrs map[string]Value) map[string]Value {
	id, ok := attrs["id"]
	if !ok {
		return attrs
	}
	return map[string]Value{"id": id}
}

// parseValue trims value and turns "/text/" into a pattern matching text
// literally. The text between the slashes is kept as written.
func parseValue(value string) Value {
	v := strings.TrimSpace(value)
	if len(v) >= 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
		inner := v[1 : len(v)-1]
		return Value{Text: inner, Pattern: regexp.MustCompile(regexp.QuoteMeta(inner))}
	}
	return Literal(v)
}

// hasPrefixFold reports whether s begins with prefix, ignoring case. Strings
// shorter than prefix never match.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// OptionBy selects how an item of a select list is chosen.
type OptionBy int

const (
	OptionByText OptionBy = iota
	OptionByValue
)

// ParseOption parses an item locator of the form "text=<label>" or
// "value=<value>" (prefix case-insensitive).
func ParseOption(raw string) (OptionBy, string, error) {
	switch {
	case hasPrefixFold(raw, "text="):
		return OptionByText, raw[len("text="):], nil
	case hasPrefixFold(raw, "value="):
		return OptionByValue, raw[len("value="):], nil
	default:
		return OptionByText, "", failure.Usagef("The only attributes allowed are 'text' and 'value', got %q", raw)
	}
}
