package locator

import (
	"strings"
	"testing"

	"github.com/mj1618/keyword-server/internal/failure"
)

func TestParse_IDShorthand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"username", "username"},
		{"  username  ", "username"},
		{"cs", "cs"},
		{"x", "x"},
		{"css", "css"},
		{"xpath", "xpath"},
	}
	for _, tt := range tests {
		spec := Parse(tt.input)
		if spec.Strategy != ByAttributes {
			t.Errorf("Parse(%q).Strategy = %v, want attributes", tt.input, spec.Strategy)
			continue
		}
		if len(spec.Attributes) != 1 {
			t.Errorf("Parse(%q) has %d attributes, want 1", tt.input, len(spec.Attributes))
		}
		if got := spec.Attributes["id"]; got.Text != tt.want || got.IsPattern() {
			t.Errorf("Parse(%q) id = %+v, want literal %q", tt.input, got, tt.want)
		}
	}
}

func TestParse_CSS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"css=div.main > a", "div.main > a"},
		{"CSS=#login", "#login"},
		{"Css=a[href='x=y']", "a[href='x=y']"},
		{"css=", ""},
	}
	for _, tt := range tests {
		spec := Parse(tt.input)
		if spec.Strategy != ByCSS {
			t.Errorf("Parse(%q).Strategy = %v, want css", tt.input, spec.Strategy)
		}
		if spec.Selector != tt.want {
			t.Errorf("Parse(%q).Selector = %q, want %q", tt.input, spec.Selector, tt.want)
		}
	}
}

func TestParse_XPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"xpath=//div[@id='a']", "//div[@id='a']"},
		{"XPath=//a", "//a"},
		{"  xpath=//ul/li  ", "//ul/li"},
	}
	for _, tt := range tests {
		spec := Parse(tt.input)
		if spec.Strategy != ByXPath {
			t.Errorf("Parse(%q).Strategy = %v, want xpath", tt.input, spec.Strategy)
		}
		if spec.Selector != tt.want {
			t.Errorf("Parse(%q).Selector = %q, want %q", tt.input, spec.Selector, tt.want)
		}
	}
}

func TestParse_ShortPrefixFallsThrough(t *testing.T) {
	// "cs=x" is shorter than the css= prefix match would need and is an attribute list.
	spec := Parse("cs=x")
	if spec.Strategy != ByAttributes {
		t.Fatalf("Strategy = %v, want attributes", spec.Strategy)
	}
	if got := spec.Attributes["cs"].Text; got != "x" {
		t.Errorf("cs = %q, want %q", got, "x")
	}
}

func TestParse_Attributes(t *testing.T) {
	spec := Parse("name = q , class=search")
	if spec.Strategy != ByAttributes {
		t.Fatalf("Strategy = %v, want attributes", spec.Strategy)
	}
	if got := spec.Attributes["name"]; got.Text != "q" || got.IsPattern() {
		t.Errorf("name = %+v, want literal q", got)
	}
	if got := spec.Attributes["class"]; got.Text != "search" {
		t.Errorf("class = %+v, want literal search", got)
	}
}

func TestParse_PatternValueIsLiteral(t *testing.T) {
	spec := Parse("a=1,b=/x.y/")

	if got := spec.Attributes["a"]; got.Text != "1" || got.IsPattern() {
		t.Errorf("a = %+v, want literal 1", got)
	}
	b := spec.Attributes["b"]
	if !b.IsPattern() {
		t.Fatalf("b should be a pattern, got %+v", b)
	}
	if !b.Match("x.y") {
		t.Error("pattern should match x.y")
	}
	if b.Match("xzy") {
		t.Error("the dot must be escaped; pattern should not match xzy")
	}
	if !b.Match("prefix x.y suffix") {
		t.Error("pattern should match as a substring")
	}
}

func TestParse_PatternValueNotTrimmed(t *testing.T) {
	spec := Parse("title=/ Home /")
	v := spec.Attributes["title"]
	if !v.IsPattern() {
		t.Fatalf("title should be a pattern, got %+v", v)
	}
	if v.Match("Home") {
		t.Error("pattern keeps its inner spaces and should not match bare Home")
	}
	if !v.Match("My Home Page") {
		t.Error("pattern should match text containing ' Home '")
	}
}

func TestParse_PatternValueSurroundedBySpaces(t *testing.T) {
	tests := []struct {
		input string
		key   string
	}{
		{"class=/btn/ ,type=submit", "class"},
		{"class = /btn/", "class"},
		{"name=q, title= /a.b/ ", "title"},
	}
	for _, tt := range tests {
		v := Parse(tt.input).Attributes[tt.key]
		if !v.IsPattern() {
			t.Errorf("Parse(%q)[%s] = %+v, want a pattern", tt.input, tt.key, v)
			continue
		}
		if v.Text == "" || strings.HasPrefix(v.Text, "/") {
			t.Errorf("Parse(%q)[%s] text = %q, want the text between the slashes", tt.input, tt.key, v.Text)
		}
	}
}

func TestParse_IDPrecedence(t *testing.T) {
	tests := []string{
		"id=foo,class=bar",
		"class=bar,id=foo",
		"name=n, id = foo ,index=2",
	}
	for _, input := range tests {
		spec := Parse(input)
		if len(spec.Attributes) != 1 {
			t.Errorf("Parse(%q) kept %d attributes, want only id", input, len(spec.Attributes))
		}
		if got := spec.Attributes["id"].Text; got != "foo" {
			t.Errorf("Parse(%q) id = %q, want foo", input, got)
		}
	}
}

func TestParse_ValueContainingEquals(t *testing.T) {
	spec := Parse("href=/a?b=c/")
	v := spec.Attributes["href"]
	if !v.IsPattern() || !v.Match("http://x/a?b=c") {
		t.Errorf("href = %+v, want pattern matching a?b=c", v)
	}
}

func TestParse_TokenWithoutValue(t *testing.T) {
	spec := Parse("name=q,disabled")
	v, ok := spec.Attr("disabled")
	if !ok {
		t.Fatal("disabled should be present")
	}
	if v.Text != "" {
		t.Errorf("disabled = %q, want empty", v.Text)
	}
}

func TestSpecString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"missing", "id=missing"},
		{"name=q,class=c", "class=c,name=q"},
		{"text=/Sign in/", "text=/Sign in/"},
		{"css=a.b", "css=a.b"},
		{"xpath=//a", "xpath=//a"},
	}
	for _, tt := range tests {
		if got := Parse(tt.input).String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		input string
		by    OptionBy
		want  string
	}{
		{"text=Blue", OptionByText, "Blue"},
		{"TEXT=Blue sky", OptionByText, "Blue sky"},
		{"value=b", OptionByValue, "b"},
		{"Value=", OptionByValue, ""},
	}
	for _, tt := range tests {
		by, got, err := ParseOption(tt.input)
		if err != nil {
			t.Errorf("ParseOption(%q) error: %v", tt.input, err)
			continue
		}
		if by != tt.by || got != tt.want {
			t.Errorf("ParseOption(%q) = %v %q, want %v %q", tt.input, by, got, tt.by, tt.want)
		}
	}

	if _, _, err := ParseOption("label=Blue"); failure.KindOf(err) != failure.KindUsage {
		t.Errorf("ParseOption(label=) error = %v, want usage failure", err)
	}
}
