package headless

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/locator"
)

const indexHTML = `<html>
<head><title>Index  Page</title><style>.x{}</style></head>
<body>
  <h1 id="heading">Welcome</h1>
  <p id="hidden" style="display: none">secret</p>
  <p class="note intro">Hello <b>world</b></p>
  <a id="next" href="/second">Second page</a>
  <a id="popup" href="/second" target="_blank">Popup</a>
  <a id="noop" href="javascript:void(0)">Script</a>
  <a href="/second"><img id="logo" src="/logo.png" alt="logo"></a>
  <form id="search" action="/echo" method="get">
    <input type="text" name="q" id="q" value="initial">
    <input type="text" name="ro" id="ro" value="fixed" readonly>
    <input type="text" name="short" id="short" maxlength="3">
    <textarea name="notes" id="notes">old</textarea>
    <input type="checkbox" name="agree" id="agree">
    <input type="checkbox" name="news" id="news" value="yes" checked>
    <input type="radio" name="size" id="small" value="s" checked>
    <input type="radio" name="size" id="large" value="l">
    <select name="color" id="color">
      <option value="r">Red</option>
      <option value="g">Green</option>
      <option label="Azure">Blue</option>
    </select>
    <select name="pets" id="pets" multiple>
      <option value="cat" selected>Cat</option>
      <option value="dog">Dog</option>
    </select>
    <input type="text" name="off" id="off" value="x" disabled>
    <input type="submit" name="go" value="Search" id="go">
  </form>
  <form id="login" action="/echo" method="post">
    <input type="text" name="user" id="user">
    <button id="login-button">Log in</button>
  </form>
  <table id="grid">
    <thead><tr><th>A</th><th>B</th></tr></thead>
    <tr><td>1</td><td>2<table id="inner"><tr><td>x</td></tr></table></td></tr>
    <tr><td>3</td><td>4</td></tr>
  </table>
  <ul id="items"><li>one</li><li>two</li></ul>
</body>
</html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, indexHTML)
	})
	mux.HandleFunc("/second", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Second</title></head><body><a id="back" href="/">Home</a></body></html>`)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		keys := make([]string, 0, len(r.Form))
		for k := range r.Form {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, k+"="+strings.Join(r.Form[k], "|"))
		}
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><p id="form">%s</p><p id="agent">%s</p></body></html>`,
			r.Method, html.EscapeString(strings.Join(parts, "&")), html.EscapeString(r.UserAgent()))
	})
	mux.HandleFunc("/set-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "theme", Value: "dark", Path: "/"})
		fmt.Fprint(w, `<html><head><title>Cookies</title></head><body></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func open(t *testing.T, srv *httptest.Server, path string) *Session {
	t.Helper()
	s, err := New("firefox", Options{UserAgent: "keyword-server-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Goto(context.Background(), srv.URL+path))
	return s
}

func byID(id string) locator.Spec {
	return locator.Parse(id)
}

func TestNew_StartsBlank(t *testing.T) {
	s, err := New("chrome", Options{})
	require.NoError(t, err)

	assert.Equal(t, "chrome", s.Name())
	assert.Equal(t, "about:blank", s.URL())
	assert.Equal(t, "", s.Title())
	assert.Len(t, s.Windows(), 1)
	assert.Equal(t, "", s.Status())
}

func TestGoto_TitleAndText(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	assert.Equal(t, srv.URL+"/", s.URL())
	assert.Equal(t, "Index Page", s.Title())
	assert.Contains(t, s.Text(), "Welcome")
	assert.Contains(t, s.Text(), "Hello world")
	assert.NotContains(t, s.Text(), "secret")
	assert.Contains(t, s.HTML(), `id="heading"`)
}

func TestBackForwardRefresh(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")
	ctx := context.Background()

	require.NoError(t, s.Goto(ctx, srv.URL+"/second"))
	assert.Equal(t, "Second", s.Title())

	require.NoError(t, s.Back(ctx))
	assert.Equal(t, "Index Page", s.Title())
	require.NoError(t, s.Back(ctx))
	assert.Equal(t, "Index Page", s.Title(), "back at the start of history stays put")

	require.NoError(t, s.Forward(ctx))
	assert.Equal(t, "Second", s.Title())

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, "Second", s.Title())
}

func TestGoto_FileAndBarePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<title>Local</title><p id="p">from disk</p>`), 0o644))

	s, err := New("firefox", Options{})
	require.NoError(t, err)
	require.NoError(t, s.Goto(context.Background(), path))

	assert.Equal(t, "Local", s.Title())
	text, err := s.Element(browser.KindElement, byID("p")).Text()
	require.NoError(t, err)
	assert.Equal(t, "from disk", text)
}

func TestGoto_UnsupportedScheme(t *testing.T) {
	s, err := New("firefox", Options{})
	require.NoError(t, err)
	assert.Error(t, s.Goto(context.Background(), "ftp://example.com/"))
}

func TestElement_Lookup(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	tests := []struct {
		name string
		kind browser.Kind
		loc  string
		want string
	}{
		{"id shorthand", browser.KindElement, "heading", "Welcome"},
		{"css", browser.KindElement, "css=p.intro b", "world"},
		{"xpath", browser.KindElement, "xpath=//h1", "Welcome"},
		{"text", browser.KindLink, "text=Second page", "Second page"},
		{"text pattern", browser.KindLink, "text=/Pop/", "Popup"},
		{"class token", browser.KindElement, "class=intro", "Hello world"},
		{"url", browser.KindLink, "url=/second,index=1", "Popup"},
		{"tag name", browser.KindElement, "tag_name=h1", "Welcome"},
		{"kind filters css", browser.KindLink, "css=#next, h1", "Second page"},
		{"cell", browser.KindTableCell, "text=3", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := s.Element(tt.kind, locator.Parse(tt.loc)).Text()
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestElement_NotFound(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	el := s.Element(browser.KindButton, byID("missing"))
	assert.False(t, el.Exists())

	_, err := el.Text()
	var nf *browser.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "unable to locate button, using id=missing", err.Error())

	// Wrong kind does not match.
	assert.False(t, s.Element(browser.KindLink, byID("heading")).Exists())
}

func TestElement_InvalidSelector(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	_, err := s.Element(browser.KindElement, locator.Parse("css=p[")).Text()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid css selector")

	_, err = s.Element(browser.KindElement, locator.Parse("xpath=//p[")).Text()
	require.Error(t, err)
	assert.NotEqual(t, "unable to locate element, using xpath=//p[", err.Error())
}

func TestElement_Visibility(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	v, err := s.Element(browser.KindElement, byID("heading")).Visible()
	require.NoError(t, err)
	assert.True(t, v)

	v, err = s.Element(browser.KindElement, byID("hidden")).Visible()
	require.NoError(t, err)
	assert.False(t, v)

	text, err := s.Element(browser.KindElement, byID("hidden")).Text()
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestClick_Links(t *testing.T) {
	srv := newSite(t)
	ctx := context.Background()

	t.Run("follows href", func(t *testing.T) {
		s := open(t, srv, "/")
		require.NoError(t, s.Element(browser.KindLink, byID("next")).Click(ctx))
		assert.Equal(t, "Second", s.Title())
		assert.Equal(t, srv.URL+"/second", s.URL())
	})

	t.Run("image inside link", func(t *testing.T) {
		s := open(t, srv, "/")
		require.NoError(t, s.Element(browser.KindImage, byID("logo")).Click(ctx))
		assert.Equal(t, "Second", s.Title())
	})

	t.Run("javascript href is ignored", func(t *testing.T) {
		s := open(t, srv, "/")
		require.NoError(t, s.Element(browser.KindLink, byID("noop")).Click(ctx))
		assert.Equal(t, "Index Page", s.Title())
	})

	t.Run("target blank opens a window", func(t *testing.T) {
		s := open(t, srv, "/")
		require.NoError(t, s.Element(browser.KindLink, byID("popup")).Click(ctx))
		assert.Equal(t, "Index Page", s.Title(), "current window is unchanged")

		windows := s.Windows()
		require.Len(t, windows, 2)
		assert.True(t, windows[0].Current())
		assert.Equal(t, "Second", windows[1].Title())

		require.NoError(t, windows[1].Use())
		assert.Equal(t, "Second", s.Title())

		require.NoError(t, windows[1].Close())
		assert.Len(t, s.Windows(), 1)
		assert.Equal(t, "Index Page", s.Title())
		assert.Error(t, windows[1].Use())
	})
}

func TestWindow_CloseLastClosesBrowser(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	require.NoError(t, s.Windows()[0].Close())
	assert.Empty(t, s.Windows())
	assert.ErrorIs(t, s.Goto(context.Background(), srv.URL), browser.ErrClosed)
	assert.False(t, s.Element(browser.KindElement, byID("heading")).Exists())
}

func TestTextField_SetAppendClear(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	q := s.Element(browser.KindTextField, byID("q"))
	v, err := q.Value()
	require.NoError(t, err)
	assert.Equal(t, "initial", v)

	require.NoError(t, q.Set("go"))
	require.NoError(t, q.Append("lang"))
	v, _ = q.Value()
	assert.Equal(t, "golang", v)
	require.NoError(t, q.Clear())
	v, _ = q.Value()
	assert.Equal(t, "", v)

	notes := s.Element(browser.KindTextField, byID("notes"))
	require.NoError(t, notes.Append(" and new"))
	v, _ = notes.Value()
	assert.Equal(t, "old and new", v)

	short := s.Element(browser.KindTextField, byID("short"))
	require.NoError(t, short.Set("abcdef"))
	v, _ = short.Value()
	assert.Equal(t, "abc", v)

	assert.Error(t, s.Element(browser.KindTextField, byID("ro")).Set("x"))
	assert.Error(t, s.Element(browser.KindTextField, byID("off")).Set("x"))
	assert.Error(t, s.Element(browser.KindElement, byID("heading")).Set("x"))
}

func TestCheckboxAndRadio(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")
	ctx := context.Background()

	agree := s.Element(browser.KindCheckbox, byID("agree"))
	on, err := agree.IsSet()
	require.NoError(t, err)
	assert.False(t, on)
	require.NoError(t, agree.Click(ctx))
	on, _ = agree.IsSet()
	assert.True(t, on)
	require.NoError(t, agree.SetChecked(false))
	on, _ = agree.IsSet()
	assert.False(t, on)

	small := s.Element(browser.KindRadio, byID("small"))
	large := s.Element(browser.KindRadio, byID("large"))
	require.NoError(t, large.SetChecked(true))
	on, _ = small.IsSet()
	assert.False(t, on)
	on, _ = large.IsSet()
	assert.True(t, on)
	assert.Error(t, large.SetChecked(false))

	_, err = s.Element(browser.KindElement, byID("q")).IsSet()
	assert.Error(t, err)
}

func TestSelectList(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	color := s.Element(browser.KindSelect, byID("color"))
	v, err := color.Value()
	require.NoError(t, err)
	assert.Equal(t, "r", v, "first option is selected by default")

	require.NoError(t, color.SelectText("Green"))
	v, _ = color.Value()
	assert.Equal(t, "g", v)

	require.NoError(t, color.SelectText("Azure"))
	v, _ = color.Value()
	assert.Equal(t, "Blue", v)

	require.NoError(t, color.SelectValue("r"))
	options, err := color.Children(browser.KindOption)
	require.NoError(t, err)
	require.Len(t, options, 3)
	sel, _ := options[0].Selected()
	assert.True(t, sel)
	sel, _ = options[1].Selected()
	assert.False(t, sel)

	assert.Error(t, color.SelectText("Purple"))
	assert.Error(t, color.ClearSelection(), "single selects cannot be cleared")

	pets := s.Element(browser.KindSelect, byID("pets"))
	require.NoError(t, pets.SelectValue("dog"))
	options, _ = pets.Children(browser.KindOption)
	for _, o := range options {
		sel, _ := o.Selected()
		assert.True(t, sel)
	}
	require.NoError(t, pets.ClearSelection())
	for _, o := range options {
		sel, _ := o.Selected()
		assert.False(t, sel)
	}
}

func TestForm_SubmitGet(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")
	ctx := context.Background()

	require.NoError(t, s.Element(browser.KindTextField, byID("q")).Set("gophers"))
	require.NoError(t, s.Element(browser.KindSelect, byID("color")).SelectValue("g"))
	require.NoError(t, s.Element(browser.KindButton, byID("go")).Click(ctx))

	assert.Equal(t, "GET", s.Title())
	text, err := s.Element(browser.KindElement, byID("form")).Text()
	require.NoError(t, err)
	assert.Equal(t, "color=g&go=Search&news=yes&notes=old&pets=cat&q=gophers&ro=fixed&short=&size=s", text)
	assert.Contains(t, s.URL(), "q=gophers")

	agent, _ := s.Element(browser.KindElement, byID("agent")).Text()
	assert.Equal(t, "keyword-server-test", agent)
}

func TestForm_SubmitPost(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	require.NoError(t, s.Element(browser.KindTextField, byID("user")).Set("ada"))
	require.NoError(t, s.Element(browser.KindButton, byID("login-button")).Click(context.Background()))

	assert.Equal(t, "POST", s.Title())
	text, _ := s.Element(browser.KindElement, byID("form")).Text()
	assert.Equal(t, "user=ada", text)
}

func TestCookies(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/set-cookie")

	cookies, err := s.Cookies()
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.Equal(t, "theme", cookies[1].Name)

	require.NoError(t, s.DeleteCookie("session"))
	cookies, _ = s.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "theme", cookies[0].Name)

	require.NoError(t, s.ClearCookies())
	cookies, _ = s.Cookies()
	assert.Empty(t, cookies)
}

func TestChildren_TableRowsAndLists(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	rows, err := s.Element(browser.KindTable, byID("grid")).Children(browser.KindTableRow)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "rows of the nested table are excluded")

	cells, err := rows[1].Children(browser.KindTableCell)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	text, _ := cells[0].Text()
	assert.Equal(t, "1", text)

	items, err := s.Element(browser.KindUnordered, byID("items")).Children(browser.KindListItem)
	require.NoError(t, err)
	require.Len(t, items, 2)
	text, _ = items[1].Text()
	assert.Equal(t, "two", text)

	nested := s.Element(browser.KindTable, byID("grid")).Element(browser.KindTableCell, locator.Parse("text=x"))
	assert.True(t, nested.Exists())
}

func TestElementsByXPath(t *testing.T) {
	srv := newSite(t)
	s := open(t, srv, "/")

	els, err := s.ElementsByXPath("//a")
	require.NoError(t, err)
	assert.Len(t, els, 4)

	href, err := els[0].Attribute("href")
	require.NoError(t, err)
	assert.Equal(t, "/second", href)

	_, err = s.ElementsByXPath("//a[")
	assert.Error(t, err)
}

func TestExecuteScript_Unsupported(t *testing.T) {
	s, err := New("firefox", Options{})
	require.NoError(t, err)
	_, err = s.ExecuteScript("return 1")
	assert.ErrorIs(t, err, browser.ErrUnsupported)
}

func TestParseURL(t *testing.T) {
	u, err := parseURL("example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path", u.String())

	u, err = parseURL("/tmp/a.html")
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)

	u, err = parseURL("about:blank")
	require.NoError(t, err)
	assert.Equal(t, "about:blank", u.String())
}
