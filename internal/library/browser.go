package library

import (
	"strings"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

const maximizeScript = `if (window.screen) {
  window.moveTo(0, 0);
  window.resizeTo(window.screen.availWidth, window.screen.availHeight);
};`

const windowNumberHelp = "You must provide the url or title of the window in the format 'url=' or 'title=', " +
	"or you must provide the number of the window, starting with 1 for the first window opened."

const tooManyWindows = "You cannot use this keyword when more than 2 windows are open; you must use " +
	"'Switch To Window', 'Switch to Next Window', or 'Switch to Previous Window'"

// closeCurrent is the close_window default naming the active window.
const closeCurrent = "current"

func (l *Library) browserKeywords() []keyword.Keyword {
	pBrowser := docs.Param{Name: "browser", Default: l.defaultBrowser, HasDefault: true,
		Description: "the name of the browser to use"}
	pWindowLoc := docs.Param{Name: "loc", Description: "url=..., title=... or the 1-based number of the window"}

	return []keyword.Keyword{
		{
			Name: "open_browser", Owner: "browser", Params: params(pBrowser),
			Doc: "Start a browser session. An already open session is closed first.",
			Handler: func(c *keyword.Call) (any, error) {
				return nil, l.launch(c.Ctx, c.Arg(0))
			},
		},
		{
			Name: "start_browser", Owner: "browser", Params: params(pURL, pBrowser),
			Doc: "Start a browser session and go to a URL.",
			Handler: func(c *keyword.Call) (any, error) {
				if err := l.launch(c.Ctx, c.Arg(1)); err != nil {
					return nil, err
				}
				return nil, delegate(l.browser.Goto(c.Ctx, c.Arg(0)))
			},
		},
		{
			Name: "get_url", Owner: "browser",
			Doc:     "Return the URL of the current page.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) { return b.URL(), nil }),
		},
		{
			Name: "go_to", Owner: "browser", Params: params(pURL),
			Doc: "Go to a URL in the open browser.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.Goto(c.Ctx, c.Arg(0))
			}),
		},
		{
			Name: "go_back", Owner: "browser",
			Doc: "Go back in browsing history.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.Back(c.Ctx)
			}),
		},
		{
			Name: "go_forward", Owner: "browser",
			Doc: "Go forward in browsing history.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.Forward(c.Ctx)
			}),
		},
		{
			Name: "refresh", Owner: "browser",
			Doc: "Reload the current page.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.Refresh(c.Ctx)
			}),
		},
		{
			Name: "get_all_cookies", Owner: "browser",
			Doc: "Return every cookie of the current session as a list of name/value/domain/path maps.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				cookies, err := b.Cookies()
				if err != nil {
					return nil, err
				}
				out := make([]map[string]string, len(cookies))
				for i, ck := range cookies {
					out[i] = ck.Map()
				}
				return out, nil
			}),
		},
		{
			Name: "get_cookie", Owner: "browser", Params: params(named("name")),
			Doc: "Return the named cookie, or an empty value if it does not exist.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				cookies, err := b.Cookies()
				if err != nil {
					return nil, err
				}
				for _, ck := range cookies {
					if ck.Name == c.Arg(0) {
						return ck.Map(), nil
					}
				}
				return nil, nil
			}),
		},
		{
			Name: "delete_all_cookies", Owner: "browser",
			Doc: "Delete every cookie of the current session.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.ClearCookies()
			}),
		},
		{
			Name: "delete_cookie", Owner: "browser", Params: params(named("name")),
			Doc: "Delete one cookie by name.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, b.DeleteCookie(c.Arg(0))
			}),
		},
		{
			Name: "close_browser", Owner: "browser",
			Doc: "Close the browser and all of its windows.",
			Handler: func(c *keyword.Call) (any, error) {
				if _, err := l.session(); err != nil {
					return nil, err
				}
				return nil, delegate(l.Close())
			},
		},
		{
			Name: "maximize_browser_window", Owner: "browser",
			Doc: "Maximize the browser window using JavaScript.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				_, err := b.ExecuteScript(maximizeScript)
				return nil, err
			}),
		},
		{
			Name: "switch_to_other_window", Owner: "browser",
			Doc: "Switch to the other window when exactly two are open.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				other, err := otherWindow(b)
				if err != nil {
					return nil, err
				}
				return nil, other.Use()
			}),
		},
		{
			Name: "switch_to_window", Owner: "browser", Params: params(pWindowLoc),
			Doc: "Switch to the window matching url=..., title=... or a 1-based window number.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				w, err := findWindow(b, c.Arg(0))
				if err != nil {
					return nil, err
				}
				return nil, w.Use()
			}),
		},
		{
			Name: "switch_to_next_window", Owner: "browser",
			Doc: "Switch to the next window in opening order, wrapping around to the first.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, stepWindow(b, 1)
			}),
		},
		{
			Name: "switch_to_previous_window", Owner: "browser",
			Doc: "Switch to the previous window in opening order, wrapping around to the last.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return nil, stepWindow(b, -1)
			}),
		},
		{
			Name: "close_other_window", Owner: "browser",
			Doc: "Close the other window when exactly two are open.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				other, err := otherWindow(b)
				if err != nil {
					return nil, err
				}
				return nil, other.Close()
			}),
		},
		{
			Name:  "close_window",
			Owner: "browser",
			Params: params(
				docs.Param{Name: "close_loc", Default: closeCurrent, HasDefault: true,
					Description: "the window to close: current, url=..., title=... or a 1-based number"},
				docs.Param{Name: "active_loc", HasDefault: true,
					Description: "the window to activate when the active one is closed; the previous window by default"},
			),
			Doc: "Close one window. Closing the only window closes the browser.",
			Handler: func(c *keyword.Call) (any, error) {
				b, err := l.session()
				if err != nil {
					return nil, err
				}
				return nil, delegate(l.closeWindow(b, c.Arg(0), c.Arg(1)))
			},
		},
		{
			Name: "get_window_count", Owner: "browser",
			Doc: "Return the number of open windows.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return len(b.Windows()), nil
			}),
		},
		{
			Name: "url_should_be", Owner: "browser", Params: params(named("url")),
			Doc: "Verify that the current URL equals url.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if got := b.URL(); got != c.Arg(0) {
					return nil, failure.Verifyf(failure.CheckURLMatch, "The URL %s is not correct; it should be %s", got, c.Arg(0))
				}
				return nil, nil
			}),
		},
		{
			Name: "url_should_contain", Owner: "browser", Params: params(pText),
			Doc: "Verify that the current URL contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				if got := b.URL(); !strings.Contains(got, c.Arg(0)) {
					return nil, failure.Verifyf(failure.CheckURLMatch, "The URL %s is not correct; it should contain %s", got, c.Arg(0))
				}
				return nil, nil
			}),
		},
	}
}

// withSession adapts a handler that needs the open browser.
func (l *Library) withSession(fn func(c *keyword.Call, b browser.Browser) (any, error)) keyword.Handler {
	return func(c *keyword.Call) (any, error) {
		b, err := l.session()
		if err != nil {
			return nil, err
		}
		ret, err := fn(c, b)
		return ret, delegate(err)
	}
}

func (l *Library) closeWindow(b browser.Browser, closeLoc, activeLoc string) error {
	windows := b.Windows()
	if len(windows) == 1 {
		return l.Close()
	}

	var target browser.Window
	if closeLoc == "" || closeLoc == closeCurrent {
		i := currentIndex(windows)
		if i < 0 {
			return failure.Verifyf(failure.CheckWindowMatch, "No window is active")
		}
		target = windows[i]
	} else {
		w, err := findWindow(b, closeLoc)
		if err != nil {
			return err
		}
		target = w
	}

	if target.Current() {
		if activeLoc == "" {
			if err := stepWindow(b, -1); err != nil {
				return err
			}
		} else {
			w, err := findWindow(b, activeLoc)
			if err != nil {
				return err
			}
			if err := w.Use(); err != nil {
				return err
			}
		}
	}
	return target.Close()
}

// findWindow resolves a window locator: url=/title= attribute pairs, or a
// 1-based window number.
func findWindow(b browser.Browser, loc string) (browser.Window, error) {
	windows := b.Windows()
	if strings.HasPrefix(loc, "url=") || strings.HasPrefix(loc, "title=") {
		spec := locator.Parse(loc)
		for _, w := range windows {
			if windowMatches(w, spec) {
				return w, nil
			}
		}
		return nil, failure.Verifyf(failure.CheckWindowMatch, "No window matching %s was found", spec)
	}

	n, err := number("loc", strings.TrimSpace(loc))
	if err != nil || n <= 0 {
		return nil, failure.Usagef("%s", windowNumberHelp)
	}
	if n > len(windows) {
		return nil, failure.Verifyf(failure.CheckWindowMatch, "There is no window number %d; %d windows are open", n, len(windows))
	}
	return windows[n-1], nil
}

func windowMatches(w browser.Window, spec locator.Spec) bool {
	for key, want := range spec.Attributes {
		switch key {
		case "url":
			if !want.Match(w.URL()) {
				return false
			}
		case "title":
			if !want.Match(w.Title()) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func currentIndex(windows []browser.Window) int {
	for i, w := range windows {
		if w.Current() {
			return i
		}
	}
	return -1
}

// stepWindow moves the active window by delta in opening order, wrapping.
func stepWindow(b browser.Browser, delta int) error {
	windows := b.Windows()
	if len(windows) == 0 {
		return failure.Verifyf(failure.CheckWindowMatch, "No window is open")
	}
	i := currentIndex(windows)
	if i < 0 {
		i = 0
	}
	next := ((i+delta)%len(windows) + len(windows)) % len(windows)
	return windows[next].Use()
}

func otherWindow(b browser.Browser) (browser.Window, error) {
	windows := b.Windows()
	switch {
	case len(windows) > 2:
		return nil, failure.Verifyf(failure.CheckWindowMatch, "%s", tooManyWindows)
	case len(windows) < 2:
		return nil, failure.Verifyf(failure.CheckWindowMatch, "There is no other window; only %d window is open", len(windows))
	}
	if windows[0].Current() {
		return windows[1], nil
	}
	return windows[0], nil
}
