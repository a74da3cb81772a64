package headless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"go.uber.org/zap"
)

const blankPage = "<html><head></head><body></body></html>"

const maxPageBytes = 32 << 20

// page is one loaded document.
type page struct {
	url    *url.URL
	doc    *html.Node
	status int
}

func (p *page) title() string {
	return strings.Join(strings.Fields(goquery.NewDocumentFromNode(p.doc).Find("title").First().Text()), " ")
}

func (p *page) html() string {
	return htmlquery.OutputHTML(p.doc, false)
}

func (p *page) text() string {
	body := goquery.NewDocumentFromNode(p.doc).Find("body").First()
	if body.Length() == 0 {
		return textOf(p.doc)
	}
	return textOf(body.Get(0))
}

func blank() *page {
	doc, _ := html.Parse(strings.NewReader(blankPage))
	return &page{url: &url.URL{Scheme: "about", Opaque: "blank"}, doc: doc}
}

// request describes one page load.
type request struct {
	method string
	url    *url.URL
	form   url.Values
}

// load fetches and parses a page. http(s), file and about:blank are supported.
func (s *Session) load(ctx context.Context, req request) (*page, error) {
	switch req.url.Scheme {
	case "about":
		if req.url.Opaque == "blank" {
			return blank(), nil
		}
		return nil, fmt.Errorf("unsupported page %s", req.url)
	case "file":
		data, err := os.ReadFile(req.url.Path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", req.url, err)
		}
		return parsePage(req.url, bytes.NewReader(data), http.StatusOK)
	case "http", "https":
		return s.fetch(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q in %s", req.url.Scheme, req.url)
	}
}

func (s *Session) fetch(ctx context.Context, req request) (*page, error) {
	var body io.Reader
	target := *req.url
	if req.method == http.MethodPost {
		body = strings.NewReader(req.form.Encode())
	} else if req.form != nil {
		target.RawQuery = req.form.Encode()
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return nil, err
	}
	if req.method == http.MethodPost {
		hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s.userAgent != "" {
		hreq.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", target.String(), err)
	}
	defer resp.Body.Close()
	s.log.Debug("page loaded",
		zap.String("method", req.method),
		zap.String("url", resp.Request.URL.String()),
		zap.Int("status", resp.StatusCode))

	return parsePage(resp.Request.URL, io.LimitReader(resp.Body, maxPageBytes), resp.StatusCode)
}

func parsePage(u *url.URL, r io.Reader, status int) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", u, err)
	}
	return &page{url: u, doc: doc, status: status}, nil
}

// parseURL accepts absolute URLs, about:blank, and bare paths, which are
// treated as local files.
func parseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme == "" {
		if strings.HasPrefix(raw, "/") {
			return &url.URL{Scheme: "file", Path: raw}, nil
		}
		return url.Parse("http://" + raw)
	}
	return u, nil
}
