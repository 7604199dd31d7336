package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MaxContentRunes caps the extracted text.
	MaxContentRunes = 2000

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxBodyBytes     = 5 << 20
)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Noscript: true,
	atom.Template: true,
}

type Client struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		UserAgent:  userAgent,
		Timeout:    timeout,
		HTTPClient: &http.Client{},
	}
}

// Fetch downloads the page and returns its visible text. Every failure is
// logged and reported as ok=false; callers continue without context.
func (c *Client) Fetch(ctx context.Context, url string) (string, bool) {
	text, err := c.fetch(ctx, url)
	if err != nil {
		fiberlog.Warnf("[Scraper] Scraping failed for %s: %v", url, err)
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
}

// ExtractText parses HTML and returns the visible text with whitespace
// collapsed, truncated to MaxContentRunes.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		if n.Type == html.CommentNode {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return truncateRunes(collapseWhitespace(b.String()), MaxContentRunes), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
