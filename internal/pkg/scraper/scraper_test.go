package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html><head><title>Acme Shoes</title><style>body { color: red; }</style>
<script>var tracking = "nope";</script></head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <h1>Acme   Running
     Shoes</h1>
  <p>Light, fast and <b>durable</b>.</p>
  <!-- hidden comment -->
  <noscript>Enable JS</noscript>
  <footer>Copyright Acme</footer>
</body></html>`

func TestExtractTextDropsBoilerplate(t *testing.T) {
	text, err := ExtractText(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Equal(t, "Acme Shoes Acme Running Shoes Light, fast and durable .", text)
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "Enable JS")
	assert.NotContains(t, text, "hidden comment")
}

func TestExtractTextCapsLength(t *testing.T) {
	page := "<p>" + strings.Repeat("ä", 5000) + "</p>"
	text, err := ExtractText(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, MaxContentRunes, utf8.RuneCountInString(text))
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient("", time.Second)
	text, ok := c.Fetch(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Contains(t, text, "Acme Running Shoes")
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestFetchFailuresAreAbsent(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		text, ok := NewClient("", time.Second).Fetch(context.Background(), srv.URL)
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, ok := NewClient("", 50*time.Millisecond).Fetch(context.Background(), srv.URL)
		assert.False(t, ok)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("bad url", func(t *testing.T) {
		_, ok := NewClient("", time.Second).Fetch(context.Background(), "://not a url")
		assert.False(t, ok)
	})

	t.Run("empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
		}))
		defer srv.Close()

		_, ok := NewClient("", time.Second).Fetch(context.Background(), srv.URL)
		assert.False(t, ok)
	})
}
