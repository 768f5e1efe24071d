package pageinfo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

func TestStaticProvider(t *testing.T) {
	tests := []struct {
		name    string
		page    Page
		wantErr bool
	}{
		{name: "web page", page: Page{Title: "Go", URL: "https://go.dev/"}},
		{name: "plain http", page: Page{URL: "http://intranet.local/wiki"}},
		{name: "empty", page: Page{}, wantErr: true},
		{name: "browser page", page: Page{Title: "Extensions", URL: "chrome://extensions"}, wantErr: true},
		{name: "relative", page: Page{URL: "/docs"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Static(tt.page).ActivePage(context.Background())
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrNoActivePage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, got)
		})
	}
}

func TestAnalyzeMetaDescriptionAndIcon(t *testing.T) {
	doc := `<html><head>
<title> Stock tips </title>
<meta name="description" content="Daily investment notes">
<link rel="icon" href="/static/icon.png">
</head><body><p>Some paragraph</p></body></html>`

	s, err := AnalyzeHTML(strings.NewReader(doc), "https://example.org/page")
	require.NoError(t, err)

	assert.Equal(t, "Stock tips", s.Page.Title)
	assert.Equal(t, "https://example.org/page", s.Page.URL)
	assert.Equal(t, "https://example.org/static/icon.png", s.Page.FaviconURL)
	assert.Equal(t, "Daily investment notes", s.Hints.Description)
}

func TestAnalyzeFallsBackToFirstParagraph(t *testing.T) {
	long := strings.Repeat("a", 250)
	doc := `<html><body><p>` + long + `</p><p>second</p></body></html>`

	s, err := AnalyzeHTML(strings.NewReader(doc), "https://example.org/x")
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", 200)+"...", s.Hints.Description)
	assert.Equal(t, "https://example.org/favicon.ico", s.Page.FaviconURL)
}

func TestAnalyzeShortParagraphStillGetsEllipsis(t *testing.T) {
	s, err := AnalyzeHTML(strings.NewReader(`<p>short</p>`), "https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "short...", s.Hints.Description)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		url, content string
		want         string
	}{
		{"https://www.amazon.com/dp/1", "", "shopping"},
		{"https://twitter.com/golang", "", "social"},
		{"https://www.bbc.co.uk/sport", "", "news"},
		{"https://github.com/golang/go", "", "work"},
		{"https://example.org", "a career change", "work"},
		{"https://example.org", "the best movie of the year", "entertainment"},
		{"https://mybank.example", "", "finance"},
		{"https://example.org", "nothing relevant", "other"},
		// URL rules win over content rules of earlier categories
		{"https://www.youtube.com/watch", "", "social"},
	}

	for _, tt := range tests {
		t.Run(tt.url+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(tt.url, tt.content))
		})
	}
}

func TestSuggestTags(t *testing.T) {
	got := suggestTags("https://example.org/python-tutorial", "learn python testing")
	assert.Equal(t, []string{"tutorial", "python", "testing"}, got)

	assert.Empty(t, suggestTags("https://x.example/", "plain words"))
}

func TestAnalyzeIgnoresScriptText(t *testing.T) {
	doc := `<html><body><script>var python = 1;</script><p>hello</p></body></html>`
	s, err := AnalyzeHTML(strings.NewReader(doc), "https://x.example/")
	require.NoError(t, err)
	assert.NotContains(t, s.Hints.SuggestedTags, "python")
}

func TestFetcherSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/blog/post", http.StatusFound)
		case "/blog/post":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Post</title></head><body><p>About security</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, 0, true)

	s, err := f.Suggest(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "Post", s.Page.Title)
	assert.Equal(t, srv.URL+"/blog/post", s.Page.URL)
	assert.Equal(t, srv.URL+"/favicon.ico", s.Page.FaviconURL)
	assert.Contains(t, s.Hints.SuggestedTags, "blog")
	assert.Contains(t, s.Hints.SuggestedTags, "security")

	_, err = f.Suggest(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestFetcherRejectsNonWebURL(t *testing.T) {
	_, err := NewFetcher(0, 0, false).Suggest(context.Background(), "file:///etc/passwd")
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "url", vErr.Field)
}

func TestFetcherRefusesLoopbackByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<html><head><title>secret</title></head></html>`))
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second, 0, false).Suggest(context.Background(), srv.URL+"/admin")
	require.ErrorIs(t, err, ErrBlockedAddress)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "url", vErr.Field)
	assert.Zero(t, hits.Load())
}

func TestFetcherRefusesLocalhostName(t *testing.T) {
	_, err := NewFetcher(time.Second, 0, false).Suggest(context.Background(), "http://localhost:1/")
	assert.ErrorIs(t, err, ErrBlockedAddress)
}

func TestIsPublicAddr(t *testing.T) {
	cases := map[string]bool{
		"93.184.216.34":        true,
		"2606:4700::1111":      true,
		"127.0.0.1":            false,
		"::1":                  false,
		"10.1.2.3":             false,
		"172.16.0.1":           false,
		"192.168.1.1":          false,
		"169.254.169.254":      false,
		"fe80::1":              false,
		"fd00::1":              false,
		"0.0.0.0":              false,
		"::":                   false,
		"100.64.0.1":           false,
		"224.0.0.1":            false,
		"::ffff:127.0.0.1":     false,
		"::ffff:93.184.216.34": true,
	}

	for in, want := range cases {
		assert.Equal(t, want, IsPublicAddr(netip.MustParseAddr(in)), in)
	}
}
