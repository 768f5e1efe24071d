// Package pageinfo supplies the current page and free-text hints about it.
// Hints only pre-fill the save form; nothing here is authoritative.
package pageinfo

import (
	"context"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// Page is the user's current page.
type Page struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	FaviconURL string `json:"favicon,omitempty"`
}

// Hints are heuristic suggestions derived from the page content.
type Hints struct {
	Description       string   `json:"description"`
	SuggestedCategory string   `json:"suggestedCategory"`
	SuggestedTags     []string `json:"suggestedTags"`
}

// Suggestion pairs a page with the hints derived from it.
type Suggestion struct {
	Page  Page  `json:"page"`
	Hints Hints `json:"hints"`
}

// ActivePageProvider returns the current page, or domain.ErrNoActivePage
// when the active surface is not a regular web page.
type ActivePageProvider interface {
	ActivePage(ctx context.Context) (Page, error)
}

// HintProvider fetches a page and derives hints from its content.
type HintProvider interface {
	Suggest(ctx context.Context, rawURL string) (Suggestion, error)
}

// Static is a provider for a page supplied by the caller, e.g. the tab
// posted by the browser extension or flags given to the CLI.
type Static Page

func (s Static) ActivePage(context.Context) (Page, error) {
	p := Page(s)
	if !IsWebPage(p.URL) {
		return Page{}, domain.ErrNoActivePage
	}
	return p, nil
}

// IsWebPage reports whether rawURL is an absolute http(s) URL.
func IsWebPage(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
