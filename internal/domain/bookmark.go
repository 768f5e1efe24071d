package domain

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is used when the page title is unavailable at capture time.
	DefaultTitle = "Untitled"
	// UnknownDomain is stored when the URL cannot be parsed as an absolute URL.
	UnknownDomain = "unknown"
)

// Bookmark is the only persisted record type.
// The JSON field names are the persisted shape and the JSON exchange format.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated at creation and never reused.
	ID string `json:"id"`

	// Title is free text, "Untitled" when the page had none.
	Title string `json:"title"`

	// URL is the absolute page URL. Not unique across the collection.
	URL string `json:"url"`

	// Domain is the lowercased host of URL, derived at creation time.
	// Used for grouping and display only.
	Domain string `json:"domain"`

	// ─────────────────────────────
	// Classification
	// ─────────────────────────────

	// Tags keeps the user's order. Empty entries are dropped at creation.
	Tags []string `json:"tags"`

	// Category is drawn from the category set but never validated against it.
	Category string `json:"category"`

	Notes string `json:"notes"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// DateAdded is set once at creation.
	DateAdded time.Time `json:"dateAdded"`

	// Favicon is best-effort and may be empty.
	Favicon string `json:"favicon,omitempty"`
}

// NewBookmark captures a bookmark at the current instant.
// tags is the raw comma-separated form input.
func NewBookmark(title, rawURL, tags, category, notes, favicon string) Bookmark {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return NewBookmarkAt(time.Now(), title, rawURL, ParseTags(tags), category, notes, favicon)
}

// NewBookmarkAt builds a bookmark stamped with now. Codecs use it so that
// decoded records carry the import time.
func NewBookmarkAt(now time.Time, title, rawURL string, tags []string, category, notes, favicon string) Bookmark {
	return Bookmark{
		ID:        NewID(),
		Title:     title,
		URL:       rawURL,
		Domain:    ExtractDomain(rawURL),
		Tags:      tags,
		Category:  category,
		Notes:     notes,
		DateAdded: Timestamp(now),
		Favicon:   favicon,
	}
}

// NewID returns a fresh time-ordered identifier (UUIDv7).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Timestamp normalizes t to UTC at millisecond precision, the resolution the
// exchange formats carry.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ExtractDomain returns the lowercased hostname of rawURL, or "unknown" when
// rawURL is not an absolute URL.
// Example: "https://Example.com:8443/a" -> "example.com"
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() {
		return UnknownDomain
	}
	return strings.ToLower(u.Hostname())
}

// ParseTags splits a comma-separated tag string, trims every entry and drops
// the empty ones. Order is kept and duplicates are not removed.
// Example: "a, b ,, c" -> ["a", "b", "c"]
func ParseTags(raw string) []string {
	return splitAndClean(raw, ",")
}

// HasTag reports whether the bookmark carries tag (exact match).
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with b.
func (b Bookmark) Clone() Bookmark {
	b.Tags = slices.Clone(b.Tags)
	return b
}

// splitAndClean splits a string by separator and returns non-empty parts
func splitAndClean(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
