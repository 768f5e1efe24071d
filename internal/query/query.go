// Package query filters, searches, sorts and groups a bookmark list.
// Every function is pure: inputs are never modified and results are fresh
// slices.
package query

import (
	"slices"
	"strings"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortDate     SortKey = "date"     // most recent first
	SortDomain   SortKey = "domain"   // ascending
	SortCategory SortKey = "category" // ascending, empty first
	SortTitle    SortKey = "title"    // ascending
)

// Options is the filter/sort configuration of the dashboard.
// Empty fields disable the corresponding filter.
type Options struct {
	Search   string
	Tag      string
	Category string
	Sort     SortKey
}

// Group is the set of bookmarks sharing one exact domain.
type Group struct {
	Domain    string            `json:"domain"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// Result is the presentation view of a query.
type Result struct {
	Bookmarks []domain.Bookmark
	Groups    []Group
}

// Apply runs Filter and groups its output by domain.
func Apply(bookmarks []domain.Bookmark, opts Options) Result {
	filtered := Filter(bookmarks, opts)
	return Result{
		Bookmarks: filtered,
		Groups:    GroupByDomain(filtered),
	}
}

// Filter keeps the bookmarks matching search, tag and category, then sorts.
func Filter(bookmarks []domain.Bookmark, opts Options) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(bookmarks))
	needle := strings.ToLower(opts.Search)

	for _, b := range bookmarks {
		if needle != "" && !matches(b, needle) {
			continue
		}
		if opts.Tag != "" && !b.HasTag(opts.Tag) {
			continue
		}
		if opts.Category != "" && b.Category != opts.Category {
			continue
		}
		out = append(out, b.Clone())
	}

	Sort(out, opts.Sort)
	return out
}

// Search keeps bookmarks whose title, url, notes or any tag contains text,
// case-insensitively. Any single field matching is enough.
func Search(bookmarks []domain.Bookmark, text string) []domain.Bookmark {
	return Filter(bookmarks, Options{Search: text})
}

// matches expects needle to be lowercased already.
func matches(b domain.Bookmark, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.URL), needle) ||
		strings.Contains(strings.ToLower(b.Notes), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Sort orders bookmarks in place, stably. An unrecognized key leaves the
// order untouched.
func Sort(bookmarks []domain.Bookmark, key SortKey) {
	cmp := comparator(key)
	if cmp == nil {
		return
	}
	slices.SortStableFunc(bookmarks, cmp)
}

func comparator(key SortKey) func(a, b domain.Bookmark) int {
	switch key {
	case SortDate:
		return func(a, b domain.Bookmark) int { return b.DateAdded.Compare(a.DateAdded) }
	case SortDomain:
		return func(a, b domain.Bookmark) int { return strings.Compare(a.Domain, b.Domain) }
	case SortCategory:
		return func(a, b domain.Bookmark) int { return strings.Compare(a.Category, b.Category) }
	case SortTitle:
		return func(a, b domain.Bookmark) int { return strings.Compare(a.Title, b.Title) }
	default:
		return nil
	}
}

// GroupByDomain partitions bookmarks by exact domain. Groups appear in the
// order their domain is first seen and members keep their relative order.
// Example: [b.com, a.com, b.com] -> [b.com{2}, a.com{1}]
func GroupByDomain(bookmarks []domain.Bookmark) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for _, b := range bookmarks {
		i, ok := index[b.Domain]
		if !ok {
			i = len(groups)
			index[b.Domain] = i
			groups = append(groups, Group{Domain: b.Domain})
		}
		groups[i].Bookmarks = append(groups[i].Bookmarks, b)
	}
	return groups
}
