package domain

import (
	"slices"
	"strings"
)

// defaultCategories seeds the category set on first initialization and reset.
var defaultCategories = []string{"work", "personal", "shopping", "research", "finance", "entertainment", "other"}

// DefaultCategories returns a fresh copy of the default category set.
func DefaultCategories() []string {
	return slices.Clone(defaultCategories)
}

// Collection is the authoritative triple held by the store, plus the
// revision it was loaded at. It is passed around by value; use Clone before
// mutating a copy that another component may still read.
type Collection struct {
	Bookmarks  []Bookmark
	Tags       []string
	Categories []string

	// Revision counts saves. Zero means the store was never written.
	Revision int64
}

// NewCollection returns the state of a never-initialized store.
func NewCollection() Collection {
	return Collection{
		Bookmarks:  []Bookmark{},
		Tags:       []string{},
		Categories: DefaultCategories(),
	}
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	out := Collection{
		Bookmarks:  make([]Bookmark, len(c.Bookmarks)),
		Tags:       slices.Clone(c.Tags),
		Categories: slices.Clone(c.Categories),
		Revision:   c.Revision,
	}
	for i, b := range c.Bookmarks {
		out.Bookmarks[i] = b.Clone()
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	return out
}

// Find returns the index of the bookmark with id, or -1.
func (c Collection) Find(id string) int {
	for i, b := range c.Bookmarks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// RebuildTags recomputes the tag set from the bookmarks.
// Every mutation calls it; the tag set is never maintained incrementally.
func (c *Collection) RebuildTags() {
	c.Tags = CollectTags(c.Bookmarks)
}

// CollectTags returns every distinct tag in order of first appearance.
func CollectTags(bookmarks []Bookmark) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, b := range bookmarks {
		for _, t := range b.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// SortedTags returns the tags in lexicographic order (filter menus).
func SortedTags(tags []string) []string {
	out := slices.Clone(tags)
	slices.Sort(out)
	return out
}

// AddCategory appends name to categories unless already present.
// Empty names are rejected.
func AddCategory(categories []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return categories, &ValidationError{Field: "category", Reason: "name must not be empty"}
	}
	if slices.Contains(categories, name) {
		return categories, nil
	}
	return append(slices.Clone(categories), name), nil
}
