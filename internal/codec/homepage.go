package codec

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// uncategorized names the homepage group of bookmarks without a category.
const uncategorized = "Uncategorized"

// HomepageEntry represents a single bookmark entry in the YAML
type HomepageEntry struct {
	Abbr        string `yaml:"abbr,omitempty"`
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// HomepageGroup represents a group with its bookmarks.
// The YAML structure is: - GroupName: [ - BookmarkName: [{ abbr, href, icon, description }] ]
// Each bookmark name maps to a list with a single entry holding the properties.
type HomepageGroup map[string][]map[string][]HomepageEntry

// HomepageConfig is the root structure of a homepage bookmarks.yaml
type HomepageConfig []HomepageGroup

// Homepage is the bookmarks.yaml dialect of the homepage dashboard.
// Groups carry the category, entries carry title, url, favicon and notes.
type Homepage struct {
	opts Options
}

func (*Homepage) Format() Format { return FormatHomepage }

// Encode groups bookmarks by category in order of first appearance.
// yaml.Node is used so that group and bookmark order survive encoding.
func (h *Homepage) Encode(bookmarks []domain.Bookmark) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	groups := make(map[string]*yaml.Node)

	for _, b := range bookmarks {
		name := b.Category
		if name == "" {
			name = uncategorized
		}
		list, ok := groups[name]
		if !ok {
			list = &yaml.Node{Kind: yaml.SequenceNode}
			groups[name] = list
			root.Content = append(root.Content, mapping(name, list))
		}

		entry := &yaml.Node{}
		if err := entry.Encode([]HomepageEntry{{
			Href:        b.URL,
			Icon:        b.Favicon,
			Description: b.Notes,
		}}); err != nil {
			return nil, fmt.Errorf("failed to encode bookmark %s: %w", b.ID, err)
		}
		list.Content = append(list.Content, mapping(b.Title, entry))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode homepage yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mapping(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		},
	}
}

// Decode reads a bookmarks.yaml document. Entries without href are skipped.
func (h *Homepage) Decode(data []byte) ([]domain.Bookmark, error) {
	data = stripTemplateVariables(data)

	var config HomepageConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &domain.FormatError{Format: string(FormatHomepage), Reason: "expected a list of bookmark groups", Err: err}
	}

	now := h.opts.now()
	bookmarks := make([]domain.Bookmark, 0)
	for _, group := range config {
		for groupName, list := range group {
			category := groupName
			if category == uncategorized {
				category = ""
			}
			for _, item := range list {
				for name, entries := range item {
					// Each bookmark has a list with a single entry
					if len(entries) == 0 || strings.TrimSpace(entries[0].Href) == "" {
						continue
					}
					entry := entries[0]

					title := name
					if strings.TrimSpace(title) == "" {
						title = entry.Abbr
					}
					if strings.TrimSpace(title) == "" {
						title = domain.DefaultTitle
					}

					bookmarks = append(bookmarks, domain.NewBookmarkAt(
						now, title, strings.TrimSpace(entry.Href), []string{}, category, entry.Description, entry.Icon,
					))
				}
			}
		}
	}
	return bookmarks, nil
}

var templateVariable = regexp.MustCompile(`\{\{[^}]+\}\}`)

// stripTemplateVariables removes homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVariable.ReplaceAll(data, []byte(`""`))
}
