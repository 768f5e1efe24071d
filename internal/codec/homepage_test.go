package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

func TestHomepageDecode(t *testing.T) {
	yamlContent := `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Secret:
        - abbr: SE
          href: {{HOMEPAGE_VAR_SECRET_URL}}
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
          description: The front page of the internet
`

	out, err := (&Homepage{opts: fixedOptions(false)}).Decode([]byte(yamlContent))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Github", out[0].Title)
	assert.Equal(t, "https://github.com/", out[0].URL)
	assert.Equal(t, "github.com", out[0].Domain)
	assert.Equal(t, "Developer", out[0].Category)
	assert.Equal(t, importTime, out[0].DateAdded)

	assert.Equal(t, "Reddit", out[1].Title)
	assert.Equal(t, "Social", out[1].Category)
	assert.Equal(t, "reddit.png", out[1].Favicon)
	assert.Equal(t, "The front page of the internet", out[1].Notes)
}

func TestHomepageDecodeRejectsNonList(t *testing.T) {
	_, err := (&Homepage{}).Decode([]byte("bookmarks: yes\n"))
	var fErr *domain.FormatError
	require.True(t, errors.As(err, &fErr))
	assert.Equal(t, "homepage", fErr.Format)
}

func TestHomepageEncodeGroupsByCategory(t *testing.T) {
	in := sample()
	in = append(in, domain.Bookmark{ID: "03", Title: "Go Blog", URL: "https://go.dev/blog", Category: "research"})

	data, err := (&Homepage{}).Encode(in)
	require.NoError(t, err)

	out := string(data)
	research := strings.Index(out, "- research:")
	uncat := strings.Index(out, "- Uncategorized:")
	require.NotEqual(t, -1, research)
	require.NotEqual(t, -1, uncat)
	assert.Less(t, research, uncat)
	assert.Less(t, strings.Index(out, "Go Guide:"), strings.Index(out, "Go Blog:"))
	assert.Contains(t, out, "href: https://go.dev/doc")
	assert.Contains(t, out, "icon: https://go.dev/favicon.ico")
	assert.NotContains(t, out, "abbr:")

	decoded, err := (&Homepage{opts: fixedOptions(false)}).Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	byTitle := make(map[string]domain.Bookmark)
	for _, b := range decoded {
		byTitle[b.Title] = b
	}
	assert.Equal(t, "research", byTitle["Go Guide"].Category)
	assert.Equal(t, "read later", byTitle["Go Guide"].Notes)
	assert.Equal(t, "", byTitle["Bank"].Category)
}
