package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

var importTime = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func fixedOptions(strict bool) Options {
	return Options{Now: func() time.Time { return importTime }, Strict: strict}
}

func sample() []domain.Bookmark {
	return []domain.Bookmark{
		{
			ID:        "01",
			Title:     "Go Guide",
			URL:       "https://go.dev/doc",
			Domain:    "go.dev",
			Tags:      []string{"go", "docs"},
			Category:  "research",
			Notes:     "read later",
			DateAdded: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Favicon:   "https://go.dev/favicon.ico",
		},
		{
			ID:        "02",
			Title:     "Bank",
			URL:       "https://bank.example/login",
			Domain:    "bank.example",
			Tags:      []string{},
			DateAdded: time.Date(2024, 6, 1, 8, 30, 0, 123000000, time.UTC),
		},
	}
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		c, err := New(f, Options{})
		require.NoError(t, err)
		assert.Equal(t, f, c.Format())
	}

	_, err := New(Format("xml"), Options{})
	var fErr *domain.FormatError
	assert.True(t, errors.As(err, &fErr))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{filename: "bookmarks.json", want: FormatJSON},
		{filename: "/tmp/Export.CSV", want: FormatCSV},
		{filename: "bookmarks.html", want: FormatHTML},
		{filename: "bookmarks.htm", want: FormatHTML},
		{filename: "bookmarks.yaml", want: FormatHomepage},
		{filename: "bookmarks.yml", want: FormatHomepage},
		{filename: "bookmarks.txt", wantErr: true},
		{filename: "bookmarks", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				var fErr *domain.FormatError
				assert.True(t, errors.As(err, &fErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatExportMetadata(t *testing.T) {
	assert.Equal(t, "bookmarks.json", FormatJSON.FileName())
	assert.Equal(t, "bookmarks.csv", FormatCSV.FileName())
	assert.Equal(t, "bookmarks.html", FormatHTML.FileName())
	assert.Equal(t, "bookmarks.yaml", FormatHomepage.FileName())

	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "text/html", FormatHTML.ContentType())
	assert.Equal(t, "application/yaml", FormatHomepage.ContentType())
}
