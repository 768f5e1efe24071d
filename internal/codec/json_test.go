package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

func TestJSONRoundTrip(t *testing.T) {
	c := &JSON{}
	in := sample()

	data, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(data)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Title, out[i].Title)
		assert.Equal(t, in[i].URL, out[i].URL)
		assert.Equal(t, in[i].Domain, out[i].Domain)
		assert.Equal(t, in[i].Tags, out[i].Tags)
		assert.Equal(t, in[i].Category, out[i].Category)
		assert.Equal(t, in[i].Notes, out[i].Notes)
		assert.True(t, in[i].DateAdded.Equal(out[i].DateAdded), "dateAdded %s != %s", in[i].DateAdded, out[i].DateAdded)
		assert.Equal(t, in[i].Favicon, out[i].Favicon)
	}
}

func TestJSONRoundTripOfNewBookmarks(t *testing.T) {
	c := &JSON{}
	in := []domain.Bookmark{
		domain.NewBookmark("A", "https://a.example/x", "one, two", "work", "", ""),
		domain.NewBookmark("", "not a url", "", "", "n", "https://a.example/favicon.ico"),
	}

	data, err := c.Encode(in)
	require.NoError(t, err)
	out, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestJSONEncodeEmptyList(t *testing.T) {
	data, err := (&JSON{}).Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONDecodeRejectsNonArray(t *testing.T) {
	inputs := []string{
		`{"id":"1"}`,
		`"bookmarks"`,
		`null`,
		``,
		`[{"id": "1",`,
	}

	for _, in := range inputs {
		_, err := (&JSON{}).Decode([]byte(in))
		var fErr *domain.FormatError
		require.True(t, errors.As(err, &fErr), "input %q", in)
		assert.Equal(t, "json", fErr.Format)
	}
}

func TestJSONDecodePassesMalformedRecordsThrough(t *testing.T) {
	data := []byte(`[
		{"id": "1", "title": 42, "url": "https://a.example", "tags": ["x"]},
		{"id": "2", "title": "ok", "url": "https://b.example", "domain": "b.example"}
	]`)

	out, err := (&JSON{}).Decode(data)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Empty(t, out[0].Title)
	assert.Equal(t, "https://a.example", out[0].URL)
	assert.Equal(t, []string{"x"}, out[0].Tags)
	assert.Equal(t, "ok", out[1].Title)
}

func TestJSONDecodeKeepsFieldsAfterUnparsableDate(t *testing.T) {
	data := []byte(`[
		{"id":"a","title":"date-only","dateAdded":"2024-01-01","url":"https://a.example","favicon":"https://a.example/f.ico","notes":"kept?"},
		{"id":"b","dateAdded":1704067200000,"title":"after-number","url":"https://b.example"},
		{"id":"c","dateAdded":"last tuesday","url":"https://c.example","notes":"still here"}
	]`)

	out, err := (&JSON{}).Decode(data)
	require.NoError(t, err)
	require.Len(t, out, 3)

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "https://a.example", out[0].URL)
	assert.Equal(t, "https://a.example/f.ico", out[0].Favicon)
	assert.Equal(t, "kept?", out[0].Notes)
	assert.True(t, jan1.Equal(out[0].DateAdded), "got %s", out[0].DateAdded)

	assert.Equal(t, "after-number", out[1].Title)
	assert.Equal(t, "https://b.example", out[1].URL)
	assert.True(t, jan1.Equal(out[1].DateAdded), "got %s", out[1].DateAdded)

	assert.Equal(t, "https://c.example", out[2].URL)
	assert.Equal(t, "still here", out[2].Notes)
	assert.True(t, out[2].DateAdded.IsZero())
}

func TestJSONDecodeDateForms(t *testing.T) {
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	cases := map[string]string{
		"rfc3339":        `"2024-01-01T12:30:00Z"`,
		"rfc3339 offset": `"2024-01-01T14:30:00+02:00"`,
		"local datetime": `"2024-01-01T12:30:00"`,
		"epoch millis":   `1704112200000`,
		"epoch seconds":  `1704112200`,
	}

	for name, date := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := (&JSON{}).Decode([]byte(`[{"id":"1","dateAdded":` + date + `}]`))
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.True(t, want.Equal(out[0].DateAdded), "got %s", out[0].DateAdded)
		})
	}
}

func TestJSONDecodeSkipsNonObjectElements(t *testing.T) {
	out, err := (&JSON{}).Decode([]byte(`["nope", null, 7, {"id":"2"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ID)
}

func TestJSONEncodeRejectsYearBeyondRFC3339(t *testing.T) {
	in := []domain.Bookmark{{ID: "1", DateAdded: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}}

	_, err := (&JSON{}).Encode(in)
	assert.Error(t, err)
}
