package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// JSON is the structural format. It round-trips the bookmark list exactly,
// with two limits of encoding/json: invalid UTF-8 in a string field comes
// back as U+FFFD, and a dateAdded outside years 0-9999 fails to encode.
type JSON struct{}

func (*JSON) Format() Format { return FormatJSON }

// Encode writes an indented array in the Bookmark field order.
func (*JSON) Encode(bookmarks []domain.Bookmark) ([]byte, error) {
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	data, err := json.MarshalIndent(bookmarks, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode expects a top-level array. Records are not validated: each field is
// decoded on its own, so a field of the wrong type is left at its zero value
// and the rest of the record is kept. An element that is not an object is
// skipped.
func (*JSON) Decode(data []byte) ([]domain.Bookmark, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.FormatError{Format: string(FormatJSON), Reason: topLevelReason(data, err), Err: err}
	}
	if raw == nil {
		return nil, &domain.FormatError{Format: string(FormatJSON), Reason: "expected an array of bookmarks, got null"}
	}

	bookmarks := make([]domain.Bookmark, 0, len(raw))
	for _, item := range raw {
		if b, ok := decodeRecord(item); ok {
			bookmarks = append(bookmarks, b)
		}
	}
	return bookmarks, nil
}

func decodeRecord(item json.RawMessage) (domain.Bookmark, bool) {
	var b domain.Bookmark
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return b, false
	}

	targets := map[string]any{
		"id":       &b.ID,
		"title":    &b.Title,
		"url":      &b.URL,
		"domain":   &b.Domain,
		"tags":     &b.Tags,
		"category": &b.Category,
		"notes":    &b.Notes,
		"favicon":  &b.Favicon,
	}
	for name, dst := range targets {
		if v, ok := fields[name]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	if v, ok := fields["dateAdded"]; ok {
		b.DateAdded = parseDateAdded(v)
	}
	return b, true
}

// dateLayouts are tried in order for a string dateAdded.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// epochSecondsLimit separates epoch seconds from epoch milliseconds: any
// millisecond value after March 1973 is above it.
const epochSecondsLimit = 1e11

// parseDateAdded accepts an RFC 3339 timestamp, an ISO 8601 date or local
// date-time (read as UTC), or a number of epoch milliseconds. Numbers below
// epochSecondsLimit are read as epoch seconds. Anything else is the zero time.
func parseDateAdded(v json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}

	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return time.Time{}
	}
	if n > -epochSecondsLimit && n < epochSecondsLimit {
		return time.Unix(int64(n), 0).UTC()
	}
	return domain.Timestamp(time.UnixMilli(int64(n)))
}

func topLevelReason(data []byte, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return "expected an array of bookmarks, got " + typeErr.Value
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "empty document"
	}
	return err.Error()
}
