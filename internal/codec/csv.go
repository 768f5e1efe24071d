package codec

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// csvHeader is the first row of every CSV export.
var csvHeader = []string{"Title", "URL", "Tags", "Category", "Notes", "Date Added"}

// CSV is the spreadsheet format. Tags are joined with ";" inside one field.
//
// The legacy decoder splits lines on every comma, so a value holding a
// literal comma is split across columns. Strict mode reads quoted fields
// properly.
type CSV struct {
	opts Options
}

func (*CSV) Format() Format { return FormatCSV }

// Encode writes the header and one row per bookmark.
func (c *CSV) Encode(bookmarks []domain.Bookmark) ([]byte, error) {
	if c.opts.Strict {
		return c.encodeStrict(bookmarks)
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))
	buf.WriteByte('\n')
	for _, b := range bookmarks {
		fields := csvRow(b)
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(f)
			buf.WriteByte('"')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (c *CSV) encodeStrict(bookmarks []domain.Bookmark) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		if err := w.Write(csvRow(b)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(b domain.Bookmark) []string {
	return []string{
		b.Title,
		b.URL,
		strings.Join(b.Tags, ";"),
		b.Category,
		b.Notes,
		b.DateAdded.UTC().Format(time.RFC3339Nano),
	}
}

// Decode skips the header row and every row with fewer than two fields.
// The Date Added column is ignored: records are stamped with the import time.
func (c *CSV) Decode(data []byte) ([]domain.Bookmark, error) {
	var rows [][]string
	if c.opts.Strict {
		rows = readStrictRows(data)
	} else {
		rows = readLegacyRows(data)
	}

	now := c.opts.now()
	bookmarks := make([]domain.Bookmark, 0, len(rows))
	for _, fields := range rows {
		if len(fields) < 2 {
			continue
		}
		bookmarks = append(bookmarks, domain.NewBookmarkAt(
			now,
			fields[0],
			fields[1],
			splitAndClean(field(fields, 2), ";"),
			field(fields, 3),
			field(fields, 4),
			"",
		))
	}
	return bookmarks, nil
}

// readLegacyRows splits on newlines and commas and strips one layer of
// surrounding double quotes from each value. Whitespace is kept, so the
// second value of `"a", "b"` is ` "b`.
func readLegacyRows(data []byte) [][]string {
	lines := strings.Split(string(data), "\n")
	rows := make([][]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := strings.Split(line, ",")
		for j, v := range values {
			values[j] = stripQuotes(v)
		}
		rows = append(rows, values)
	}
	return rows
}

func stripQuotes(v string) string {
	v = strings.TrimPrefix(v, `"`)
	return strings.TrimSuffix(v, `"`)
}

// readStrictRows reads RFC 4180 records. A malformed record is skipped and
// reading resumes on the next line.
func readStrictRows(data []byte) [][]string {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows := make([][]string, 0)
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, record)
	}
	return rows
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
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
