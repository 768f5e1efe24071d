// Package codec converts the bookmark list to and from the exchange formats.
//
// Encode and Decode are not inverses except for JSON: CSV, bookmark-HTML and
// homepage YAML decode always assign fresh ids and stamp the import time.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// Format names an exchange format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatHomepage Format = "homepage"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatHTML, FormatHomepage}

// Codec is a bidirectional converter for one format.
type Codec interface {
	Format() Format
	Encode(bookmarks []domain.Bookmark) ([]byte, error)
	Decode(data []byte) ([]domain.Bookmark, error)
}

// Options tune the codecs.
type Options struct {
	// Now stamps dateAdded on decoded records. Defaults to time.Now.
	Now func() time.Time

	// Strict upgrades CSV to RFC 4180 quoting and escapes HTML exports.
	// Legacy (non-strict) output stays importable in strict mode.
	Strict bool
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// New returns the codec for format.
func New(format Format, opts Options) (Codec, error) {
	switch format {
	case FormatJSON:
		return &JSON{}, nil
	case FormatCSV:
		return &CSV{opts: opts}, nil
	case FormatHTML:
		return &HTML{opts: opts}, nil
	case FormatHomepage:
		return &Homepage{opts: opts}, nil
	default:
		return nil, &domain.FormatError{Format: string(format), Reason: "unsupported format"}
	}
}

// ParseFormat accepts a format name or a bare extension ("yaml", "htm").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "html", "htm":
		return FormatHTML, nil
	case "homepage", "yaml", "yml":
		return FormatHomepage, nil
	default:
		return "", &domain.FormatError{Format: s, Reason: "unsupported format"}
	}
}

// DetectFormat infers the format from a file name's extension.
func DetectFormat(filename string) (Format, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "", &domain.FormatError{Reason: fmt.Sprintf("cannot infer format of %q", filename)}
	}
	return ParseFormat(ext)
}

// FileName is the download name of an export.
func (f Format) FileName() string {
	return "bookmarks." + f.Extension()
}

// Extension is the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatHomepage {
		return "yaml"
	}
	return string(f)
}

// ContentType is the MIME type of an export.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatHTML:
		return "text/html"
	case FormatHomepage:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}
