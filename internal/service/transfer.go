package service

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/metrics"
)

// ImportResult describes a completed import.
type ImportResult struct {
	Format    codec.Format `json:"format"`
	Overwrite bool         `json:"overwrite"`
	Imported  int          `json:"imported"`
	// Reassigned counts records given a fresh id (missing or colliding).
	Reassigned int `json:"reassigned"`
	Total      int `json:"total"`
}

// Import decodes data and merges it into the collection, or replaces the
// bookmarks when overwrite is set. Categories are never touched. A document
// rejected by the codec leaves the collection unchanged.
func (s *Service) Import(ctx context.Context, format codec.Format, data []byte, overwrite bool) (ImportResult, error) {
	c, err := codec.New(format, s.codec)
	if err != nil {
		return ImportResult{}, err
	}

	decoded, err := c.Decode(data)
	if err != nil {
		var fErr *domain.FormatError
		if errors.As(err, &fErr) {
			metrics.FormatErrors.WithLabelValues(string(format)).Inc()
		}
		return ImportResult{}, err
	}

	col, err := s.repo.Load(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]struct{}, len(col.Bookmarks)+len(decoded))
	if !overwrite {
		for _, b := range col.Bookmarks {
			seen[b.ID] = struct{}{}
		}
	}

	reassigned := 0
	for i := range decoded {
		if normalize(&decoded[i], seen) {
			reassigned++
		}
	}

	if overwrite {
		col.Bookmarks = decoded
	} else {
		col.Bookmarks = append(col.Bookmarks, decoded...)
	}
	col.RebuildTags()

	saved, err := s.repo.Save(ctx, col)
	if err != nil {
		return ImportResult{}, err
	}

	mode := "merge"
	if overwrite {
		mode = "overwrite"
	}
	metrics.Imports.WithLabelValues(string(format), mode).Inc()
	metrics.ImportedBookmarks.WithLabelValues(string(format)).Add(float64(len(decoded)))
	s.log.Info("bookmarks imported",
		logger.String("format", string(format)),
		logger.String("mode", mode),
		logger.Int("imported", len(decoded)),
		logger.Int("reassigned", reassigned))

	return ImportResult{
		Format:     format,
		Overwrite:  overwrite,
		Imported:   len(decoded),
		Reassigned: reassigned,
		Total:      len(saved.Bookmarks),
	}, nil
}

// normalize gives b a fresh id when it has none or its id is already taken,
// and derives a missing domain. It reports whether the id was replaced.
func normalize(b *domain.Bookmark, seen map[string]struct{}) bool {
	replaced := false
	if _, taken := seen[b.ID]; taken || strings.TrimSpace(b.ID) == "" {
		b.ID = domain.NewID()
		replaced = true
	}
	seen[b.ID] = struct{}{}

	if b.Domain == "" {
		b.Domain = domain.ExtractDomain(b.URL)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return replaced
}

// Export is an encoded collection ready to be written or downloaded.
type Export struct {
	Format      codec.Format
	Data        []byte
	FileName    string
	ContentType string
	Count       int
}

// Export encodes every bookmark in format.
func (s *Service) Export(ctx context.Context, format codec.Format) (Export, error) {
	c, err := codec.New(format, s.codec)
	if err != nil {
		return Export{}, err
	}

	col, err := s.repo.Load(ctx)
	if err != nil {
		return Export{}, err
	}

	data, err := c.Encode(col.Bookmarks)
	if err != nil {
		return Export{}, err
	}

	metrics.Exports.WithLabelValues(string(format)).Inc()
	s.log.Debug("bookmarks exported",
		logger.String("format", string(format)),
		logger.Int("count", len(col.Bookmarks)))

	return Export{
		Format:      format,
		Data:        data,
		FileName:    format.FileName(),
		ContentType: format.ContentType(),
		Count:       len(col.Bookmarks),
	}, nil
}
