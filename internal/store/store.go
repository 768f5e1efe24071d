package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/metrics"
)

// Store is the only component reading and writing the collection.
// Every call is a full read or a full overwrite of the persisted values;
// nothing is retried.
type Store struct {
	backend       Backend
	log           logger.Logger
	checkRevision bool
}

// New creates a store over backend. With checkRevision a save is rejected
// with domain.ErrConflict when another writer saved since the collection
// was loaded; otherwise the last write wins.
func New(backend Backend, log logger.Logger, checkRevision bool) *Store {
	return &Store{
		backend:       backend,
		log:           log,
		checkRevision: checkRevision,
	}
}

// Load returns the stored collection, or the defaults when the backend was
// never initialized.
func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	raw, err := s.backend.Get(ctx, Keys...)
	if err != nil {
		return domain.Collection{}, s.fail("load", err)
	}

	c := domain.NewCollection()
	if err := decodeValue(raw, KeyBookmarks, &c.Bookmarks); err != nil {
		return domain.Collection{}, s.fail("load", err)
	}
	if err := decodeValue(raw, KeyTags, &c.Tags); err != nil {
		return domain.Collection{}, s.fail("load", err)
	}
	if err := decodeValue(raw, KeyCategories, &c.Categories); err != nil {
		return domain.Collection{}, s.fail("load", err)
	}
	if err := decodeValue(raw, KeyRevision, &c.Revision); err != nil {
		return domain.Collection{}, s.fail("load", err)
	}

	// A stored JSON null decodes to a nil slice.
	if c.Bookmarks == nil {
		c.Bookmarks = []domain.Bookmark{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}

	s.log.Debug("collection loaded",
		logger.Int("bookmarks", len(c.Bookmarks)),
		logger.Int64("revision", c.Revision))
	return c, nil
}

// Save overwrites all persisted values with c and returns it stamped with
// the new revision.
func (s *Store) Save(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	next := c.Clone()
	next.Revision = c.Revision + 1

	values, err := encodeCollection(next)
	if err != nil {
		return domain.Collection{}, s.fail("save", err)
	}

	if s.checkRevision {
		err = s.backend.CompareAndSet(ctx, KeyRevision, revisionValue(c.Revision), values)
	} else {
		err = s.backend.Set(ctx, values)
	}

	if errors.Is(err, domain.ErrConflict) {
		metrics.StoreConflicts.Inc()
		s.log.Warn("save rejected, collection changed since load",
			logger.Int64("revision", c.Revision))
		return domain.Collection{}, fmt.Errorf("save at revision %d: %w", c.Revision, domain.ErrConflict)
	}
	if err != nil {
		return domain.Collection{}, s.fail("save", err)
	}

	s.log.Debug("collection saved",
		logger.Int("bookmarks", len(next.Bookmarks)),
		logger.Int64("revision", next.Revision))
	return next, nil
}

// Reset saves an empty collection with the default categories.
func (s *Store) Reset(ctx context.Context) (domain.Collection, error) {
	raw, err := s.backend.Get(ctx, KeyRevision)
	if err != nil {
		return domain.Collection{}, s.fail("reset", err)
	}

	c := domain.NewCollection()
	if err := decodeValue(raw, KeyRevision, &c.Revision); err != nil {
		return domain.Collection{}, s.fail("reset", err)
	}

	s.log.Info("resetting collection to defaults")
	return s.Save(ctx, c)
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (s *Store) fail(op string, err error) error {
	metrics.StoreFailures.WithLabelValues(op).Inc()
	s.log.Error("storage operation failed", logger.String("op", op), logger.Error(err))
	return &domain.StorageError{Op: op, Err: err}
}

func decodeValue(raw map[string][]byte, key string, dst any) error {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func encodeCollection(c domain.Collection) (map[string][]byte, error) {
	values := make(map[string][]byte, len(Keys))
	for key, v := range map[string]any{
		KeyBookmarks:  c.Bookmarks,
		KeyTags:       c.Tags,
		KeyCategories: c.Categories,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		values[key] = data
	}
	values[KeyRevision] = revisionValue(c.Revision)
	return values, nil
}

// revisionValue is the stored form of rev. Zero is never written.
func revisionValue(rev int64) []byte {
	if rev == 0 {
		return nil
	}
	return []byte(strconv.FormatInt(rev, 10))
}
