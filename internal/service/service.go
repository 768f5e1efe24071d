package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/metrics"
	"github.com/MrSnakeDoc/bookmarker/internal/pageinfo"
	"github.com/MrSnakeDoc/bookmarker/internal/query"
)

const (
	maxCategoryLen = 64
	maxTagsLen     = 1024
	maxNotesLen    = 10_000
)

var ErrHintsDisabled = errors.New("page hints are disabled")

// Repository loads and saves the whole collection.
type Repository interface {
	Load(ctx context.Context) (domain.Collection, error)
	Save(ctx context.Context, c domain.Collection) (domain.Collection, error)
	Reset(ctx context.Context) (domain.Collection, error)
	Ping(ctx context.Context) error
}

// Service owns the flow of every user action: one load, pure computation,
// at most one save. It holds no collection state of its own.
type Service struct {
	repo  Repository
	hints pageinfo.HintProvider
	codec codec.Options
	log   logger.Logger
}

// New creates a service. hints may be nil, in which case Suggest fails with
// ErrHintsDisabled.
func New(repo Repository, hints pageinfo.HintProvider, codecOpts codec.Options, log logger.Logger) *Service {
	return &Service{
		repo:  repo,
		hints: hints,
		codec: codecOpts,
		log:   log,
	}
}

// View is the dashboard: the filtered list, its domain groups and the
// values offered in the filter menus.
type View struct {
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
	Groups     []query.Group     `json:"groups"`
	Tags       []string          `json:"tags"`
	Categories []string          `json:"categories"`
	Total      int               `json:"total"`
}

// Browse loads the collection and applies opts.
func (s *Service) Browse(ctx context.Context, opts query.Options) (View, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return View{}, err
	}

	res := query.Apply(c.Bookmarks, opts)
	return View{
		Bookmarks:  res.Bookmarks,
		Groups:     res.Groups,
		Tags:       domain.SortedTags(c.Tags),
		Categories: c.Categories,
		Total:      len(c.Bookmarks),
	}, nil
}

// Get returns one bookmark.
func (s *Service) Get(ctx context.Context, id string) (domain.Bookmark, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}
	i := c.Find(id)
	if i < 0 {
		return domain.Bookmark{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return c.Bookmarks[i].Clone(), nil
}

// SaveInput is the save form. Page supplies the current page.
type SaveInput struct {
	Page     pageinfo.ActivePageProvider
	Tags     string
	Category string
	Notes    string
}

func (in SaveInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Tags, validation.Length(0, maxTagsLen)),
		validation.Field(&in.Category, validation.Length(0, maxCategoryLen)),
		validation.Field(&in.Notes, validation.Length(0, maxNotesLen)),
	)
}

// Save captures the current page as a new bookmark.
func (s *Service) Save(ctx context.Context, in SaveInput) (domain.Bookmark, error) {
	if err := in.Validate(); err != nil {
		return domain.Bookmark{}, invalid(err)
	}
	if in.Page == nil {
		return domain.Bookmark{}, noActivePage()
	}

	page, err := in.Page.ActivePage(ctx)
	switch {
	case errors.Is(err, domain.ErrNoActivePage):
		return domain.Bookmark{}, noActivePage()
	case err != nil:
		return domain.Bookmark{}, err
	case strings.TrimSpace(page.URL) == "":
		return domain.Bookmark{}, noActivePage()
	}

	c, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}

	b := domain.NewBookmark(page.Title, strings.TrimSpace(page.URL), in.Tags, strings.TrimSpace(in.Category), in.Notes, page.FaviconURL)
	c.Bookmarks = append(c.Bookmarks, b)
	c.RebuildTags()

	if _, err := s.repo.Save(ctx, c); err != nil {
		return domain.Bookmark{}, err
	}

	metrics.BookmarksSaved.Inc()
	s.log.Info("bookmark saved",
		logger.String("id", b.ID),
		logger.String("domain", b.Domain),
		logger.Strings("tags", b.Tags))
	return b, nil
}

// Delete removes the bookmark with id and rebuilds the tag set.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	i := c.Find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	c.Bookmarks = slices.Delete(c.Bookmarks, i, i+1)
	c.RebuildTags()

	if _, err := s.repo.Save(ctx, c); err != nil {
		return err
	}

	metrics.BookmarksDeleted.Inc()
	s.log.Info("bookmark deleted", logger.String("id", id))
	return nil
}

// Tags returns the tag set in lexicographic order.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SortedTags(c.Tags), nil
}

// Categories returns the category set in insertion order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Categories, nil
}

// AddCategory extends the category set. Adding an existing name is a no-op.
func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Length(0, maxCategoryLen)); err != nil {
		return nil, &domain.ValidationError{Field: "category", Reason: err.Error(), Err: err}
	}

	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := domain.AddCategory(c.Categories, name)
	if err != nil {
		return nil, err
	}
	if len(categories) == len(c.Categories) {
		return c.Categories, nil
	}

	c.Categories = categories
	if _, err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("category added", logger.String("category", name))
	return categories, nil
}

// Reset clears bookmarks and tags and restores the default categories.
func (s *Service) Reset(ctx context.Context) error {
	if _, err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.log.Warn("collection reset to defaults")
	return nil
}

// Status summarizes the stored collection.
type Status struct {
	Bookmarks  int   `json:"bookmarks"`
	Tags       int   `json:"tags"`
	Categories int   `json:"categories"`
	Revision   int64 `json:"revision"`
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Bookmarks:  len(c.Bookmarks),
		Tags:       len(c.Tags),
		Categories: len(c.Categories),
		Revision:   c.Revision,
	}, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Suggest fetches rawURL and returns pre-fill hints for the save form.
func (s *Service) Suggest(ctx context.Context, rawURL string) (pageinfo.Suggestion, error) {
	if s.hints == nil {
		return pageinfo.Suggestion{}, ErrHintsDisabled
	}
	return s.hints.Suggest(ctx, rawURL)
}

func noActivePage() error {
	return &domain.ValidationError{
		Field:  "page",
		Reason: "no current page available",
		Err:    domain.ErrNoActivePage,
	}
}

// invalid reports the first failing field in name order. Err keeps every
// field's failure.
func invalid(err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		field := slices.Sorted(maps.Keys(errs))[0]
		return &domain.ValidationError{Field: field, Reason: errs[field].Error(), Err: err}
	}
	return &domain.ValidationError{Reason: err.Error(), Err: err}
}
