package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/pageinfo"
	"github.com/MrSnakeDoc/bookmarker/internal/query"
	"github.com/MrSnakeDoc/bookmarker/internal/store"
)

type stubHints struct {
	got string
}

func (s *stubHints) Suggest(_ context.Context, rawURL string) (pageinfo.Suggestion, error) {
	s.got = rawURL
	return pageinfo.Suggestion{
		Page:  pageinfo.Page{Title: "Stub", URL: rawURL},
		Hints: pageinfo.Hints{SuggestedCategory: "work", SuggestedTags: []string{"api"}},
	}, nil
}

type failingPage struct{ err error }

func (f failingPage) ActivePage(context.Context) (pageinfo.Page, error) {
	return pageinfo.Page{}, f.err
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	repo := store.New(store.NewMemoryBackend(), logger.NewNop(), true)
	return New(repo, nil, codec.Options{}, logger.NewNop()), repo
}

func save(t *testing.T, s *Service, title, url, tags, category string) domain.Bookmark {
	t.Helper()
	b, err := s.Save(context.Background(), SaveInput{
		Page:     pageinfo.Static{Title: title, URL: url},
		Tags:     tags,
		Category: category,
	})
	require.NoError(t, err)
	return b
}

func TestSave(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	b, err := s.Save(ctx, SaveInput{
		Page:     pageinfo.Static{Title: "", URL: "https://Go.dev/doc", FaviconURL: "https://go.dev/favicon.ico"},
		Tags:     "go, docs ,,",
		Category: " research ",
		Notes:    "later",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Untitled", b.Title)
	assert.Equal(t, "go.dev", b.Domain)
	assert.Equal(t, []string{"go", "docs"}, b.Tags)
	assert.Equal(t, "research", b.Category)
	assert.Equal(t, "https://go.dev/favicon.ico", b.Favicon)

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, c.Bookmarks, 1)
	assert.Equal(t, []string{"go", "docs"}, c.Tags)
	assert.Equal(t, domain.DefaultCategories(), c.Categories, "saving never changes the category set")
}

func TestSaveWithoutActivePage(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	inputs := []SaveInput{
		{},
		{Page: pageinfo.Static{}},
		{Page: pageinfo.Static{Title: "New Tab", URL: "chrome://newtab"}},
		{Page: failingPage{err: domain.ErrNoActivePage}},
	}
	for _, in := range inputs {
		_, err := s.Save(ctx, in)
		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.True(t, errors.Is(err, domain.ErrNoActivePage))
	}

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Bookmarks)
	assert.Zero(t, c.Revision, "nothing was saved")
}

func TestSaveRejectsOversizedInput(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Save(context.Background(), SaveInput{
		Page:     pageinfo.Static{URL: "https://a.example"},
		Category: strings.Repeat("c", maxCategoryLen+1),
	})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Category", vErr.Field)
}

func TestSaveReportsFirstInvalidFieldByName(t *testing.T) {
	s, _ := newTestService(t)

	for range 20 {
		_, err := s.Save(context.Background(), SaveInput{
			Page:     pageinfo.Static{URL: "https://a.example"},
			Tags:     strings.Repeat("t", maxTagsLen+1),
			Category: strings.Repeat("c", maxCategoryLen+1),
			Notes:    strings.Repeat("n", maxNotesLen+1),
		})
		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "Category", vErr.Field)
		assert.Contains(t, vErr.Err.Error(), "Notes")
		assert.Contains(t, vErr.Err.Error(), "Tags")
	}
}

func TestSaveProviderFailureIsReturned(t *testing.T) {
	s, _ := newTestService(t)
	boom := errors.New("tab query failed")

	_, err := s.Save(context.Background(), SaveInput{Page: failingPage{err: boom}})
	assert.True(t, errors.Is(err, boom))
}

func TestDeleteRebuildsTags(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	a := save(t, s, "A", "https://a.example", "shared, only-a", "")
	save(t, s, "B", "https://b.example", "shared", "")

	require.NoError(t, s.Delete(ctx, a.ID))

	tags, err := s.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, tags)

	_, err = s.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteUnknownID(t *testing.T) {
	s, _ := newTestService(t)
	err := s.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBrowse(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	save(t, s, "Go Guide", "https://x.io/guide", "go", "work")
	save(t, s, "Other", "https://go.dev", "", "personal")
	save(t, s, "Unrelated", "https://x.io/else", "misc", "work")

	v, err := s.Browse(ctx, query.Options{Search: "GO", Sort: query.SortTitle})
	require.NoError(t, err)
	require.Len(t, v.Bookmarks, 2)
	assert.Equal(t, "Go Guide", v.Bookmarks[0].Title)
	assert.Equal(t, "Other", v.Bookmarks[1].Title)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, []string{"go", "misc"}, v.Tags)
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "x.io", v.Groups[0].Domain)

	v, err = s.Browse(ctx, query.Options{Category: "work", Tag: "misc"})
	require.NoError(t, err)
	require.Len(t, v.Bookmarks, 1)
	assert.Equal(t, "Unrelated", v.Bookmarks[0].Title)
}

func TestAddCategory(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	categories, err := s.AddCategory(ctx, "  reading ")
	require.NoError(t, err)
	assert.Equal(t, "reading", categories[len(categories)-1])

	again, err := s.AddCategory(ctx, "reading")
	require.NoError(t, err)
	assert.Equal(t, categories, again)

	_, err = s.AddCategory(ctx, "   ")
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "category", vErr.Field)

	stored, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, categories, stored)
}

func TestReset(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	save(t, s, "A", "https://a.example", "x", "mine")
	_, err := s.AddCategory(ctx, "mine")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	st, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Bookmarks)
	assert.Zero(t, st.Tags)

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(), categories)
}

func TestSuggest(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Suggest(context.Background(), "https://a.example")
	assert.True(t, errors.Is(err, ErrHintsDisabled))

	hints := &stubHints{}
	s.hints = hints
	got, err := s.Suggest(context.Background(), "https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", hints.got)
	assert.Equal(t, "work", got.Hints.SuggestedCategory)
}
