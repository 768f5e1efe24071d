package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ""), mr
}

func TestGetMissingKeys(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Get(context.Background(), store.Keys...)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetAndGet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	err := s.Set(ctx, map[string][]byte{
		store.KeyTags:     []byte(`["go"]`),
		store.KeyRevision: []byte("1"),
	})
	require.NoError(t, err)

	raw, err := mr.Get("bookmarker:allTags")
	require.NoError(t, err)
	assert.Equal(t, `["go"]`, raw)
	assert.Equal(t, 0, int(mr.TTL("bookmarker:allTags")), "values are stored without TTL")

	got, err := s.Get(ctx, store.KeyTags, store.KeyBookmarks, store.KeyRevision)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		store.KeyTags:     []byte(`["go"]`),
		store.KeyRevision: []byte("1"),
	}, got)
}

func TestCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewStore(client, "test:")
	require.NoError(t, s.Set(context.Background(), map[string][]byte{"revision": []byte("3")}))
	assert.True(t, mr.Exists("test:revision"))
	assert.False(t, mr.Exists("bookmarker:revision"))
}

func TestCompareAndSet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	// Absent guard key matches nil
	err := s.CompareAndSet(ctx, store.KeyRevision, nil, map[string][]byte{store.KeyRevision: []byte("1")})
	require.NoError(t, err)

	err = s.CompareAndSet(ctx, store.KeyRevision, nil, map[string][]byte{store.KeyRevision: []byte("1")})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	err = s.CompareAndSet(ctx, store.KeyRevision, []byte("1"), map[string][]byte{
		store.KeyRevision: []byte("2"),
		store.KeyTags:     []byte(`[]`),
	})
	require.NoError(t, err)

	rev, err := mr.Get("bookmarker:revision")
	require.NoError(t, err)
	assert.Equal(t, "2", rev)
	assert.True(t, mr.Exists("bookmarker:allTags"))
}

func TestPingFailsWhenServerIsDown(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestCollectionStoreOverRedis(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	cs := store.New(s, logger.NewNop(), true)

	c, err := cs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(), c.Categories)

	c.Bookmarks = append(c.Bookmarks, domain.NewBookmark("Go", "https://go.dev", "go", "", "", ""))
	c.RebuildTags()
	saved, err := cs.Save(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Revision)

	// A second writer still holding revision 0 loses
	_, err = cs.Save(ctx, c)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	loaded, err := cs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Bookmarks, 1)
	assert.Equal(t, []string{"go"}, loaded.Tags)
	assert.Equal(t, int64(1), loaded.Revision)
}
