package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedPost struct {
	Slug      string `json:"slug"`
	ReadCount int    `json:"read_count"`
}

func TestAside_MissFetchesAndStores(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var got cachedPost
	err := Aside(ctx, PostKey("hello-world"), &got, PostTTL, func() error {
		fetches++
		got = cachedPost{Slug: "hello-world", ReadCount: 3}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.True(t, mr.Exists(PostKey("hello-world")))

	// Second read is served from the cache.
	var again cachedPost
	err = Aside(ctx, PostKey("hello-world"), &again, PostTTL, func() error {
		fetches++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, got, again)
}

func TestAside_DisabledClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetches := 0
	var got cachedPost
	for range 3 {
		err := Aside(ctx, PostKey("hello-world"), &got, PostTTL, func() error {
			fetches++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fetches)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	err := Aside(ctx, PostKey("broken"), &cachedPost{}, PostTTL, func() error {
		return assert.AnError
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists(PostKey("broken")))
}

func TestInvalidateUser_DropsProfileAndTotalReads(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey("alice"), map[string]string{"username": "alice"}, UserTTL))
	require.NoError(t, SetJSON(ctx, TotalReadsKey("alice"), 42, TotalReadsTTL))

	InvalidateUser(ctx, "alice")
	assert.False(t, mr.Exists(UserKey("alice")))
	assert.False(t, mr.Exists(TotalReadsKey("alice")))
}

func TestSetJSON_AppliesTTL(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TagListKey, []string{"go"}, TagListTTL))
	mr.FastForward(TagListTTL + time.Second)
	assert.False(t, mr.Exists(TagListKey))
}
