package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix       = "post:%s"
	UserKeyPrefix       = "profile:%s"
	TotalReadsKeyPrefix = "profile:%s:total_reads"
	TagListKey          = "tags:all"
)

const (
	PostTTL       = 5 * time.Minute
	UserTTL       = 5 * time.Minute
	TotalReadsTTL = 10 * time.Minute
	TagListTTL    = 30 * time.Minute
)

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func UserKey(username string) string {
	return fmt.Sprintf(UserKeyPrefix, username)
}

func TotalReadsKey(username string) string {
	return fmt.Sprintf(TotalReadsKeyPrefix, username)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
}

func InvalidateUser(ctx context.Context, username string) {
	Invalidate(ctx, UserKey(username))
	Invalidate(ctx, TotalReadsKey(username))
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}
