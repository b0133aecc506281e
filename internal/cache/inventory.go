package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%s"
	postKeyPrefix = "post:%s"
	globalFeedKey = "feed:global:first"
)

const (
	UserTTL       = 5 * time.Minute
	PostTTL       = 30 * time.Minute
	GlobalFeedTTL = 1 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// GlobalFeedKey caches only the unfiltered first page; deeper pages go to
// the database.
func GlobalFeedKey() string {
	return globalFeedKey
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateGlobalFeed(ctx context.Context) {
	Invalidate(ctx, globalFeedKey)
}
