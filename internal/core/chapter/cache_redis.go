// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-reader/internal/platform/constants"
)

// # Page Cache

// PageCache keeps resolved page URL lists so that re-entering a chapter skips the database.
type PageCache interface {
	// Get reports false on a miss.
	Get(context context.Context, chapterID string) ([]string, bool, error)
	Set(context context.Context, chapterID string, urls []string) error
}

// RedisPageCache implements [PageCache] using Redis.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a Redis-backed [PageCache] whose entries expire after ttl.
func NewPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: client, ttl: ttl}
}

/*
Get retrieves the cached page URLs of a chapter.

Parameters:
  - context: context.Context
  - chapterID: string

Returns:
  - []string: Page URLs in reading order
  - bool: False when the entry is absent or expired
  - error: Connectivity or decoding errors
*/
func (cache *RedisPageCache) Get(context context.Context, chapterID string) ([]string, bool, error) {

	payload, err := cache.client.Get(context, pageKey(chapterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_page_cache_get_failed: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(payload, &urls); err != nil {
		return nil, false, fmt.Errorf("redis_page_cache_decode_failed: %w", err)
	}

	return urls, true, nil
}

// Set stores the page URLs of a chapter with the cache TTL.
func (cache *RedisPageCache) Set(context context.Context, chapterID string, urls []string) error {

	payload, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("redis_page_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, pageKey(chapterID), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_page_cache_set_failed: %w", err)
	}

	return nil
}

func pageKey(chapterID string) string {
	return constants.RedisPrefixChapterPages + chapterID
}
