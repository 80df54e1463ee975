// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/core/chapter"
	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
)

var quickRetry = chapter.FetchPolicy{Attempts: 3, Delay: time.Millisecond}

func newSource(repo *fakeRepository, cache chapter.PageCache) *chapter.PageSource {
	chapters, _ := repo.ListByComic(context.Background(), "comic-1", chapter.ChapterFilter{})
	return chapter.NewPageSource(chapters, repo, cache, quickRetry, discardLogger())
}

/*
TestPageSource_Chapters keeps the repository order.
*/
func TestPageSource_Chapters(t *testing.T) {
	repo := newFakeRepository().withChapter("c1", 1, "en", 2).withChapter("c1.5", 1.5, "en", 1)

	chapters := newSource(repo, nil).Chapters()

	require.Len(t, chapters, 2)
	assert.Equal(t, "c1", chapters[0].ChapterID())
	assert.Equal(t, 1.5, chapters[1].ChapterNumber())
}

/*
TestPageSource_FetchPages covers cache use and retry behaviour.
*/
func TestPageSource_FetchPages(t *testing.T) {
	transient := errors.New("postgres: connection reset")

	tests := []struct {
		name      string
		setup     func(repo *fakeRepository, cache *fakeCache)
		wantURLs  int
		wantErr   error
		wantCode  string
		wantCalls int
		cached    bool
	}{
		{
			name: "cache_hit",
			setup: func(repo *fakeRepository, cache *fakeCache) {
				cache.entries["c1"] = []string{"https://cdn.yomira.app/cached.webp"}
			},
			wantURLs:  1,
			wantCalls: 0,
			cached:    true,
		},
		{
			name:      "miss_then_store",
			setup:     func(*fakeRepository, *fakeCache) {},
			wantURLs:  3,
			wantCalls: 1,
			cached:    true,
		},
		{
			name: "transient_error_retried",
			setup: func(repo *fakeRepository, cache *fakeCache) {
				repo.failNext("c1", transient)
			},
			wantURLs:  3,
			wantCalls: 2,
			cached:    true,
		},
		{
			name: "attempts_exhausted",
			setup: func(repo *fakeRepository, cache *fakeCache) {
				repo.failNext("c1", transient, transient, transient)
			},
			wantErr:   transient,
			wantCalls: 3,
		},
		{
			name: "not_found_not_retried",
			setup: func(repo *fakeRepository, cache *fakeCache) {
				repo.failNext("c1", apperr.NotFound("Chapter"))
			},
			wantCode:  "NOT_FOUND",
			wantCalls: 1,
		},
		{
			name: "cache_failure_falls_back",
			setup: func(repo *fakeRepository, cache *fakeCache) {
				cache.getErr = errors.New("redis: i/o timeout")
			},
			wantURLs:  3,
			wantCalls: 1,
			cached:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository().withChapter("c1", 1, "en", 3)
			cache := newFakeCache()
			tt.setup(repo, cache)
			source := newSource(repo, cache)

			urls, err := source.FetchPages(context.Background(), source.Chapters()[0])

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				assertCode(t, err, tt.wantCode)
			default:
				require.NoError(t, err)
				assert.Len(t, urls, tt.wantURLs)
			}
			assert.Equal(t, tt.wantCalls, repo.calls("c1"))
			assert.Equal(t, tt.cached, cache.has("c1"))
		})
	}
}

/*
TestPageSource_LockedChapter refuses without touching storage.
*/
func TestPageSource_LockedChapter(t *testing.T) {
	repo := newFakeRepository().withChapter("c1", 1, "en", 3)
	repo.chapters[0].IsLocked = true
	source := newSource(repo, newFakeCache())

	_, err := source.FetchPages(context.Background(), source.Chapters()[0])

	assertCode(t, err, "FORBIDDEN")
	assert.Zero(t, repo.calls("c1"))
}

/*
TestPageSource_EmptyChapterNotCached leaves empty lists to the engine.
*/
func TestPageSource_EmptyChapterNotCached(t *testing.T) {
	repo := newFakeRepository().withChapter("c1", 1, "en", 0)
	cache := newFakeCache()
	source := newSource(repo, cache)

	urls, err := source.FetchPages(context.Background(), source.Chapters()[0])

	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.False(t, cache.has("c1"))
}

/*
TestPageSource_Cancelled stops retrying once the session is gone.
*/
func TestPageSource_Cancelled(t *testing.T) {
	repo := newFakeRepository().withChapter("c1", 1, "en", 3)
	repo.failNext("c1", context.Canceled)
	source := newSource(repo, nil)

	_, err := source.FetchPages(context.Background(), source.Chapters()[0])

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.calls("c1"))
}
