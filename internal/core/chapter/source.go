// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
	"github.com/taibuivan/yomira-reader/internal/reader"
)

// FetchPolicy bounds the retries of a page lookup.
type FetchPolicy struct {
	Attempts uint
	Delay    time.Duration
}

// # Reader Data Source

// PageSource serves one comic's chapters to the reader engine.
//
// Page lists come from the cache when present, otherwise from the repository with
// bounded retries. Empty lists are returned as-is; the engine reports them.
type PageSource struct {
	chapters []Chapter
	repo     ChapterRepository
	cache    PageCache
	policy   FetchPolicy
	logger   *slog.Logger
}

var _ reader.DataSource[string, Chapter] = (*PageSource)(nil)

// NewPageSource snapshots chapters for one reading session. cache may be nil.
func NewPageSource(chapters []*Chapter, repo ChapterRepository, cache PageCache, policy FetchPolicy, logger *slog.Logger) *PageSource {
	snapshot := make([]Chapter, 0, len(chapters))
	for _, chapter := range chapters {
		snapshot = append(snapshot, *chapter)
	}
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}

	return &PageSource{
		chapters: snapshot,
		repo:     repo,
		cache:    cache,
		policy:   policy,
		logger:   logger,
	}
}

// Chapters returns the snapshot in chapter-number order.
func (source *PageSource) Chapters() []Chapter {
	return source.chapters
}

/*
FetchPages resolves the page URLs of a chapter.

Parameters:
  - context: context.Context (Cancelled when the reading session closes)
  - chapter: Chapter

Returns:
  - []string: Image URLs in page order
  - error: apperr.Forbidden for locked chapters, or the last repository error
*/
func (source *PageSource) FetchPages(context context.Context, chapter Chapter) ([]string, error) {

	if chapter.IsLocked {
		return nil, apperr.Forbidden("Chapter is locked")
	}

	if source.cache != nil {
		urls, found, err := source.cache.Get(context, chapter.ID)
		if err != nil {
			source.logger.Warn("page_cache_read_failed", slog.String("chapter_id", chapter.ID), slog.Any("error", err))
		} else if found {
			return urls, nil
		}
	}

	pages, err := retry.DoWithData(
		func() ([]*Page, error) {
			return source.repo.ListPages(context, chapter.ID)
		},
		retry.Context(context),
		retry.Attempts(source.policy.Attempts),
		retry.Delay(source.policy.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(attempt uint, err error) {
			source.logger.Debug("page_fetch_retry",
				slog.String("chapter_id", chapter.ID),
				slog.Uint64("attempt", uint64(attempt)+1),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(pages))
	for _, page := range pages {
		urls = append(urls, page.ImageURL)
	}

	if source.cache != nil && len(urls) > 0 {
		if err := source.cache.Set(context, chapter.ID, urls); err != nil {
			source.logger.Warn("page_cache_write_failed", slog.String("chapter_id", chapter.ID), slog.Any("error", err))
		}
	}

	return urls, nil
}

// isTransient keeps client-facing failures and cancellation out of the retry loop.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !apperr.IsAppError(err)
}
