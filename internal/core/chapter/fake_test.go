// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/core/chapter"
	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
)

// # In-memory repository

type fakeRepository struct {
	mu        sync.Mutex
	chapters  []*chapter.Chapter
	pages     map[string][]*chapter.Page
	failures  map[string][]error // consumed one per ListPages call
	pageCalls map[string]int
	progress  []chapter.Progress
	reads     []string

	// beforeList runs at the start of ListByComic when set.
	beforeList func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		pages:     map[string][]*chapter.Page{},
		failures:  map[string][]error{},
		pageCalls: map[string]int{},
	}
}

// withChapter adds a published chapter of comic-1 with count pages.
func (repo *fakeRepository) withChapter(id string, number float64, language string, count int) *fakeRepository {
	repo.chapters = append(repo.chapters, &chapter.Chapter{ID: id, ComicID: "comic-1", Number: number, Language: language})
	for page := 1; page <= count; page++ {
		repo.pages[id] = append(repo.pages[id], &chapter.Page{
			ID:         fmt.Sprintf("%s-p%d", id, page),
			ChapterID:  id,
			PageNumber: page,
			ImageURL:   fmt.Sprintf("https://cdn.yomira.app/%s/%d.webp", id, page),
		})
	}
	return repo
}

func (repo *fakeRepository) failNext(id string, errs ...error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.failures[id] = append(repo.failures[id], errs...)
}

func (repo *fakeRepository) calls(id string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.pageCalls[id]
}

func (repo *fakeRepository) savedProgress() []chapter.Progress {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return append([]chapter.Progress(nil), repo.progress...)
}

func (repo *fakeRepository) readChapters() []string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return append([]string(nil), repo.reads...)
}

func (repo *fakeRepository) ListByComic(_ context.Context, comicID string, filter chapter.ChapterFilter) ([]*chapter.Chapter, error) {
	if repo.beforeList != nil {
		repo.beforeList()
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	var chapters []*chapter.Chapter
	for _, item := range repo.chapters {
		if item.ComicID != comicID {
			continue
		}
		if filter.Language != "" && item.Language != filter.Language {
			continue
		}
		copied := *item
		chapters = append(chapters, &copied)
	}
	return chapters, nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, item := range repo.chapters {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Chapter")
}

func (repo *fakeRepository) ListPages(_ context.Context, chapterID string) ([]*chapter.Page, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.pageCalls[chapterID]++
	if queued := repo.failures[chapterID]; len(queued) > 0 {
		repo.failures[chapterID] = queued[1:]
		return nil, queued[0]
	}
	return repo.pages[chapterID], nil
}

func (repo *fakeRepository) MarkAsRead(_ context.Context, chapterID, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.reads = append(repo.reads, userID+"/"+chapterID)
	return nil
}

func (repo *fakeRepository) SaveProgress(_ context.Context, progress chapter.Progress) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.progress = append(repo.progress, progress)
	return nil
}

// # In-memory page cache

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]string
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]string{}}
}

func (cache *fakeCache) Get(_ context.Context, chapterID string) ([]string, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.getErr != nil {
		return nil, false, cache.getErr
	}
	urls, found := cache.entries[chapterID]
	return urls, found, nil
}

func (cache *fakeCache) Set(_ context.Context, chapterID string, urls []string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[chapterID] = urls
	return nil
}

func (cache *fakeCache) has(chapterID string) bool {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	_, found := cache.entries[chapterID]
	return found
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertCode checks the API error code carried by err.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	require.Equal(t, code, appError.Code)
}
