// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/reader"
)

// # Test Chapter

type testChapter struct {
	id     string
	number float64
	title  string
}

func (chapter testChapter) ChapterID() string      { return chapter.id }
func (chapter testChapter) ChapterNumber() float64 { return chapter.number }

func ch(id string, number float64) testChapter {
	return testChapter{id: id, number: number}
}

func cid(id string) reader.ChapterID {
	return reader.EraseID(id)
}

// # Fake Data Source

// fakeSource serves page URLs from memory. A gated chapter blocks in FetchPages
// until its gate is closed.
type fakeSource struct {
	chapters []testChapter

	mu    sync.Mutex
	pages map[string][]string
	errs  map[string]error
	gates map[string]chan struct{}
	calls map[string]int
}

func newFakeSource(chapters ...testChapter) *fakeSource {
	return &fakeSource{
		chapters: chapters,
		pages:    map[string][]string{},
		errs:     map[string]error{},
		gates:    map[string]chan struct{}{},
		calls:    map[string]int{},
	}
}

func (source *fakeSource) withPages(id string, count int) *fakeSource {
	urls := make([]string, count)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cdn.test/%s/%d.webp", id, i+1)
	}
	source.mu.Lock()
	source.pages[id] = urls
	source.mu.Unlock()
	return source
}

func (source *fakeSource) failWith(id string, err error) *fakeSource {
	source.mu.Lock()
	source.errs[id] = err
	source.mu.Unlock()
	return source
}

func (source *fakeSource) gate(id string) chan struct{} {
	gate := make(chan struct{})
	source.mu.Lock()
	source.gates[id] = gate
	source.mu.Unlock()
	return gate
}

func (source *fakeSource) callCount(id string) int {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.calls[id]
}

func (source *fakeSource) Chapters() []testChapter {
	return source.chapters
}

func (source *fakeSource) FetchPages(ctx context.Context, chapter testChapter) ([]string, error) {
	source.mu.Lock()
	source.calls[chapter.id]++
	gate := source.gates[chapter.id]
	source.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	source.mu.Lock()
	defer source.mu.Unlock()

	if err := source.errs[chapter.id]; err != nil {
		return nil, err
	}
	urls := source.pages[chapter.id]
	copied := make([]string, len(urls))
	copy(copied, urls)
	return copied, nil
}

// # Session Helpers

func newSession(t *testing.T, source *fakeSource, ordering reader.Ordering[string, testChapter], options reader.Options) *reader.Session {
	t.Helper()

	erased, order := reader.Erase[string, testChapter](source, ordering)
	session := reader.NewSession(context.Background(), erased, order, options)
	t.Cleanup(session.Close)
	return session
}

func options(threshold float64) reader.Options {
	opts := reader.DefaultOptions()
	opts.LoadThreshold = threshold
	opts.PageExtent = 250
	return opts
}

func chapterStatus(session *reader.Session, id string) reader.ChapterStatus {
	for _, status := range session.Snapshot().Chapters {
		if status.ID == cid(id) {
			return status
		}
	}
	return reader.ChapterStatus{}
}

func waitStatus(t *testing.T, session *reader.Session, id string, want reader.LoadStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return chapterStatus(session, id).Status == want
	}, 2*time.Second, 5*time.Millisecond, "chapter %s never reached %s", id, want)
}

func waitVisible(t *testing.T, session *reader.Session, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return chapterStatus(session, id).Visible
	}, 2*time.Second, 5*time.Millisecond, "chapter %s never became visible", id)
}

func waitState(t *testing.T, session *reader.Session, want reader.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return session.State() == want
	}, 2*time.Second, 5*time.Millisecond, "session never reached %s", want)
}

// waitEvent drains the state stream until match accepts an event.
func waitEvent(t *testing.T, session *reader.Session, match func(reader.Event) bool) reader.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-session.Events():
			require.True(t, ok, "event stream closed")
			if match(event) {
				return event
			}
		case <-timeout:
			t.Fatal("expected event never arrived")
			return reader.Event{}
		}
	}
}
