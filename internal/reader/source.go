// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// # Data Source Contract

// DataSource supplies chapters and their page URLs.
//
// Chapters is read once when the source is erased. FetchPages must be safe to
// call concurrently for distinct chapters and owns any timeout policy.
type DataSource[ID comparable, C Chapter[ID]] interface {
	Chapters() []C
	FetchPages(ctx context.Context, chapter C) ([]string, error)
}

// # Erased Data Source

// Source is a [DataSource] with the chapter type erased.
//
// Concurrent fetches for the same chapter share a single call to the
// underlying source. A caller that gives up only stops its own wait; the
// shared call is cancelled once no caller is waiting on it.
type Source struct {
	handles []Handle
	resolve func(id ChapterID) (int, *Error)
	fetch   func(ctx context.Context, position int) ([]string, error)
	group   singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one shared fetch and the callers waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// EraseSource snapshots the chapters of source and wraps its fetch function.
func EraseSource[ID comparable, C Chapter[ID]](source DataSource[ID, C]) *Source {
	return eraseSource(source, source.Chapters())
}

func eraseSource[ID comparable, C Chapter[ID]](source DataSource[ID, C], chapters []C) *Source {
	snapshot := make([]C, len(chapters))
	copy(snapshot, chapters)

	handles := make([]Handle, len(snapshot))
	positions := make(map[ID]int, len(snapshot))
	for i, chapter := range snapshot {
		handles[i] = newHandle[ID](chapter)
		if _, exists := positions[chapter.ChapterID()]; !exists {
			positions[chapter.ChapterID()] = i
		}
	}

	return &Source{
		flights: map[string]*flight{},
		handles: handles,
		resolve: func(id ChapterID) (int, *Error) {
			concrete, ok := IDAs[ID](id)
			var zero ID
			if !ok || concrete == zero {
				return -1, invalidChapterID("resolve", id)
			}
			position, found := positions[concrete]
			if !found {
				return -1, chapterNotFound("resolve", id)
			}
			return position, nil
		},
		fetch: func(ctx context.Context, position int) ([]string, error) {
			return source.FetchPages(ctx, snapshot[position])
		},
	}
}

// Chapters returns the snapshot in the order the source supplied it.
func (source *Source) Chapters() []Handle {
	handles := make([]Handle, len(source.handles))
	copy(handles, source.handles)
	return handles
}

// Lookup resolves an erased identifier to its handle.
func (source *Source) Lookup(id ChapterID) (Handle, error) {
	position, err := source.resolve(id)
	if err != nil {
		return Handle{}, err
	}
	return source.handles[position], nil
}

/*
FetchPages fetches the page URLs of a chapter by erased identifier.

Returns:
  - []string: Page URLs in reading order (caller owned copy)
  - error: ErrInvalidChapterID or ErrChapterNotFound when id does not resolve,
    otherwise the source's own error
*/
func (source *Source) FetchPages(ctx context.Context, id ChapterID) ([]string, error) {
	position, resolveErr := source.resolve(id)
	if resolveErr != nil {
		return nil, resolveErr
	}

	key := id.flightKey()
	shared := source.join(ctx, key)
	defer source.leave(key, shared)

	results := source.group.DoChan(key, func() (any, error) {
		return source.fetch(shared.ctx, position)
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		urls, _ := result.Val.([]string)
		copied := make([]string, len(urls))
		copy(copied, urls)
		return copied, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// join registers a waiter on the shared fetch of key. The shared context keeps
// the values of the first caller's ctx but not its cancellation.
func (source *Source) join(ctx context.Context, key string) *flight {
	source.mu.Lock()
	defer source.mu.Unlock()

	shared, found := source.flights[key]
	if !found {
		sharedCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		shared = &flight{ctx: sharedCtx, cancel: cancel}
		source.flights[key] = shared
	}
	shared.waiters++
	return shared
}

// leave drops a waiter. The last one out cancels the shared fetch and makes
// the next caller start a fresh one.
func (source *Source) leave(key string, shared *flight) {
	source.mu.Lock()
	defer source.mu.Unlock()

	shared.waiters--
	if shared.waiters > 0 {
		return
	}
	shared.cancel()
	delete(source.flights, key)
	source.group.Forget(key)
}

// Erase erases a data source together with its ordering policy.
func Erase[ID comparable, C Chapter[ID]](source DataSource[ID, C], ordering Ordering[ID, C]) (*Source, Order) {
	chapters := source.Chapters()
	return eraseSource(source, chapters), EraseOrdering(ordering, chapters)
}
