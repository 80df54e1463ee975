// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// chapterSlot is the per-chapter bookkeeping of a session, addressed by index position.
type chapterSlot struct {
	handle  Handle
	status  LoadStatus
	pages   []PageAddress
	visible bool
	initial bool
	err     error
}

// # Session

// Session streams the pages of one reading session.
//
// It owns the chapter index and the page buffer. The [Source] is borrowed and
// may be shared with other sessions. All methods are safe for concurrent use;
// every state change is applied under one lock so concurrent fetch completions
// never interleave.
type Session struct {
	source  *Source
	order   Order
	index   *Index
	options Options
	logger  *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	events  chan Event
	workers sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	initial  int
	current  *PageAddress
	slots    []chapterSlot
	window   map[int]bool
	mode     ReadingMode
	reported map[int]bool
}

/*
NewSession builds a session over a snapshot of the source's chapters.

Parameters:
  - ctx: context.Context (Bounds every fetch issued by the session)
  - source: *Source (Erased data source, borrowed)
  - order: Order (Erased ordering policy)
  - options: Options (Zero PageExtent, PrefetchDepth, Mode, EventBuffer and
    Logger fall back to defaults. LoadThreshold is used as given, so zero
    prefetches only from a chapter's edge page; start from [DefaultOptions]
    for the stock threshold)

Returns:
  - *Session: An idle session; call [Session.Start] to load the first chapter
*/
func NewSession(ctx context.Context, source *Source, order Order, options Options) *Session {
	options = options.withDefaults()

	index := NewIndex(source.Chapters())
	slots := make([]chapterSlot, index.Len())
	index.Walk(func(position int, handle Handle) bool {
		slots[position] = chapterSlot{handle: handle}
		return true
	})

	sessionCtx, cancel := context.WithCancel(ctx)

	return &Session{
		source:   source,
		order:    order,
		index:    index,
		options:  options,
		logger:   options.Logger.With(slog.String("component", "reader")),
		ctx:      sessionCtx,
		cancel:   cancel,
		events:   make(chan Event, options.EventBuffer),
		initial:  noNode,
		slots:    slots,
		window:   map[int]bool{},
		mode:     options.Mode,
		reported: map[int]bool{},
	}
}

// Events returns the state stream. It is closed by [Session.Close].
//
// Sends never block the engine: when the buffer is full the event is dropped
// and logged. [Session.Snapshot] always reflects the latest state.
func (session *Session) Events() <-chan Event {
	return session.events
}

// Chapters returns the session's chapters in index order.
func (session *Session) Chapters() []Handle {
	return session.index.Forward()
}

// # Lifecycle

// Start begins the session at the given chapter.
//
// It is valid from the idle state, and again after the first chapter failed.
// The outcome of the fetch arrives on the event stream.
func (session *Session) Start(id ChapterID) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return invalidState("start", StateClosed)
	}
	if state := session.stateLocked(); state != StateIdle && state != StateFailed {
		return invalidState("start", state)
	}
	if id.IsZero() {
		return invalidChapterID("start", id)
	}
	if _, err := session.source.Lookup(id); err != nil {
		return err
	}
	position, found := session.index.Position(id)
	if !found {
		return chapterNotFound("start", id)
	}

	if session.initial != noNode {
		session.slots[session.initial].initial = false
	}
	slot := &session.slots[position]
	slot.status = StatusLoading
	slot.initial = true
	slot.err = nil

	session.initial = position
	session.window = map[int]bool{position: true}
	session.launchLocked(position)

	session.logger.Info("reader_session_started",
		slog.String("chapter_id", id.String()),
		slog.Int("chapter_index", position),
		slog.Int("chapters", session.index.Len()),
	)
	session.emitLocked(Event{State: StateLoadingInitial, Chapter: id})

	return nil
}

// Close cancels outstanding work and closes the event stream.
func (session *Session) Close() {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	session.closed = true
	session.cancel()
	session.mu.Unlock()

	session.workers.Wait()
	close(session.events)

	session.logger.Debug("reader_session_closed")
}

// # Navigation

// Advance moves one page forward, crossing into the next chapter at a boundary.
//
// When the next chapter is still loading the position does not change. When it
// failed to load, its error is returned and the position does not change.
func (session *Session) Advance() (PageAddress, error) {
	return session.step(true, "advance")
}

// Retreat moves one page back, crossing into the previous chapter's last page.
func (session *Session) Retreat() (PageAddress, error) {
	return session.step(false, "retreat")
}

func (session *Session) step(forward bool, op string) (PageAddress, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return PageAddress{}, invalidState(op, StateClosed)
	}
	if session.current == nil {
		return PageAddress{}, invalidState(op, session.stateLocked())
	}

	current := *session.current
	pages := session.slots[current.ChapterIndex].pages

	var target PageAddress
	switch {
	case forward && current.PageNumber < len(pages):
		target = pages[current.PageNumber]
	case !forward && current.PageNumber > 1:
		target = pages[current.PageNumber-2]
	default:
		position, ok := session.adjacentLocked(current.ChapterIndex, forward)
		if !ok {
			return current, ErrNoAdjacentChapter
		}

		slot := &session.slots[position]
		switch slot.status {
		case StatusLoaded:
			if !slot.visible {
				return current, nil
			}
			if forward {
				target = slot.pages[0]
			} else {
				target = slot.pages[len(slot.pages)-1]
			}
		case StatusFailed:
			session.emitLocked(Event{State: session.stateLocked(), Chapter: slot.handle.ID(), Err: slot.err})
			return current, slot.err
		case StatusLoading:
			return current, nil
		default:
			session.window[position] = true
			session.prefetchLocked(position)
			return current, nil
		}
	}

	session.moveLocked(target)
	return target, nil
}

// Seek jumps to a loaded page.
//
// The address is resolved against the page buffer; only ChapterIndex and
// PageNumber are read.
func (session *Session) Seek(address PageAddress) (PageAddress, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return PageAddress{}, invalidState("seek", StateClosed)
	}
	if session.current == nil {
		return PageAddress{}, invalidState("seek", session.stateLocked())
	}
	if address.ChapterIndex < 0 || address.ChapterIndex >= len(session.slots) {
		return PageAddress{}, invalidChapterID("seek", ChapterID{})
	}

	slot := &session.slots[address.ChapterIndex]
	if !slot.visible {
		return PageAddress{}, &Error{
			Kind:      KindInvalidState,
			Op:        "seek",
			ChapterID: slot.handle.ID(),
			Cause:     fmt.Errorf("chapter is %s", slot.status),
		}
	}
	if address.PageNumber < 1 || address.PageNumber > len(slot.pages) {
		return PageAddress{}, &Error{
			Kind:      KindInvalidState,
			Op:        "seek",
			ChapterID: slot.handle.ID(),
			Cause:     fmt.Errorf("page %d out of range 1..%d", address.PageNumber, len(slot.pages)),
		}
	}

	target := slot.pages[address.PageNumber-1]
	session.moveLocked(target)
	return target, nil
}

// Retry fetches a chapter whose previous fetch failed. The engine never retries
// on its own.
func (session *Session) Retry(id ChapterID) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return invalidState("retry", StateClosed)
	}
	if id.IsZero() {
		return invalidChapterID("retry", id)
	}
	if _, err := session.source.Lookup(id); err != nil {
		return err
	}
	position, found := session.index.Position(id)
	if !found {
		return chapterNotFound("retry", id)
	}

	slot := &session.slots[position]
	if slot.status != StatusFailed {
		return &Error{Kind: KindInvalidState, Op: "retry", ChapterID: id, Cause: fmt.Errorf("chapter is %s", slot.status)}
	}
	slot.err = nil

	session.logger.Info("chapter_retry_requested", slog.String("chapter_id", id.String()))

	if session.current == nil {
		if session.initial != noNode {
			session.slots[session.initial].initial = false
		}
		slot.status = StatusLoading
		slot.initial = true
		session.initial = position
		session.window = map[int]bool{position: true}
		session.launchLocked(position)
		session.emitLocked(Event{State: StateLoadingInitial, Chapter: id})
		return nil
	}

	session.window[position] = true
	session.prefetchLocked(position)
	return nil
}

// ToggleDirection flips a horizontal reading mode and returns the new mode.
func (session *Session) ToggleDirection() ReadingMode {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.mode = session.mode.Toggled()
	return session.mode
}

// # Queries

// CurrentPage returns the read position, or false before the first chapter loads.
func (session *Session) CurrentPage() (PageAddress, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.current == nil {
		return PageAddress{}, false
	}
	return *session.current, true
}

// State returns the current state machine state.
func (session *Session) State() State {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.stateLocked()
}

// Mode returns the current reading mode.
func (session *Session) Mode() ReadingMode {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.mode
}

// Pages returns the visible page sequence in chapter order.
func (session *Session) Pages() []PageAddress {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.pagesLocked()
}

// DisplayPages returns the visible sequence in on-screen order for the mode.
func (session *Session) DisplayPages() []PageAddress {
	session.mu.Lock()
	defer session.mu.Unlock()

	pages := session.pagesLocked()
	if session.mode == ModeRightToLeft {
		for i, j := 0, len(pages)-1; i < j; i, j = i+1, j-1 {
			pages[i], pages[j] = pages[j], pages[i]
		}
	}
	return pages
}

// Snapshot returns a consistent copy of the observable state.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	snapshot := Snapshot{
		State:    session.stateLocked(),
		Mode:     session.mode,
		Pages:    session.pagesLocked(),
		Chapters: make([]ChapterStatus, len(session.slots)),
		Window:   session.windowLocked(),
	}
	if session.current != nil {
		current := *session.current
		snapshot.Current = &current
	}

	for position, slot := range session.slots {
		status := ChapterStatus{
			ID:       slot.handle.ID(),
			Number:   slot.handle.Number(),
			Index:    position,
			Status:   slot.status,
			Visible:  slot.visible,
			Pages:    len(slot.pages),
			InWindow: session.window[position],
		}
		if slot.err != nil {
			status.Error = slot.err.Error()
		}
		snapshot.Chapters[position] = status
	}

	return snapshot
}

// # Internals (caller holds mu)

func (session *Session) stateLocked() State {
	switch {
	case session.closed:
		return StateClosed
	case session.current == nil:
		if session.initial == noNode {
			return StateIdle
		}
		switch session.slots[session.initial].status {
		case StatusLoading:
			return StateLoadingInitial
		case StatusFailed:
			return StateFailed
		default:
			return StateIdle
		}
	}

	for position := range session.window {
		if session.slots[position].status == StatusLoading {
			return StateLoadingAdjacent
		}
	}
	return StateReady
}

func (session *Session) pagesLocked() []PageAddress {
	var pages []PageAddress
	for _, slot := range session.slots {
		if slot.visible {
			pages = append(pages, slot.pages...)
		}
	}
	return pages
}

func (session *Session) windowLocked() []int {
	positions := make([]int, 0, len(session.window))
	for position := range session.window {
		positions = append(positions, position)
	}
	sort.Ints(positions)
	return positions
}

// adjacentLocked asks the ordering policy for a neighbour and confirms it with the index.
func (session *Session) adjacentLocked(position int, forward bool) (int, bool) {
	next, previous := session.order.Neighbors(session.slots[position].handle.ID())

	target := previous
	if forward {
		target = next
	}
	if target.IsZero() {
		return noNode, false
	}
	return session.index.Position(target)
}

func (session *Session) moveLocked(target PageAddress) {
	session.current = &target
	session.refreshWindowLocked()
	session.reportLocked()

	page := target
	session.emitLocked(Event{
		State:   session.stateLocked(),
		Chapter: session.slots[target.ChapterIndex].handle.ID(),
		Page:    &page,
	})
}

// refreshWindowLocked recomputes the prefetch window around the read position,
// starts fetches for chapters that entered it and republishes.
func (session *Session) refreshWindowLocked() {
	current := session.current
	window := map[int]bool{current.ChapterIndex: true}

	count := len(session.slots[current.ChapterIndex].pages)
	ahead := float64(count-current.PageNumber) * session.options.PageExtent
	behind := float64(current.PageNumber-1) * session.options.PageExtent

	if ahead <= session.options.LoadThreshold {
		session.extendWindowLocked(window, current.ChapterIndex, true)
	}
	if behind <= session.options.LoadThreshold {
		session.extendWindowLocked(window, current.ChapterIndex, false)
	}
	session.window = window

	for _, position := range session.windowLocked() {
		if session.slots[position].status == StatusNotLoaded {
			session.prefetchLocked(position)
		}
	}

	// A loading chapter that left the window no longer holds back the ones after it.
	session.publishLocked()
}

func (session *Session) extendWindowLocked(window map[int]bool, from int, forward bool) {
	position := from
	for depth := 0; depth < session.options.PrefetchDepth; depth++ {
		next, ok := session.adjacentLocked(position, forward)
		if !ok || window[next] {
			return
		}
		window[next] = true
		position = next
	}
}

// prefetchLocked starts an adjacent fetch. A chapter already loading is left
// alone so that at most one fetch per chapter is in flight.
func (session *Session) prefetchLocked(position int) {
	slot := &session.slots[position]
	if slot.status == StatusLoading || slot.status == StatusLoaded {
		return
	}
	slot.status = StatusLoading
	session.launchLocked(position)

	session.logger.Debug("chapter_prefetch_started",
		slog.String("chapter_id", slot.handle.ID().String()),
		slog.Int("chapter_index", position),
	)
	session.emitLocked(Event{State: StateLoadingAdjacent, Chapter: slot.handle.ID()})
}

func (session *Session) launchLocked(position int) {
	id := session.slots[position].handle.ID()

	session.workers.Add(1)
	go func() {
		defer session.workers.Done()
		urls, err := session.source.FetchPages(session.ctx, id)
		session.complete(position, urls, err)
	}()
}

// complete applies a finished fetch.
func (session *Session) complete(position int, urls []string, fetchErr error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return
	}

	slot := &session.slots[position]
	id := slot.handle.ID()
	initial := slot.initial && session.current == nil

	// The reader moved away while this fetch was in flight.
	if !initial && !session.window[position] {
		slot.status = StatusNotLoaded
		session.logger.Debug("chapter_result_discarded",
			slog.String("chapter_id", id.String()),
			slog.Int("chapter_index", position),
		)
		session.publishLocked()
		return
	}

	var failure *Error
	var pages []PageAddress
	switch {
	case fetchErr != nil && initial:
		failure = initialChapterFailed(id, fetchErr)
	case fetchErr != nil:
		failure = subsequentChapterFailed(id, fetchErr)
	default:
		var expandErr error
		pages, expandErr = ExpandPages(position, slot.handle, urls)
		if expandErr != nil {
			failure = emptyPages(id, initial)
		}
	}

	if failure != nil {
		slot.status = StatusFailed
		slot.err = failure
		session.logger.Warn("chapter_fetch_failed",
			slog.String("chapter_id", id.String()),
			slog.String("kind", string(failure.Kind)),
			slog.Bool("blocking", failure.Blocking),
			slog.Any("cause", fetchErr),
		)
		session.emitLocked(Event{State: session.stateLocked(), Chapter: id, Err: failure})
		session.publishLocked()
		return
	}

	slot.status = StatusLoaded
	slot.pages = pages
	session.logger.Debug("chapter_loaded",
		slog.String("chapter_id", id.String()),
		slog.Int("pages", len(pages)),
	)

	if !initial {
		session.publishLocked()
		return
	}

	slot.initial = false
	first := pages[0]
	session.current = &first
	session.publishLocked()
	session.refreshWindowLocked()
	session.reportLocked()

	page := first
	session.emitLocked(Event{State: session.stateLocked(), Chapter: id, Page: &page})
}

// publishLocked makes loaded chapters visible in index order. A chapter still
// loading inside the window holds back every chapter after it.
func (session *Session) publishLocked() {
	for position := range session.slots {
		slot := &session.slots[position]
		if slot.status == StatusLoading && session.window[position] {
			return
		}
		if slot.status == StatusLoaded && !slot.visible {
			slot.visible = true
			session.emitLocked(Event{State: session.stateLocked(), Chapter: slot.handle.ID()})
		}
	}
}

// reportLocked notifies the progress collaborator once per chapter when the
// read position reaches its last page.
func (session *Session) reportLocked() {
	current := *session.current
	if !current.IsLastPage || session.reported[current.ChapterIndex] || session.options.Progress == nil {
		return
	}
	session.reported[current.ChapterIndex] = true

	handle := session.slots[current.ChapterIndex].handle
	reporter := session.options.Progress

	session.workers.Add(1)
	go func() {
		defer session.workers.Done()
		if err := reporter.ReportProgress(session.ctx, handle, current.PageNumber, true); err != nil {
			session.logger.Warn("reading_progress_report_failed",
				slog.String("chapter_id", handle.ID().String()),
				slog.Any("error", err),
			)
		}
	}()
}

func (session *Session) emitLocked(event Event) {
	if session.closed {
		return
	}
	select {
	case session.events <- event:
	default:
		session.logger.Warn("reader_event_dropped",
			slog.String("state", event.State.String()),
			slog.String("chapter_id", event.Chapter.String()),
		)
	}
}
