// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
	"github.com/taibuivan/yomira-reader/internal/platform/validate"
	"github.com/taibuivan/yomira-reader/internal/reader"
	"github.com/taibuivan/yomira-reader/pkg/uuid"
)

const (
	FieldComicID      = "comicId"
	FieldChapterID    = "chapterId"
	FieldMode         = "mode"
	FieldChapterIndex = "chapterIndex"
	FieldPageNumber   = "pageNumber"
)

var readingModes = []string{
	string(reader.ModeInfinite),
	string(reader.ModeVertical),
	string(reader.ModeLeftToRight),
	string(reader.ModeRightToLeft),
}

const (
	minReapInterval   = time.Second
	defaultSessionTTL = 30 * time.Minute
)

// ServiceConfig tunes the sessions opened by a [ReaderService].
type ServiceConfig struct {
	Options reader.Options
	Fetch   FetchPolicy
	IdleTTL time.Duration
}

// liveSession is a registered reading session.
type liveSession struct {
	id       string
	comicID  string
	ownerID  string
	session  *reader.Session
	settled  chan struct{}
	settle   sync.Once
	lastUsed time.Time
}

// # Service Layer

// ReaderService keeps the live reading sessions of the API.
//
// Each session reads a snapshot of a comic's chapters taken when it opens.
// Sessions left untouched for longer than the idle TTL are closed by [ReaderService.Run].
type ReaderService struct {
	repo   ChapterRepository
	cache  PageCache
	config ServiceConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewReaderService constructs a [ReaderService]. cache may be nil.
func NewReaderService(repo ChapterRepository, cache PageCache, config ServiceConfig, logger *slog.Logger) *ReaderService {
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaultSessionTTL
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &ReaderService{
		repo:     repo,
		cache:    cache,
		config:   config,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: map[string]*liveSession{},
	}
}

// OpenRequest describes a new reading session.
type OpenRequest struct {
	ComicID   string
	ChapterID string
	Language  string
	Mode      string
	UserID    string // Empty for anonymous readers
}

// SessionView is the API representation of a session.
type SessionView struct {
	ID       string          `json:"id"`
	ComicID  string          `json:"comicId"`
	Snapshot reader.Snapshot `json:"snapshot"`
}

// NavigationView pairs the page reached with the resulting session state.
type NavigationView struct {
	Page     reader.PageAddress `json:"page"`
	Snapshot reader.Snapshot    `json:"snapshot"`
}

// # Session Lifecycle

/*
Open starts a reading session at the requested chapter.

Description: Resolves the starting chapter, loads the comic's chapters in the
same language, starts the session and waits for the first chapter to settle
(loaded or failed) or for the request to end.

Parameters:
  - context: context.Context (Request scope, bounds the wait only)
  - request: OpenRequest

Returns:
  - *SessionView: Registered session and its first snapshot
  - error: Validation, lookup or engine errors as [apperr.AppError]
*/
func (service *ReaderService) Open(context context.Context, request OpenRequest) (*SessionView, error) {

	if service.ctx.Err() != nil {
		return nil, apperr.ServiceUnavailable("Reader is shutting down")
	}

	validator := &validate.Validator{}
	validator.Required(FieldComicID, request.ComicID)
	validator.Required(FieldChapterID, request.ChapterID)
	if request.Mode != "" {
		validator.OneOf(FieldMode, request.Mode, readingModes...)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	start, err := service.repo.FindByID(context, request.ChapterID)
	if err != nil {
		return nil, err
	}
	if start.ComicID != request.ComicID {
		return nil, apperr.NotFound("Chapter")
	}

	// Keep reading in the language the reader started in.
	language := request.Language
	if language == "" {
		language = start.Language
	}

	chapters, err := service.repo.ListByComic(context, request.ComicID, ChapterFilter{Language: language})
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, apperr.NotFound("Comic chapters")
	}

	id := uuid.New()
	logger := service.logger.With(slog.String("session_id", id), slog.String("comic_id", request.ComicID))

	options := service.config.Options
	options.Logger = logger
	if request.Mode != "" {
		options.Mode = reader.ReadingMode(request.Mode)
	}
	if request.UserID != "" {
		options.Progress = NewProgressRecorder(service.repo, request.UserID, request.ComicID, logger)
	}

	source := NewPageSource(chapters, service.repo, service.cache, service.config.Fetch, logger)
	erased, order := reader.Erase[string, Chapter](source, reader.ByIndex[string, Chapter]())
	session := reader.NewSession(service.ctx, erased, order, options)

	live := &liveSession{
		id:       id,
		comicID:  request.ComicID,
		ownerID:  request.UserID,
		session:  session,
		settled:  make(chan struct{}),
		lastUsed: time.Now(),
	}
	go service.drain(live, logger)

	if err := session.Start(reader.EraseID(request.ChapterID)); err != nil {
		session.Close()
		return nil, toAppError(err)
	}

	// Shutdown cancels before it swaps the map, so a session registered after
	// the swap always sees the cancellation here.
	service.mu.Lock()
	if service.ctx.Err() != nil {
		service.mu.Unlock()
		session.Close()
		return nil, apperr.ServiceUnavailable("Reader is shutting down")
	}
	service.sessions[id] = live
	service.mu.Unlock()

	logger.Info("reader_session_opened",
		slog.String("chapter_id", request.ChapterID),
		slog.Int("chapters", len(chapters)),
		slog.String("mode", string(options.Mode)),
	)

	select {
	case <-live.settled:
	case <-context.Done():
	}

	return &SessionView{ID: id, ComicID: live.comicID, Snapshot: session.Snapshot()}, nil
}

// Close ends a session and forgets it.
func (service *ReaderService) Close(id, userID string) error {
	live, err := service.lookup(id, userID)
	if err != nil {
		return err
	}

	service.mu.Lock()
	delete(service.sessions, id)
	service.mu.Unlock()

	live.session.Close()
	service.logger.Info("reader_session_closed", slog.String("session_id", id))
	return nil
}

// drain consumes the session's event stream until it closes.
func (service *ReaderService) drain(live *liveSession, logger *slog.Logger) {
	defer live.settle.Do(func() { close(live.settled) })

	for event := range live.session.Events() {
		if event.Err != nil {
			logger.Debug("reader_event",
				slog.String("state", event.State.String()),
				slog.String("chapter_id", event.Chapter.String()),
				slog.Bool("blocking", event.Blocking()),
				slog.Any("error", event.Err),
			)
		}
		if event.State != reader.StateIdle && event.State != reader.StateLoadingInitial {
			live.settle.Do(func() { close(live.settled) })
		}
	}
}

// # Navigation

// Snapshot returns the current state of a session.
func (service *ReaderService) Snapshot(id, userID string) (*SessionView, error) {
	live, err := service.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	return &SessionView{ID: live.id, ComicID: live.comicID, Snapshot: live.session.Snapshot()}, nil
}

// Advance moves a session one page forward.
func (service *ReaderService) Advance(id, userID string) (*NavigationView, error) {
	return service.navigate(id, userID, func(session *reader.Session) (reader.PageAddress, error) {
		return session.Advance()
	})
}

// Retreat moves a session one page back.
func (service *ReaderService) Retreat(id, userID string) (*NavigationView, error) {
	return service.navigate(id, userID, func(session *reader.Session) (reader.PageAddress, error) {
		return session.Retreat()
	})
}

// Seek jumps a session to a loaded page.
func (service *ReaderService) Seek(id, userID string, chapterIndex, pageNumber int) (*NavigationView, error) {
	return service.navigate(id, userID, func(session *reader.Session) (reader.PageAddress, error) {
		return session.Seek(reader.PageAddress{ChapterIndex: chapterIndex, PageNumber: pageNumber})
	})
}

// Retry re-issues the fetch of a failed chapter. The outcome is visible in later snapshots.
func (service *ReaderService) Retry(id, userID, chapterID string) (*SessionView, error) {
	if chapterID == "" {
		return nil, validate.RequiredError(FieldChapterID, "This field is required")
	}

	live, err := service.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	if err := live.session.Retry(reader.EraseID(chapterID)); err != nil {
		return nil, toAppError(err)
	}
	return &SessionView{ID: live.id, ComicID: live.comicID, Snapshot: live.session.Snapshot()}, nil
}

// ToggleDirection flips a horizontal reading mode.
func (service *ReaderService) ToggleDirection(id, userID string) (*SessionView, error) {
	live, err := service.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	live.session.ToggleDirection()
	return &SessionView{ID: live.id, ComicID: live.comicID, Snapshot: live.session.Snapshot()}, nil
}

func (service *ReaderService) navigate(id, userID string, move func(*reader.Session) (reader.PageAddress, error)) (*NavigationView, error) {
	live, err := service.lookup(id, userID)
	if err != nil {
		return nil, err
	}

	page, err := move(live.session)
	if err != nil {
		return nil, toAppError(err)
	}
	return &NavigationView{Page: page, Snapshot: live.session.Snapshot()}, nil
}

// lookup finds a session and refreshes its idle clock. A session opened by a
// signed-in reader is private to that reader.
func (service *ReaderService) lookup(id, userID string) (*liveSession, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	live, ok := service.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Reader session")
	}
	if live.ownerID != "" && live.ownerID != userID {
		return nil, apperr.Forbidden("Reader session belongs to another user")
	}

	live.lastUsed = time.Now()
	return live, nil
}

// # Housekeeping

// Run reaps idle sessions until ctx is cancelled, then closes every session.
func (service *ReaderService) Run(ctx context.Context) {
	interval := service.config.IdleTTL / 2
	if interval < minReapInterval {
		interval = minReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			service.ReapIdle()
		case <-ctx.Done():
			service.Shutdown()
			return
		}
	}
}

// ReapIdle closes sessions idle for longer than the TTL and returns how many it closed.
func (service *ReaderService) ReapIdle() int {
	cutoff := time.Now().Add(-service.config.IdleTTL)

	service.mu.Lock()
	var idle []*liveSession
	for id, live := range service.sessions {
		if live.lastUsed.Before(cutoff) {
			idle = append(idle, live)
			delete(service.sessions, id)
		}
	}
	service.mu.Unlock()

	for _, live := range idle {
		live.session.Close()
		service.logger.Info("reader_session_reaped", slog.String("session_id", live.id))
	}
	return len(idle)
}

// Shutdown closes every session. The service accepts no sessions afterwards.
func (service *ReaderService) Shutdown() {
	service.cancel()

	service.mu.Lock()
	sessions := service.sessions
	service.sessions = map[string]*liveSession{}
	service.mu.Unlock()

	for _, live := range sessions {
		live.session.Close()
	}
	service.logger.Info("reader_sessions_shutdown", slog.Int("closed", len(sessions)))
}

// Len reports the number of live sessions.
func (service *ReaderService) Len() int {
	service.mu.Lock()
	defer service.mu.Unlock()
	return len(service.sessions)
}
