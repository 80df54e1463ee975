// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yomira-reader/internal/platform/request"
	"github.com/taibuivan/yomira-reader/internal/platform/respond"
	"github.com/taibuivan/yomira-reader/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading sessions.
type Handler struct {
	service *ReaderService
}

// NewHandler constructs a new reader [Handler].
func NewHandler(service *ReaderService) *Handler {
	return &Handler{service: service}
}

// Routes returns the session endpoints, mounted under /api/v1/reader.
//
// Sessions are open to anonymous readers. A bearer token, when present, ties
// the session to the reader and enables progress tracking.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/sessions", handler.OpenSession)
	router.Route("/sessions/{sessionID}", func(session chi.Router) {
		session.Get("/", handler.GetSession)
		session.Delete("/", handler.CloseSession)
		session.Post("/advance", handler.Advance)
		session.Post("/retreat", handler.Retreat)
		session.Post("/seek", handler.Seek)
		session.Post("/direction", handler.ToggleDirection)
		session.Post("/retry", handler.Retry)
	})

	return router
}

// # Session Lifecycle

// openSessionRequest defines the inbound JSON schema for a new session.
type openSessionRequest struct {
	ComicID   string `json:"comicId"`
	ChapterID string `json:"chapterId"`
	Language  string `json:"language"`
	Mode      string `json:"mode"`
}

/*
POST /api/v1/reader/sessions.

Description: Opens a reading session at a chapter and returns once that chapter
has loaded or failed.

Request:
  - body: openSessionRequest

Response:
  - 201: SessionView: Session id and snapshot
  - 400: ErrInvalidJSON/Validation: Invalid payload or chapter id
  - 404: ErrNotFound: Comic has no chapters or chapter not in comic
*/
func (handler *Handler) OpenSession(writer http.ResponseWriter, request *http.Request) {
	var input openSessionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Open(request.Context(), OpenRequest{
		ComicID:   input.ComicID,
		ChapterID: input.ChapterID,
		Language:  input.Language,
		Mode:      input.Mode,
		UserID:    requestutil.UserID(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view)
}

// GetSession handles GET /api/v1/reader/sessions/{sessionID}.
func (handler *Handler) GetSession(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Snapshot(requestutil.ID(request, "sessionID"), requestutil.UserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// CloseSession handles DELETE /api/v1/reader/sessions/{sessionID}.
func (handler *Handler) CloseSession(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Close(requestutil.ID(request, "sessionID"), requestutil.UserID(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Navigation

/*
POST /api/v1/reader/sessions/{sessionID}/advance.

Response:
  - 200: NavigationView: Page reached (unchanged while the next chapter loads)
  - 409: NO_ADJACENT_CHAPTER: Last chapter of the series
  - 422: EMPTY_CHAPTER: Next chapter has no pages
  - 502: CHAPTER_FETCH_FAILED: Next chapter failed to load
*/
func (handler *Handler) Advance(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Advance(requestutil.ID(request, "sessionID"), requestutil.UserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// Retreat handles POST /api/v1/reader/sessions/{sessionID}/retreat.
func (handler *Handler) Retreat(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Retreat(requestutil.ID(request, "sessionID"), requestutil.UserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// seekRequest addresses a loaded page.
type seekRequest struct {
	ChapterIndex *int `json:"chapterIndex"`
	PageNumber   *int `json:"pageNumber"`
}

/*
POST /api/v1/reader/sessions/{sessionID}/seek.

Request:
  - body: seekRequest

Response:
  - 200: NavigationView: Page reached
  - 400: Validation: Missing fields or unknown chapter index
  - 409: CONFLICT: Chapter not loaded or page out of range
*/
func (handler *Handler) Seek(writer http.ResponseWriter, request *http.Request) {
	var input seekRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(FieldChapterIndex, input.ChapterIndex == nil, "This field is required")
	validator.Custom(FieldPageNumber, input.PageNumber == nil, "This field is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Seek(requestutil.ID(request, "sessionID"), requestutil.UserID(request), *input.ChapterIndex, *input.PageNumber)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// ToggleDirection handles POST /api/v1/reader/sessions/{sessionID}/direction.
func (handler *Handler) ToggleDirection(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.ToggleDirection(requestutil.ID(request, "sessionID"), requestutil.UserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// retryRequest names the failed chapter to fetch again.
type retryRequest struct {
	ChapterID string `json:"chapterId"`
}

/*
POST /api/v1/reader/sessions/{sessionID}/retry.

Description: Re-issues the fetch of a failed chapter. The result shows up in
later snapshots.

Response:
  - 202: SessionView: Fetch started
  - 409: CONFLICT: Chapter is not in a failed state
*/
func (handler *Handler) Retry(writer http.ResponseWriter, request *http.Request) {
	var input retryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Retry(requestutil.ID(request, "sessionID"), requestutil.UserID(request), input.ChapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Accepted(writer, view)
}
