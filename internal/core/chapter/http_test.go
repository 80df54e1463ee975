// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/core/chapter"
	"github.com/taibuivan/yomira-reader/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-reader/internal/platform/sec"
	"github.com/taibuivan/yomira-reader/internal/reader"
)

type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

type sessionBody struct {
	ID       string `json:"id"`
	Snapshot struct {
		State   string              `json:"state"`
		Mode    string              `json:"mode"`
		Current *reader.PageAddress `json:"current"`
	} `json:"snapshot"`
}

type navigationBody struct {
	Page reader.PageAddress `json:"page"`
}

// call performs one request against the reader routes, optionally as a signed-in reader.
func call(t *testing.T, router http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID}))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var body envelope[T]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func newRouter(t *testing.T) http.Handler {
	return chapter.NewHandler(newService(t, threeChapters(), time.Hour)).Routes()
}

/*
TestHandler_SessionFlow drives a session through the HTTP API.
*/
func TestHandler_SessionFlow(t *testing.T) {
	router := newRouter(t)

	opened := call(t, router, http.MethodPost, "/sessions", `{"comicId":"comic-1","chapterId":"c1","mode":"leftToRight"}`, "")
	require.Equal(t, http.StatusCreated, opened.Code)
	session := decode[sessionBody](t, opened).Data
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "ready", session.Snapshot.State)
	assert.Equal(t, "leftToRight", session.Snapshot.Mode)
	base := "/sessions/" + session.ID

	advanced := call(t, router, http.MethodPost, base+"/advance", "", "")
	require.Equal(t, http.StatusOK, advanced.Code)
	assert.Equal(t, 2, decode[navigationBody](t, advanced).Data.Page.PageNumber)

	retreated := call(t, router, http.MethodPost, base+"/retreat", "", "")
	require.Equal(t, http.StatusOK, retreated.Code)
	assert.Equal(t, 1, decode[navigationBody](t, retreated).Data.Page.PageNumber)

	sought := call(t, router, http.MethodPost, base+"/seek", `{"chapterIndex":0,"pageNumber":3}`, "")
	require.Equal(t, http.StatusOK, sought.Code)
	assert.True(t, decode[navigationBody](t, sought).Data.Page.IsLastPage)

	toggled := call(t, router, http.MethodPost, base+"/direction", "", "")
	require.Equal(t, http.StatusOK, toggled.Code)
	assert.Equal(t, "rightToLeft", decode[sessionBody](t, toggled).Data.Snapshot.Mode)

	fetched := call(t, router, http.MethodGet, base, "", "")
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.Equal(t, 3, decode[sessionBody](t, fetched).Data.Snapshot.Current.PageNumber)

	retried := call(t, router, http.MethodPost, base+"/retry", `{"chapterId":"c1"}`, "")
	assert.Equal(t, http.StatusConflict, retried.Code)

	closed := call(t, router, http.MethodDelete, base, "", "")
	assert.Equal(t, http.StatusNoContent, closed.Code)

	gone := call(t, router, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

/*
TestHandler_Errors maps request and engine failures onto status codes.
*/
func TestHandler_Errors(t *testing.T) {
	router := newRouter(t)

	opened := call(t, router, http.MethodPost, "/sessions", `{"comicId":"comic-1","chapterId":"c3"}`, "reader-1")
	require.Equal(t, http.StatusCreated, opened.Code)
	base := "/sessions/" + decode[sessionBody](t, opened).Data.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		userID string
		status int
		code   string
	}{
		{"invalid_json", http.MethodPost, "/sessions", `{"comicId":`, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing_fields", http.MethodPost, "/sessions", `{}`, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown_chapter", http.MethodPost, "/sessions", `{"comicId":"comic-1","chapterId":"c9"}`, "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown_session", http.MethodPost, "/sessions/nope/advance", "", "", http.StatusNotFound, "NOT_FOUND"},
		{"other_reader", http.MethodGet, base, "", "reader-2", http.StatusForbidden, "FORBIDDEN"},
		{"seek_missing_page", http.MethodPost, base + "/seek", `{"chapterIndex":2}`, "reader-1", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"retry_without_chapter", http.MethodPost, base + "/retry", `{}`, "reader-1", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := call(t, router, tt.method, tt.path, tt.body, tt.userID)
			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.code, decode[struct{}](t, recorder).Code)
		})
	}

	// c3 has two pages and is the last chapter.
	require.Equal(t, http.StatusOK, call(t, router, http.MethodPost, base+"/advance", "", "reader-1").Code)
	end := call(t, router, http.MethodPost, base+"/advance", "", "reader-1")
	assert.Equal(t, http.StatusConflict, end.Code)
	assert.Equal(t, chapter.CodeNoAdjacentChapter, decode[struct{}](t, end).Code)
}

/*
TestHandler_Retry accepts a retry for a failed chapter.
*/
func TestHandler_Retry(t *testing.T) {
	repo := threeChapters()
	repo.failNext("c1", errors.New("postgres: connection reset"))
	router := chapter.NewHandler(newService(t, repo, time.Hour)).Routes()

	opened := call(t, router, http.MethodPost, "/sessions", `{"comicId":"comic-1","chapterId":"c1"}`, "")
	require.Equal(t, http.StatusCreated, opened.Code)
	session := decode[sessionBody](t, opened).Data
	assert.Equal(t, "failed", session.Snapshot.State)

	retried := call(t, router, http.MethodPost, "/sessions/"+session.ID+"/retry", `{"chapterId":"c1"}`, "")
	assert.Equal(t, http.StatusAccepted, retried.Code)

	require.Eventually(t, func() bool {
		fetched := call(t, router, http.MethodGet, "/sessions/"+session.ID, "", "")
		return decode[sessionBody](t, fetched).Data.Snapshot.State == "ready"
	}, eventually, 5*time.Millisecond)
}
