// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"errors"
	"fmt"
)

// # Error Taxonomy

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindInvalidChapterID        ErrorKind = "invalid_chapter_id"
	KindChapterNotFound         ErrorKind = "chapter_not_found"
	KindInvalidState            ErrorKind = "invalid_state"
	KindInitialChapterFailed    ErrorKind = "initial_chapter_failed"
	KindSubsequentChapterFailed ErrorKind = "subsequent_chapter_failed"
	KindEmptyPages              ErrorKind = "empty_pages"
)

// Error is the error type produced by the engine.
//
// Fetch-related errors carry the chapter and the underlying cause so the caller
// can retry, skip the chapter or abandon the session. Blocking is set when the
// session cannot continue without caller intervention.
type Error struct {
	Kind      ErrorKind
	ChapterID ChapterID
	Op        string
	Cause     error
	Blocking  bool
}

// Sentinels for [errors.Is]. They match any [*Error] of the same kind.
var (
	ErrInvalidChapterID        = &Error{Kind: KindInvalidChapterID}
	ErrChapterNotFound         = &Error{Kind: KindChapterNotFound}
	ErrInvalidState            = &Error{Kind: KindInvalidState}
	ErrInitialChapterFailed    = &Error{Kind: KindInitialChapterFailed}
	ErrSubsequentChapterFailed = &Error{Kind: KindSubsequentChapterFailed}
	ErrEmptyPages              = &Error{Kind: KindEmptyPages}
)

// ErrNoAdjacentChapter is returned when navigation runs off either end of the series.
var ErrNoAdjacentChapter = errors.New("reader: no adjacent chapter")

func (e *Error) Error() string {
	message := "reader: " + string(e.Kind)
	if e.Op != "" {
		message += " (" + e.Op + ")"
	}
	if !e.ChapterID.IsZero() {
		message += fmt.Sprintf(" chapter=%s", e.ChapterID)
	}
	if e.Cause != nil {
		message += ": " + e.Cause.Error()
	}
	return message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches on kind so that sentinels compare equal to concrete errors.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// KindOf returns the kind of the first [*Error] in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var readerErr *Error
	if errors.As(err, &readerErr) {
		return readerErr.Kind, true
	}
	return "", false
}

// # Constructors

func invalidChapterID(op string, id ChapterID) *Error {
	return &Error{Kind: KindInvalidChapterID, Op: op, ChapterID: id}
}

func chapterNotFound(op string, id ChapterID) *Error {
	return &Error{Kind: KindChapterNotFound, Op: op, ChapterID: id}
}

func invalidState(op string, state State) *Error {
	return &Error{Kind: KindInvalidState, Op: op, Cause: fmt.Errorf("not allowed in state %s", state)}
}

func initialChapterFailed(id ChapterID, cause error) *Error {
	return &Error{Kind: KindInitialChapterFailed, ChapterID: id, Cause: cause, Blocking: true}
}

func subsequentChapterFailed(id ChapterID, cause error) *Error {
	return &Error{Kind: KindSubsequentChapterFailed, ChapterID: id, Cause: cause}
}

func emptyPages(id ChapterID, blocking bool) *Error {
	return &Error{Kind: KindEmptyPages, ChapterID: id, Blocking: blocking}
}
