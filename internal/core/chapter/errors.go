// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"errors"
	"net/http"

	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
	"github.com/taibuivan/yomira-reader/internal/reader"
)

// Error codes specific to the reader surface.
const (
	CodeChapterFetchFailed = "CHAPTER_FETCH_FAILED"
	CodeEmptyChapter       = "EMPTY_CHAPTER"
	CodeNoAdjacentChapter  = "NO_ADJACENT_CHAPTER"
)

/*
toAppError translates reader engine failures into API errors.

Engine kinds are checked before [apperr.AppError] because a fetch failure
may wrap an AppError returned by the data source.
*/
func toAppError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, reader.ErrNoAdjacentChapter) {
		return &apperr.AppError{
			Code:       CodeNoAdjacentChapter,
			Message:    "There is no chapter in that direction",
			HTTPStatus: http.StatusConflict,
			Cause:      err,
		}
	}

	kind, ok := reader.KindOf(err)
	if !ok {
		if apperr.IsAppError(err) {
			return err
		}
		return apperr.Internal(err)
	}

	var appError *apperr.AppError
	switch kind {
	case reader.KindInvalidChapterID:
		appError = apperr.ValidationError("Invalid chapter id", apperr.FieldError{Field: FieldChapterID, Message: "Unknown chapter identifier"})
	case reader.KindChapterNotFound:
		appError = apperr.NotFound("Chapter")
	case reader.KindInvalidState:
		appError = apperr.Conflict("The reading session cannot do that right now")
	case reader.KindInitialChapterFailed, reader.KindSubsequentChapterFailed:
		appError = apperr.BadGateway("Chapter pages could not be loaded")
		appError.Code = CodeChapterFetchFailed
	case reader.KindEmptyPages:
		appError = apperr.Unprocessable("Chapter has no pages")
		appError.Code = CodeEmptyChapter
	default:
		return apperr.Internal(err)
	}

	appError.Cause = err
	return appError
}
