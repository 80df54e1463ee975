// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-reader/internal/reader"
)

// ProgressRecorder persists reading progress for one signed-in reader.
type ProgressRecorder struct {
	repo    ChapterRepository
	userID  string
	comicID string
	logger  *slog.Logger
}

var _ reader.ProgressReporter = (*ProgressRecorder)(nil)

// NewProgressRecorder binds a recorder to a user and the comic being read.
func NewProgressRecorder(repo ChapterRepository, userID, comicID string, logger *slog.Logger) *ProgressRecorder {
	return &ProgressRecorder{repo: repo, userID: userID, comicID: comicID, logger: logger}
}

/*
ReportProgress stores the page reached and marks the chapter read once complete.

Parameters:
  - context: context.Context
  - handle: reader.Handle (Erased chapter)
  - lastPage: int (1-based)
  - complete: bool (Last page reached)

Returns:
  - error: Persistence failures
*/
func (recorder *ProgressRecorder) ReportProgress(context context.Context, handle reader.Handle, lastPage int, complete bool) error {

	chapter, ok := reader.As[Chapter](handle)
	if !ok {
		return fmt.Errorf("progress: unexpected chapter type for %s", handle.ID())
	}

	err := recorder.repo.SaveProgress(context, Progress{
		UserID:     recorder.userID,
		ComicID:    recorder.comicID,
		ChapterID:  chapter.ID,
		PageNumber: lastPage,
	})
	if err != nil {
		return err
	}

	if complete {
		if err := recorder.repo.MarkAsRead(context, chapter.ID, recorder.userID); err != nil {
			return err
		}
		recorder.logger.Info("chapter_marked_as_read",
			slog.String("chapter_id", chapter.ID),
			slog.String("user_id", recorder.userID),
		)
	}

	return nil
}
