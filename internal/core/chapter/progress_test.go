// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/core/chapter"
	"github.com/taibuivan/yomira-reader/internal/reader"
)

/*
TestProgressRecorder saves the position and marks completed chapters read.
*/
func TestProgressRecorder(t *testing.T) {
	repo := newFakeRepository().withChapter("c1", 1, "en", 3).withChapter("c2", 2, "en", 3)
	erased, _ := reader.Erase[string, chapter.Chapter](newSource(repo, nil), reader.ByIndex[string, chapter.Chapter]())
	handles := erased.Chapters()
	require.Len(t, handles, 2)

	recorder := chapter.NewProgressRecorder(repo, "reader-1", "comic-1", discardLogger())

	require.NoError(t, recorder.ReportProgress(context.Background(), handles[0], 2, false))
	require.NoError(t, recorder.ReportProgress(context.Background(), handles[1], 3, true))

	assert.Equal(t, []chapter.Progress{
		{UserID: "reader-1", ComicID: "comic-1", ChapterID: "c1", PageNumber: 2},
		{UserID: "reader-1", ComicID: "comic-1", ChapterID: "c2", PageNumber: 3},
	}, repo.savedProgress())
	assert.Equal(t, []string{"reader-1/c2"}, repo.readChapters())
}
