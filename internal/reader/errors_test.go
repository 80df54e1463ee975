// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-reader/internal/reader"
)

/*
TestError_Matching checks kind-based matching, cause unwrapping and formatting.
*/
func TestError_Matching(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("prefetch: %w", &reader.Error{
		Kind:      reader.KindSubsequentChapterFailed,
		ChapterID: cid("c2"),
		Cause:     cause,
	})

	assert.ErrorIs(t, err, reader.ErrSubsequentChapterFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, reader.ErrInitialChapterFailed)

	kind, ok := reader.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reader.KindSubsequentChapterFailed, kind)

	assert.Contains(t, err.Error(), "subsequent_chapter_failed")
	assert.Contains(t, err.Error(), "chapter=c2")
	assert.Contains(t, err.Error(), "timeout")

	_, ok = reader.KindOf(cause)
	assert.False(t, ok)
}

/*
TestEvent_Blocking reads the blocking flag through wrapped errors.
*/
func TestEvent_Blocking(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		block bool
	}{
		{"none", nil, false},
		{"plain", errors.New("x"), false},
		{"initial", &reader.Error{Kind: reader.KindInitialChapterFailed, Blocking: true}, true},
		{"subsequent", &reader.Error{Kind: reader.KindSubsequentChapterFailed}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.block, reader.Event{Err: tt.err}.Blocking())
		})
	}
}
