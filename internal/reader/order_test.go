// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-reader/internal/reader"
)

// extraAfterFive places the 5.5 side chapter right after 5, whatever the array says.
func extraAfterFive(current string, chapters []testChapter) (next, previous *testChapter) {
	find := func(id string) *testChapter {
		for i := range chapters {
			if chapters[i].id == id {
				return &chapters[i]
			}
		}
		return nil
	}

	switch current {
	case "c4":
		return find("c5"), nil
	case "c5":
		return find("c5.5"), find("c4")
	case "c5.5":
		return find("c6"), find("c5")
	case "c6":
		return nil, find("c5.5")
	}
	return nil, nil
}

/*
TestOrdering_ByIndex follows array positions and stops at both ends.
*/
func TestOrdering_ByIndex(t *testing.T) {
	chapters := []testChapter{ch("c4", 4), ch("c5", 5), ch("c6", 6), ch("c5.5", 5.5)}
	order := reader.EraseOrdering(reader.ByIndex[string, testChapter](), chapters)

	tests := []struct {
		name     string
		current  string
		next     reader.ChapterID
		previous reader.ChapterID
	}{
		{"head", "c4", cid("c5"), reader.ChapterID{}},
		{"middle", "c5", cid("c6"), cid("c4")},
		{"tail", "c5.5", reader.ChapterID{}, cid("c6")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, previous := order.Neighbors(cid(tt.current))
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.previous, previous)
		})
	}
}

/*
TestOrdering_Custom honours the caller's function over array adjacency.
*/
func TestOrdering_Custom(t *testing.T) {
	chapters := []testChapter{ch("c4", 4), ch("c5", 5), ch("c6", 6), ch("c5.5", 5.5)}
	ordering := reader.ByFunc[string, testChapter](extraAfterFive)
	assert.Equal(t, reader.OrderCustom, ordering.Kind())

	order := reader.EraseOrdering(ordering, chapters)

	next, previous := order.Neighbors(cid("c5"))
	assert.Equal(t, cid("c5.5"), next)
	assert.Equal(t, cid("c4"), previous)

	// Same inputs, same answer.
	again, _ := order.Neighbors(cid("c5"))
	assert.Equal(t, next, again)
}

/*
TestOrdering_Unresolvable returns no neighbours instead of failing.
*/
func TestOrdering_Unresolvable(t *testing.T) {
	chapters := []testChapter{ch("a", 1), ch("b", 2)}

	for name, order := range map[string]reader.Order{
		"index":  reader.EraseOrdering(reader.ByIndex[string, testChapter](), chapters),
		"custom": reader.EraseOrdering(reader.ByFunc[string, testChapter](extraAfterFive), chapters),
		"zero":   {},
	} {
		t.Run(name, func(t *testing.T) {
			for _, id := range []reader.ChapterID{cid("missing"), reader.EraseID(42), {}} {
				next, previous := order.Neighbors(id)
				assert.True(t, next.IsZero())
				assert.True(t, previous.IsZero())
			}
		})
	}
}

/*
TestOrdering_NilFunc falls back to index order.
*/
func TestOrdering_NilFunc(t *testing.T) {
	ordering := reader.ByFunc[string, testChapter](nil)
	assert.Equal(t, reader.OrderByIndex, ordering.Kind())
}
