// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reader implements the page-streaming engine behind the comic reader.

It turns an ordered collection of chapters into one linear, seekable stream of
pages. Page lists are fetched on demand from a [Source], merged into the visible
sequence in chapter order, and kept consistent while several fetches race each other.

# Layers

  - Capability: any type implementing [Chapter] can be read.
  - Erasure: [EraseSource] and [EraseOrdering] hide the concrete chapter type behind
    [ChapterID] and [Handle] so that [Session] itself is not generic.
  - Traversal: [Index] is an immutable doubly-linked chapter list built per session.
  - Streaming: [Session] owns the read position, the prefetch window and the
    per-chapter load status, and reports transitions on its event stream.
*/
package reader

import "fmt"

// # Chapter Capability

// Chapter is the minimal contract a chapter type satisfies to be navigable.
//
// ChapterNumber is the ordering key used by [Index]. Half chapters (12.5) and
// extras are expected.
type Chapter[ID comparable] interface {
	ChapterID() ID
	ChapterNumber() float64
}

// # Erased Identifier

// ChapterID is the erased form of a concrete chapter identifier.
//
// It is comparable and usable as a map key. It is a lookup key only and keeps no
// reference to the chapter it was taken from.
type ChapterID struct {
	key any
}

// EraseID wraps a concrete identifier.
func EraseID[ID comparable](id ID) ChapterID {
	return ChapterID{key: id}
}

// IDAs recovers the concrete identifier. It reports false when the erased value
// holds a different type.
func IDAs[ID comparable](id ChapterID) (ID, bool) {
	value, ok := id.key.(ID)
	return value, ok
}

// IsZero reports whether the identifier was never set.
func (id ChapterID) IsZero() bool {
	return id.key == nil
}

// String renders the wrapped value.
func (id ChapterID) String() string {
	if id.key == nil {
		return ""
	}
	return fmt.Sprint(id.key)
}

// MarshalText implements [encoding.TextMarshaler].
func (id ChapterID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// flightKey is unique across identifier types sharing one string rendering.
func (id ChapterID) flightKey() string {
	return fmt.Sprintf("%T:%v", id.key, id.key)
}

// # Erased Handle

// Handle carries a concrete chapter value behind its erased identifier.
//
// Two handles are the same chapter when their identifiers are equal, whatever
// their payload.
type Handle struct {
	id     ChapterID
	number float64
	value  any
}

func newHandle[ID comparable, C Chapter[ID]](chapter C) Handle {
	return Handle{
		id:     EraseID(chapter.ChapterID()),
		number: chapter.ChapterNumber(),
		value:  chapter,
	}
}

// ID returns the erased identifier.
func (handle Handle) ID() ChapterID { return handle.id }

// Number returns the chapter's ordering key.
func (handle Handle) Number() float64 { return handle.number }

// Equal compares by identifier only.
func (handle Handle) Equal(other Handle) bool {
	return handle.id == other.id
}

// As downcasts the handle back to the concrete chapter type of the source that
// produced it.
func As[C any](handle Handle) (C, bool) {
	value, ok := handle.value.(C)
	return value, ok
}
