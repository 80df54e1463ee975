// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import "sort"

// noNode marks a missing neighbour.
const noNode = -1

// # Bidirectional Chapter Index

type indexNode struct {
	handle   Handle
	previous int
	next     int
}

// Index is a doubly-linked chapter list stored as an arena of nodes with integer
// neighbour links.
//
// It is built once per session and never mutated afterwards. A changed chapter
// set means building a new index.
type Index struct {
	nodes []indexNode
	head  int
	tail  int
}

/*
NewIndex builds the index from a copy of handles sorted ascending by chapter number.

Description: Equal numbers keep their input order. Construction is O(n log n)
for the sort plus O(n) linking.
*/
func NewIndex(handles []Handle) *Index {
	sorted := make([]Handle, len(handles))
	copy(sorted, handles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number() < sorted[j].Number()
	})

	index := &Index{
		nodes: make([]indexNode, len(sorted)),
		head:  noNode,
		tail:  noNode,
	}

	for i, handle := range sorted {
		index.nodes[i] = indexNode{handle: handle, previous: noNode, next: noNode}
		if index.tail != noNode {
			index.nodes[index.tail].next = i
			index.nodes[i].previous = index.tail
		} else {
			index.head = i
		}
		index.tail = i
	}

	return index
}

// Len returns the number of chapters.
func (index *Index) Len() int { return len(index.nodes) }

// At returns the chapter stored at position.
func (index *Index) At(position int) (Handle, bool) {
	if position < 0 || position >= len(index.nodes) {
		return Handle{}, false
	}
	return index.nodes[position].handle, true
}

// Position finds a chapter by identifier with a linear scan.
func (index *Index) Position(id ChapterID) (int, bool) {
	for i := range index.nodes {
		if index.nodes[i].handle.id == id {
			return i, true
		}
	}
	return noNode, false
}

// Next returns the position after position.
func (index *Index) Next(position int) (int, bool) {
	if position < 0 || position >= len(index.nodes) {
		return noNode, false
	}
	next := index.nodes[position].next
	return next, next != noNode
}

// Previous returns the position before position.
func (index *Index) Previous(position int) (int, bool) {
	if position < 0 || position >= len(index.nodes) {
		return noNode, false
	}
	previous := index.nodes[position].previous
	return previous, previous != noNode
}

// HasNext reports whether a chapter follows position.
func (index *Index) HasNext(position int) bool {
	_, ok := index.Next(position)
	return ok
}

// HasPrevious reports whether a chapter precedes position.
func (index *Index) HasPrevious(position int) bool {
	_, ok := index.Previous(position)
	return ok
}

// Walk visits chapters front to back until fn returns false.
func (index *Index) Walk(fn func(position int, handle Handle) bool) {
	for position := index.head; position != noNode; position = index.nodes[position].next {
		if !fn(position, index.nodes[position].handle) {
			return
		}
	}
}

// Forward returns all chapters front to back.
func (index *Index) Forward() []Handle {
	handles := make([]Handle, 0, len(index.nodes))
	index.Walk(func(_ int, handle Handle) bool {
		handles = append(handles, handle)
		return true
	})
	return handles
}

// Backward returns all chapters back to front.
func (index *Index) Backward() []Handle {
	handles := make([]Handle, 0, len(index.nodes))
	for position := index.tail; position != noNode; position = index.nodes[position].previous {
		handles = append(handles, index.nodes[position].handle)
	}
	return handles
}
