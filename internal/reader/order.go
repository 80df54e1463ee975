// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

// # Ordering Policy

// OrderKind tags the variant held by an [Ordering].
type OrderKind int

const (
	// OrderByIndex follows positions in the supplied chapter array.
	OrderByIndex OrderKind = iota
	// OrderCustom delegates to a caller supplied function.
	OrderCustom
)

// CustomOrderFunc returns the chapters before and after current, nil for none.
//
// It must be deterministic and free of side effects: the engine calls it again
// for the same position on retries and expects the same answer.
type CustomOrderFunc[ID comparable, C Chapter[ID]] func(current ID, chapters []C) (next, previous *C)

// Ordering decides which chapter follows and precedes another.
type Ordering[ID comparable, C Chapter[ID]] struct {
	kind   OrderKind
	custom CustomOrderFunc[ID, C]
}

// ByIndex orders chapters by their position in the supplied array.
func ByIndex[ID comparable, C Chapter[ID]]() Ordering[ID, C] {
	return Ordering[ID, C]{kind: OrderByIndex}
}

// ByFunc orders chapters with fn. Use it when numbering is not contiguous, for
// example volume-scoped numbers or several groups releasing the same number.
func ByFunc[ID comparable, C Chapter[ID]](fn CustomOrderFunc[ID, C]) Ordering[ID, C] {
	if fn == nil {
		return ByIndex[ID, C]()
	}
	return Ordering[ID, C]{kind: OrderCustom, custom: fn}
}

// Kind reports the policy variant.
func (ordering Ordering[ID, C]) Kind() OrderKind { return ordering.kind }

// # Erased Ordering

// Order is an [Ordering] with the chapter type erased.
//
// The zero value has no neighbours for any chapter.
type Order struct {
	neighbors func(id ChapterID) (next, previous ChapterID)
}

// Neighbors returns the erased identifiers of the chapters after and before id.
// A zero [ChapterID] means there is none. An id that cannot be resolved yields
// no neighbours rather than an error.
func (order Order) Neighbors(id ChapterID) (next, previous ChapterID) {
	if order.neighbors == nil {
		return ChapterID{}, ChapterID{}
	}
	return order.neighbors(id)
}

// EraseOrdering captures ordering over a snapshot of chapters.
func EraseOrdering[ID comparable, C Chapter[ID]](ordering Ordering[ID, C], chapters []C) Order {
	snapshot := make([]C, len(chapters))
	copy(snapshot, chapters)

	// First occurrence wins for duplicated identifiers.
	positions := make(map[ID]int, len(snapshot))
	for i, chapter := range snapshot {
		if _, exists := positions[chapter.ChapterID()]; !exists {
			positions[chapter.ChapterID()] = i
		}
	}

	erase := func(chapter *C) ChapterID {
		if chapter == nil {
			return ChapterID{}
		}
		return EraseID((*chapter).ChapterID())
	}

	return Order{neighbors: func(id ChapterID) (ChapterID, ChapterID) {
		concrete, ok := IDAs[ID](id)
		if !ok {
			return ChapterID{}, ChapterID{}
		}
		position, found := positions[concrete]
		if !found {
			return ChapterID{}, ChapterID{}
		}

		if ordering.kind == OrderCustom {
			next, previous := ordering.custom(concrete, snapshot)
			return erase(next), erase(previous)
		}

		var next, previous ChapterID
		if position+1 < len(snapshot) {
			next = EraseID(snapshot[position+1].ChapterID())
		}
		if position > 0 {
			previous = EraseID(snapshot[position-1].ChapterID())
		}
		return next, previous
	}}
}
