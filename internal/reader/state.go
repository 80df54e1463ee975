// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import "errors"

// # Session States

// State is the session-level state machine.
type State int

const (
	StateIdle State = iota
	StateLoadingInitial
	StateReady
	StateLoadingAdjacent
	StateFailed
	StateClosed
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateLoadingInitial:  "loading_initial",
	StateReady:           "ready",
	StateLoadingAdjacent: "loading_adjacent",
	StateFailed:          "failed",
	StateClosed:          "closed",
}

func (state State) String() string {
	if name, ok := stateNames[state]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements [encoding.TextMarshaler].
func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

// # Chapter Load Status

// LoadStatus tracks one chapter inside a session.
type LoadStatus int

const (
	StatusNotLoaded LoadStatus = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

var statusNames = map[LoadStatus]string{
	StatusNotLoaded: "not_loaded",
	StatusLoading:   "loading",
	StatusLoaded:    "loaded",
	StatusFailed:    "failed",
}

func (status LoadStatus) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements [encoding.TextMarshaler].
func (status LoadStatus) MarshalText() ([]byte, error) {
	return []byte(status.String()), nil
}

// # Events

// Event is one entry on a session's state stream.
//
// Chapter names the chapter the transition concerns, if any. Err carries the
// failure payload for fetch errors and blocked crossings.
type Event struct {
	State   State
	Chapter ChapterID
	Page    *PageAddress
	Err     error
}

// Blocking reports whether the event's error stops the session from continuing.
func (event Event) Blocking() bool {
	var readerErr *Error
	if errors.As(event.Err, &readerErr) {
		return readerErr.Blocking
	}
	return false
}

// # Snapshot

// ChapterStatus describes one chapter in a [Snapshot].
type ChapterStatus struct {
	ID       ChapterID  `json:"id"`
	Number   float64    `json:"number"`
	Index    int        `json:"index"`
	Status   LoadStatus `json:"status"`
	Visible  bool       `json:"visible"`
	Pages    int        `json:"pages"`
	Error    string     `json:"error,omitempty"`
	InWindow bool       `json:"inWindow"`
}

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	State    State           `json:"state"`
	Mode     ReadingMode     `json:"mode"`
	Current  *PageAddress    `json:"current,omitempty"`
	Pages    []PageAddress   `json:"pages"`
	Chapters []ChapterStatus `json:"chapters"`
	Window   []int           `json:"window"`
}
