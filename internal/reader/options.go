// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"fmt"
	"log/slog"
)

// # Reading Modes

// ReadingMode controls how the page sequence maps to the screen. It never
// changes fetching or page addressing.
type ReadingMode string

const (
	ModeInfinite    ReadingMode = "infinite"
	ModeVertical    ReadingMode = "vertical"
	ModeLeftToRight ReadingMode = "leftToRight"
	ModeRightToLeft ReadingMode = "rightToLeft"
)

// ParseReadingMode validates a mode name.
func ParseReadingMode(value string) (ReadingMode, error) {
	switch mode := ReadingMode(value); mode {
	case ModeInfinite, ModeVertical, ModeLeftToRight, ModeRightToLeft:
		return mode, nil
	default:
		return "", fmt.Errorf("reader: unknown reading mode %q", value)
	}
}

// Toggled returns the mode with its horizontal direction flipped. Vertical
// modes have no direction and are returned unchanged.
func (mode ReadingMode) Toggled() ReadingMode {
	switch mode {
	case ModeLeftToRight:
		return ModeRightToLeft
	case ModeRightToLeft:
		return ModeLeftToRight
	default:
		return mode
	}
}

// # Progress Collaborator

// ProgressReporter is told when the reader reaches the last page of a chapter.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, chapter Handle, lastPage int, complete bool) error
}

// ProgressFunc adapts a function to [ProgressReporter].
type ProgressFunc func(ctx context.Context, chapter Handle, lastPage int, complete bool) error

// ReportProgress calls fn.
func (fn ProgressFunc) ReportProgress(ctx context.Context, chapter Handle, lastPage int, complete bool) error {
	return fn(ctx, chapter, lastPage, complete)
}

// # Options

const (
	// DefaultLoadThreshold is the distance from a chapter boundary, in layout
	// units, at which the adjacent chapter starts loading.
	DefaultLoadThreshold = 500.0
	// DefaultPageExtent is the layout size of one page along the reading axis.
	DefaultPageExtent    = 250.0
	DefaultPrefetchDepth = 1
	DefaultEventBuffer   = 64
)

// Options configures a [Session].
type Options struct {
	// LoadThreshold is used as given: zero loads a neighbour only from the
	// edge page. [DefaultOptions] sets [DefaultLoadThreshold].
	LoadThreshold float64
	PageExtent    float64
	PrefetchDepth int
	Mode          ReadingMode
	EventBuffer   int
	Logger        *slog.Logger
	Progress      ProgressReporter
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		LoadThreshold: DefaultLoadThreshold,
		PageExtent:    DefaultPageExtent,
		PrefetchDepth: DefaultPrefetchDepth,
		Mode:          ModeVertical,
		EventBuffer:   DefaultEventBuffer,
	}
}

// withDefaults fills unset fields. A zero LoadThreshold is a valid setting and
// is kept; only a negative one is clamped.
func (options Options) withDefaults() Options {
	if options.LoadThreshold < 0 {
		options.LoadThreshold = 0
	}
	if options.PageExtent <= 0 {
		options.PageExtent = DefaultPageExtent
	}
	if options.PrefetchDepth <= 0 {
		options.PrefetchDepth = DefaultPrefetchDepth
	}
	if options.Mode == "" {
		options.Mode = ModeVertical
	}
	if options.EventBuffer <= 0 {
		options.EventBuffer = DefaultEventBuffer
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return options
}
