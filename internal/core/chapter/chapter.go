// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the reading surface of the catalogue.

It adapts stored chapters and their CDN pages to the reader engine and keeps the
live reading sessions that clients drive over HTTP.

# Core Responsibility

  - Serialisation: Loads a comic's [Chapter] list in chapter-number order (half-chapters like 1.5 included).
  - Content Delivery: Resolves the [Page] URLs of a chapter, cached in Redis.
  - Progress: Records the last page reached and completed chapters for signed-in readers.
*/
package chapter

import "time"

// # Chapter Aggregate

// Chapter represents a single chapter (episode) of a comic.
type Chapter struct {
	ID          string     `json:"id"`
	ComicID     string     `json:"comicId"`
	Number      float64    `json:"number"`          // Supports half-chapters (e.g. 12.5) and specials
	Title       string     `json:"title,omitempty"` // Optional; may be empty for untitled chapters
	Language    string     `json:"language"`        // BCP-47 identifier (e.g. "en", "vi")
	IsLocked    bool       `json:"isLocked"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// ChapterID identifies the chapter to the reader engine.
func (chapter Chapter) ChapterID() string { return chapter.ID }

// ChapterNumber orders the chapter inside the reader's index.
func (chapter Chapter) ChapterNumber() float64 { return chapter.Number }

// # Image Delivery

// Page represents a single image page within a [Chapter].
type Page struct {
	ID         string
	ChapterID  string
	PageNumber int
	ImageURL   string // Content Delivery Network (CDN) URL
}

// # Filter Criteria

// ChapterFilter holds parameters for filtering a comic's chapter list.
type ChapterFilter struct {
	Language string // BCP-47 filter (e.g. "en", "ja")
}

// # Reading Progress

// Progress is the furthest page a reader reached inside a chapter.
type Progress struct {
	UserID     string
	ComicID    string
	ChapterID  string
	PageNumber int
}
