// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter & Page Data Access

// ChapterRepository defines the data access contract for the reader.
type ChapterRepository interface {

	/*
		ListByComic returns the published chapters of a comic in ascending chapter-number order.

		Parameters:
		  - context: context.Context
		  - comicID: string (Owner ID)
		  - filter: ChapterFilter

		Returns:
		  - []*Chapter: List of hydrated chapters
		  - error: Storage failures
	*/
	ListByComic(context context.Context, comicID string, filter ChapterFilter) ([]*Chapter, error)

	/*
		FindByID returns the chapter with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Chapter: Hydrated metadata
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		ListPages returns all pages for a Chapter ordered by page number.

		Parameters:
		  - context: context.Context
		  - chapterID: string (UUID)

		Returns:
		  - []*Page: List of image metadata
		  - error: Retrieval failure
	*/
	ListPages(context context.Context, chapterID string) ([]*Page, error)

	/*
		MarkAsRead records that a user has completed a chapter.

		Parameters:
		  - context: context.Context
		  - chapterID: string (Target)
		  - userID: string (Actor)

		Returns:
		  - error: Record failure
	*/
	MarkAsRead(context context.Context, chapterID, userID string) error

	// SaveProgress upserts the user's position inside a comic.
	SaveProgress(context context.Context, progress Progress) error
}
