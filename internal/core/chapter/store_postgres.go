// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-reader/internal/platform/apperr"
	"github.com/taibuivan/yomira-reader/internal/platform/database/schema"
)

// # PostgreSQL Repositories

// chapterRepository implements the [ChapterRepository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL backed chapter store.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

// # Chapter Repository Implementation

/*
ListByComic retrieves the readable chapters of a comic.

Description: Soft-deleted and unpublished chapters are excluded. Ties on the
chapter number fall back to creation time so the order is stable between calls.

Parameters:
  - context: context.Context
  - comicID: string (Owner ID)
  - filter: ChapterFilter (Language)

Returns:
  - []*Chapter: Chapters in ascending number order
*/
func (repository *chapterRepository) ListByComic(context context.Context, comicID string, filter ChapterFilter) ([]*Chapter, error) {

	var queryBuilder strings.Builder
	args := []any{comicID}

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, l.%s AS language, c.%s, c.%s
		FROM %s c
		JOIN %s l ON c.%s = l.%s
		WHERE c.%s = $1 AND c.%s IS NULL AND c.%s IS NOT NULL
	`,
		schema.CoreChapter.ID,
		schema.CoreChapter.ComicID,
		schema.CoreChapter.Number,
		schema.CoreChapter.Title,
		schema.RefLanguage.Code,
		schema.CoreChapter.IsLocked,
		schema.CoreChapter.PublishedAt,
		schema.CoreChapter.Table,
		schema.RefLanguage.Table,
		schema.CoreChapter.LanguageID,
		schema.RefLanguage.ID,
		schema.CoreChapter.ComicID,
		schema.CoreChapter.DeletedAt,
		schema.CoreChapter.PublishedAt,
	))

	// Language filter injection
	if filter.Language != "" {
		args = append(args, filter.Language)
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", schema.RefLanguage.Code, len(args)))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s ASC, c.%s ASC", schema.CoreChapter.Number, schema.CoreChapter.CreatedAt))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		var chapter Chapter
		var title *string
		err := rows.Scan(
			&chapter.ID,
			&chapter.ComicID,
			&chapter.Number,
			&title,
			&chapter.Language,
			&chapter.IsLocked,
			&chapter.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		if title != nil {
			chapter.Title = *title
		}
		chapters = append(chapters, &chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate chapters: %w", err)
	}

	return chapters, nil
}

/*
FindByID returns the metadata of a single chapter.

Returns:
  - *Chapter: A complete mapping of requested chapter data
  - error: apperr.NotFound on absent rows
*/
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {

	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, l.%s AS language, c.%s, c.%s
		FROM %s c
		JOIN %s l ON c.%s = l.%s
		WHERE c.%s = $1 AND c.%s IS NULL
	`,
		schema.CoreChapter.ID, schema.CoreChapter.ComicID, schema.CoreChapter.Number, schema.CoreChapter.Title, schema.RefLanguage.Code,
		schema.CoreChapter.IsLocked, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.Table,
		schema.RefLanguage.Table, schema.CoreChapter.LanguageID, schema.RefLanguage.ID,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	var chapter Chapter
	var title *string

	err := repository.pool.QueryRow(context, query, id).Scan(
		&chapter.ID,
		&chapter.ComicID,
		&chapter.Number,
		&title,
		&chapter.Language,
		&chapter.IsLocked,
		&chapter.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by id: %w", err)
	}

	if title != nil {
		chapter.Title = *title
	}
	return &chapter, nil
}

// # Page Management

/*
ListPages retrieves images associated with a specific chapter.

Returns:
  - []*Page: Collection of page records sorted by sequence
*/
func (repository *chapterRepository) ListPages(context context.Context, chapterID string) ([]*Page, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.CorePage.ID, schema.CorePage.ChapterID, schema.CorePage.PageNumber, schema.CorePage.ImageURL,
		schema.CorePage.Table,
		schema.CorePage.ChapterID,
		schema.CorePage.PageNumber,
	)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.ID, &page.ChapterID, &page.PageNumber, &page.ImageURL); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan page: %w", err)
		}
		pages = append(pages, &page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate pages: %w", err)
	}

	return pages, nil
}

// # Reader Progress

/*
MarkAsRead records that a user has completed a chapter.

Description: Uses an 'ON CONFLICT DO NOTHING' clause so that reaching the
last page twice keeps a single entry.
*/
func (repository *chapterRepository) MarkAsRead(context context.Context, chapterID, userID string) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, schema.LibraryChapterRead.Table, schema.LibraryChapterRead.UserID, schema.LibraryChapterRead.ChapterID)

	if _, err := repository.pool.Exec(context, query, userID, chapterID); err != nil {
		return fmt.Errorf("postgres: failed to mark as read: %w", err)
	}
	return nil
}

/*
SaveProgress upserts the reader's position for a comic.

Parameters:
  - context: context.Context
  - progress: Progress (One row per user and comic)

Returns:
  - error: Record failures
*/
func (repository *chapterRepository) SaveProgress(context context.Context, progress Progress) error {

	table := schema.LibraryReadingProgress
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
	`,
		table.Table, table.UserID, table.ComicID, table.ChapterID, table.PageNumber, table.UpdatedAt,
		table.UserID, table.ComicID,
		table.ChapterID, table.ChapterID, table.PageNumber, table.PageNumber, table.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query, progress.UserID, progress.ComicID, progress.ChapterID, progress.PageNumber)
	if err != nil {
		return fmt.Errorf("postgres: failed to save reading progress: %w", err)
	}
	return nil
}
