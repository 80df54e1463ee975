// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

// # Page Address

// PageAddress identifies one image inside one chapter of a session.
//
// ChapterIndex is the chapter's position in the session's [Index], not a database
// identifier. PageNumber is 1-based and contiguous within a chapter.
type PageAddress struct {
	URL           string  `json:"url"`
	ChapterIndex  int     `json:"chapterIndex"`
	ChapterNumber float64 `json:"chapterNumber"`
	PageNumber    int     `json:"pageNumber"`
	IsFirstPage   bool    `json:"isFirstPage"`
	IsLastPage    bool    `json:"isLastPage"`
}

// SamePage reports whether both addresses point at the same page.
func (address PageAddress) SamePage(other PageAddress) bool {
	return address.ChapterIndex == other.ChapterIndex && address.PageNumber == other.PageNumber
}

/*
ExpandPages turns a chapter's fetched URL list into page addresses.

Parameters:
  - chapterIndex: int (Position in the session index)
  - chapter: Handle (Owning chapter)
  - urls: []string (Fetched page URLs in reading order)

Returns:
  - []PageAddress: One address per URL
  - error: ErrEmptyPages when urls is empty; no address is produced in that case
*/
func ExpandPages(chapterIndex int, chapter Handle, urls []string) ([]PageAddress, error) {
	if len(urls) == 0 {
		return nil, emptyPages(chapter.ID(), false)
	}

	pages := make([]PageAddress, len(urls))
	for k, url := range urls {
		pages[k] = PageAddress{
			URL:           url,
			ChapterIndex:  chapterIndex,
			ChapterNumber: chapter.Number(),
			PageNumber:    k + 1,
			IsFirstPage:   k == 0,
			IsLastPage:    k == len(urls)-1,
		}
	}
	return pages, nil
}
