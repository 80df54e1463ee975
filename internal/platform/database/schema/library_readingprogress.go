package schema

// LibraryReadingProgressTable represents the 'library.readingprogress' table.
// Holds the furthest page reached per (user, comic).
type LibraryReadingProgressTable struct {
	Table      string
	UserID     string
	ComicID    string
	ChapterID  string
	PageNumber string
	UpdatedAt  string
}

// LibraryReadingProgress is the schema definition for library.readingprogress
var LibraryReadingProgress = LibraryReadingProgressTable{
	Table:      "library.readingprogress",
	UserID:     "userid",
	ComicID:    "comicid",
	ChapterID:  "chapterid",
	PageNumber: "pagenumber",
	UpdatedAt:  "updatedat",
}

func (t LibraryReadingProgressTable) Columns() []string {
	return []string{t.UserID, t.ComicID, t.ChapterID, t.PageNumber, t.UpdatedAt}
}
