package schema

// LibraryChapterReadTable represents the 'library.chapterread' table.
// One row per (user, chapter) the reader finished.
type LibraryChapterReadTable struct {
	Table     string
	UserID    string
	ChapterID string
	ReadAt    string
}

// LibraryChapterRead is the schema definition for library.chapterread
var LibraryChapterRead = LibraryChapterReadTable{
	Table:     "library.chapterread",
	UserID:    "userid",
	ChapterID: "chapterid",
	ReadAt:    "readat",
}

func (t LibraryChapterReadTable) Columns() []string {
	return []string{t.UserID, t.ChapterID, t.ReadAt}
}
