package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table       string
	ID          string
	ComicID     string
	LanguageID  string
	Number      string
	Title       string
	IsLocked    string
	PublishedAt string
	CreatedAt   string
	DeletedAt   string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:       "core.chapter",
	ID:          "id",
	ComicID:     "comicid",
	LanguageID:  "languageid",
	Number:      "chapternumber",
	Title:       "title",
	IsLocked:    "islocked",
	PublishedAt: "publishedat",
	CreatedAt:   "createdat",
	DeletedAt:   "deletedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.LanguageID, t.Number, t.Title,
		t.IsLocked, t.PublishedAt, t.CreatedAt, t.DeletedAt,
	}
}
