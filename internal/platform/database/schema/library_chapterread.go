package schema

// LibraryChapterReadTable represents the 'library.chapterread' table
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
