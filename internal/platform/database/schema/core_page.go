package schema

// CorePageTable represents the 'core.page' table
type CorePageTable struct {
	Table      string
	ID         string
	ChapterID  string
	PageNumber string
	AssetPath  string
}

// CorePage is the schema definition for core.page
var CorePage = CorePageTable{
	Table:      "core.page",
	ID:         "id",
	ChapterID:  "chapterid",
	PageNumber: "pagenumber",
	AssetPath:  "assetpath",
}
