package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table         string
	ID            string
	WebtoonID     string
	Number        string
	ThumbnailPath string
	RequiredRoles string
	ViewCount     string
	CreatedAt     string
	UpdatedAt     string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:         "core.chapter",
	ID:            "id",
	WebtoonID:     "webtoonid",
	Number:        "chapternumber",
	ThumbnailPath: "thumbnailpath",
	RequiredRoles: "requiredroles",
	ViewCount:     "viewcount",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.WebtoonID, t.Number, t.ThumbnailPath, t.RequiredRoles,
		t.ViewCount, t.CreatedAt, t.UpdatedAt,
	}
}
