package schema

// CoreWebtoonTable represents the 'core.webtoon' table
type CoreWebtoonTable struct {
	Table           string
	ID              string
	Title           string
	Slug            string
	Description     string
	Tags            string
	CoverPath       string
	BannerPath      string
	IsBanner        string
	ShowPublicViews string
	ViewCount       string
	CreatedAt       string
	UpdatedAt       string
}

// CoreWebtoon is the schema definition for core.webtoon
var CoreWebtoon = CoreWebtoonTable{
	Table:           "core.webtoon",
	ID:              "id",
	Title:           "title",
	Slug:            "slug",
	Description:     "description",
	Tags:            "tags",
	CoverPath:       "coverpath",
	BannerPath:      "bannerpath",
	IsBanner:        "isbanner",
	ShowPublicViews: "showpublicviews",
	ViewCount:       "viewcount",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CoreWebtoonTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.Tags, t.CoverPath, t.BannerPath,
		t.IsBanner, t.ShowPublicViews, t.ViewCount, t.CreatedAt, t.UpdatedAt,
	}
}
