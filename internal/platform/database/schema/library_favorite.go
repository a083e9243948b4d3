package schema

// LibraryFavoriteTable represents the 'library.favorite' table
type LibraryFavoriteTable struct {
	Table     string
	UserID    string
	WebtoonID string
	CreatedAt string
}

// LibraryFavorite is the schema definition for library.favorite
var LibraryFavorite = LibraryFavoriteTable{
	Table:     "library.favorite",
	UserID:    "userid",
	WebtoonID: "webtoonid",
	CreatedAt: "createdat",
}
