package schema

// SystemNotificationTable represents the 'system.notification' table
type SystemNotificationTable struct {
	Table     string
	ID        string
	UserID    string
	WebtoonID string
	ChapterID string
	Message   string
	IsRead    string
	CreatedAt string
}

// SystemNotification is the schema definition for system.notification
var SystemNotification = SystemNotificationTable{
	Table:     "system.notification",
	ID:        "id",
	UserID:    "userid",
	WebtoonID: "webtoonid",
	ChapterID: "chapterid",
	Message:   "message",
	IsRead:    "isread",
	CreatedAt: "createdat",
}
