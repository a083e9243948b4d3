package schema

// UsersProfileTable represents the 'users.profile' table
type UsersProfileTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	AvatarPath   string
	Bio          string
	CreatedAt    string
	UpdatedAt    string
}

// UsersProfile is the schema definition for users.profile
var UsersProfile = UsersProfileTable{
	Table:        "users.profile",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "passwordhash",
	Role:         "rolename",
	AvatarPath:   "avatarpath",
	Bio:          "bio",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t UsersProfileTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.Role,
		t.AvatarPath, t.Bio, t.CreatedAt, t.UpdatedAt,
	}
}
