package schema

// UsersRoleTable represents the 'users.role' table
type UsersRoleTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// UsersRole is the schema definition for users.role
var UsersRole = UsersRoleTable{
	Table:       "users.role",
	ID:          "id",
	Name:        "name",
	Description: "description",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}
