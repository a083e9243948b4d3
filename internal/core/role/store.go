// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import "context"

type Repository interface {
	ListRoles(context context.Context) ([]*Role, error)
	GetRole(context context.Context, id string) (*Role, error)
	CreateRole(context context.Context, r *Role) error
	UpdateRole(context context.Context, r *Role) error
	DeleteRole(context context.Context, id string) error
}
