package entity

import (
	"github.com/uptrace/bun"
)

const (
	RoleAdmin    = "Administrador"
	RoleOperator = "Operador"
)

type Role struct {
	bun.BaseModel `bun:"table:roles"`

	ID   int    `json:"id"   bun:"id,pk,autoincrement"`
	Name string `json:"name" bun:"name"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int    `json:"id"       bun:"id,pk,autoincrement"`
	Username string `json:"username" bun:"username"`
	Password string `json:"-"        bun:"password"`
	RoleID   int    `json:"role_id"  bun:"role_id"`

	Role *Role `json:"role,omitempty" bun:"rel:belongs-to,join:role_id=id"`
}
