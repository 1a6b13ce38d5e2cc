package entity

import (
	"github.com/uptrace/bun"
)

type Department struct {
	bun.BaseModel `bun:"table:dptos"`

	ID   int    `json:"id"   bun:"id,pk,autoincrement"`
	Name string `json:"name" bun:"name"`
}
