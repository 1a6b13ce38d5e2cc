package entity

import (
	"strings"

	"github.com/uptrace/bun"
)

type ControlType struct {
	bun.BaseModel `bun:"table:tipo_control"`

	ID   int    `json:"id"   bun:"id,pk,autoincrement"`
	Name string `json:"name" bun:"name"`
}

const (
	ControlRegular       = "Almuerzo Regular"
	ControlSpecialDiet   = "Dieta Especial"
	ControlNotApplicable = "No Aplica"
)

// IsNotApplicable reports whether name is the sentinel control type that
// marks a person as not entitled to lunch.
func IsNotApplicable(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), ControlNotApplicable)
}
