package entity

import (
	"strings"

	"github.com/uptrace/bun"
)

const DefaultPhoto = "default.jpg"

type Person struct {
	bun.BaseModel `bun:"table:personas"`

	ID            string `json:"id"              bun:"id,pk"`
	FullName      string `json:"full_name"       bun:"full_name"`
	Sex           string `json:"sex"             bun:"sex"`
	DepartmentID  int    `json:"department_id"   bun:"department_id"`
	PersonTypeID  int    `json:"person_type_id"  bun:"person_type_id"`
	ControlTypeID int    `json:"control_type_id" bun:"control_type_id"`
	Photo         string `json:"photo"           bun:"photo"`

	Department  *Department  `json:"department,omitempty"   bun:"rel:belongs-to,join:department_id=id"`
	PersonType  *PersonType  `json:"person_type,omitempty"  bun:"rel:belongs-to,join:person_type_id=id"`
	ControlType *ControlType `json:"control_type,omitempty" bun:"rel:belongs-to,join:control_type_id=id"`
}

// NormalizeSex maps m/f in any case to M/F. ok is false for anything else.
func NormalizeSex(s string) (string, bool) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case "M", "F":
		return v, true
	}
	return "", false
}
