package entity

import (
	"github.com/uptrace/bun"
)

type PersonType struct {
	bun.BaseModel `bun:"table:tipos_persona"`

	ID   int    `json:"id"   bun:"id,pk,autoincrement"`
	Name string `json:"name" bun:"name"`
}

// PersonTypeStudent is assigned to everyone loaded by the student
// spreadsheet importer.
const PersonTypeStudent = "Estudiante"
