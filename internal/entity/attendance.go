package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance is one lunch-taken event. CreatedAt is stored in UTC; LunchDay
// is the display-zone calendar day of CreatedAt and is unique per person.
type Attendance struct {
	bun.BaseModel `bun:"table:registros"`

	ID            int       `json:"id"              bun:"id,pk,autoincrement"`
	PersonID      string    `json:"person_id"       bun:"person_id"`
	ControlTypeID int       `json:"control_type_id" bun:"control_type_id"`
	CreatedAt     time.Time `json:"created_at"      bun:"created_at"`
	LunchDay      time.Time `json:"lunch_day"       bun:"lunch_day,type:date"`

	Person      *Person      `json:"person,omitempty"       bun:"rel:belongs-to,join:person_id=id"`
	ControlType *ControlType `json:"control_type,omitempty" bun:"rel:belongs-to,join:control_type_id=id"`
}
