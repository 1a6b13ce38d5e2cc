package report

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

const (
	TypePerson      = "persona"
	TypeControlType = "tipo_control"
	TypeDepartment  = "dpto"
	TypePersonType  = "tipo_persona"
)

// Filter selects ledger entries. From and To are calendar dates in display
// time; both ends are inclusive.
type Filter struct {
	Type     string     `json:"tipo_reporte" form:"tipo_reporte"`
	FilterID string     `json:"filtro_id"    form:"filtro_id"`
	From     *date.Date `json:"fecha_inicio" form:"-"`
	To       *date.Date `json:"fecha_fin"    form:"-"`
}

type GetListResponse struct {
	ID          int       `json:"id"`
	CreatedAt   time.Time `json:"-"`
	Timestamp   string    `json:"fecha_hora"`
	PersonCode  string    `json:"id_persona"`
	PersonName  string    `json:"nombre_persona"`
	Department  string    `json:"dpto"`
	PersonType  string    `json:"tipo_persona"`
	ControlType string    `json:"tipo_control"`
}
