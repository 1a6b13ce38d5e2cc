package entity

import (
	"strings"

	"github.com/uptrace/bun"
)

type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	Key   string `json:"key"   bun:"key,pk"`
	Value string `json:"value" bun:"value"`
}

const (
	SettingPrintTickets = "IMPRIME_TICKETS"
	SettingSchoolName   = "NOMBRE_COLEGIO"
	SettingLogoFilename = "LOGO_FILENAME"

	DefaultSchoolName = "Colegio Privado"
)

// SettingEnabled interprets a boolean-like setting value. Only "true" in any
// case enables it.
func SettingEnabled(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
