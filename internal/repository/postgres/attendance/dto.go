package attendance

import (
	"context"
	"time"
)

// Settings is the part of the settings repository the ledger reads.
type Settings interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

type entryRow struct {
	ID          int       `bun:"id"`
	PersonCode  string    `bun:"person_code"`
	PersonName  string    `bun:"person_name"`
	Department  string    `bun:"department"`
	ControlType string    `bun:"control_type"`
	CreatedAt   time.Time `bun:"created_at"`
}

type personRow struct {
	Code          string `bun:"id"`
	Name          string `bun:"full_name"`
	Department    string `bun:"department"`
	ControlTypeID int    `bun:"control_type_id"`
	ControlType   string `bun:"control_type"`
}
