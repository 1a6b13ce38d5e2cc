package attendance

import (
	"context"

	"lunch/backend/internal/service/registration"
)

type Registration interface {
	Register(ctx context.Context, code string) (registration.Result, error)
	Today(ctx context.Context, limit int) ([]registration.Result, error)
	Ticket(ctx context.Context, id int) ([]byte, error)
	Delete(ctx context.Context, id int) error
}
