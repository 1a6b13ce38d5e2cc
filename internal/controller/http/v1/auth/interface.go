package auth

import (
	"context"

	"lunch/backend/internal/entity"
)

type User interface {
	Authenticate(ctx context.Context, username, password string) (entity.User, error)
	GetByID(ctx context.Context, id int) (entity.User, error)
}
