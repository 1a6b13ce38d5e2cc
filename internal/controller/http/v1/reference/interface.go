package reference

import (
	"context"

	"lunch/backend/internal/repository/postgres"
)

// Service is implemented by the department, person type and control type
// repositories.
type Service[T any] interface {
	List(ctx context.Context, filter postgres.ListFilter) ([]T, int, error)
	GetByID(ctx context.Context, id int) (T, error)
	Save(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id int) error
}
