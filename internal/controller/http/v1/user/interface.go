package user

import (
	"context"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/repository/postgres/user"
)

type User interface {
	GetList(ctx context.Context, filter user.Filter) ([]user.GetListResponse, int, error)
	GetByID(ctx context.Context, id int) (entity.User, error)
	Roles(ctx context.Context) ([]entity.Role, error)

	Save(ctx context.Context, request user.SaveRequest) (entity.User, error)
	Delete(ctx context.Context, id, currentUserID int) error
	ChangePassword(ctx context.Context, request user.ChangePasswordRequest) (string, error)
}
