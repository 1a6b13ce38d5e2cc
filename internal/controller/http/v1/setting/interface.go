package setting

import (
	"context"
	"mime/multipart"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/repository/postgres/setting"
)

type Setting interface {
	Get(ctx context.Context, key string) (string, bool, error)
	List(ctx context.Context) ([]entity.Setting, error)
	GetInfo(ctx context.Context) (setting.GetInfoResponse, error)
	Set(ctx context.Context, key, value string) error
	UpdateAll(ctx context.Context, request setting.UpdateRequest) error
}

type Files interface {
	Upload(file *multipart.FileHeader, folder string, allowed []string) (string, error)
	Remove(folder, name string)
}
