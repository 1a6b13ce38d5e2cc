package person

import (
	"context"
	"mime/multipart"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/repository/postgres/person"
)

type Person interface {
	GetList(ctx context.Context, filter person.Filter) ([]person.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id string) (person.GetDetailByIdResponse, error)
	Search(ctx context.Context, term string) ([]person.SearchResult, error)

	Create(ctx context.Context, request person.CreateRequest) (entity.Person, error)
	Update(ctx context.Context, request person.UpdateRequest) error
	UpdatePhoto(ctx context.Context, id, photo string) (string, error)
	Delete(ctx context.Context, id string) error
}

// Photos stores uploaded person photos.
type Photos interface {
	UploadPhoto(file *multipart.FileHeader) (string, error)
	Remove(folder, name string)
}
