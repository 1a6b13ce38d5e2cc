package backup

import (
	"context"
	"io"

	"lunch/backend/internal/service/backup"
)

type Backup interface {
	List() ([]backup.Info, error)
	Create(ctx context.Context) (string, error)
	Download(ctx context.Context) ([]byte, string, error)
	RestoreUpload(ctx context.Context, filename string, r io.Reader) error
	RestoreFile(ctx context.Context, name string) error
}
