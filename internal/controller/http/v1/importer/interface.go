package importer

import (
	"context"

	"lunch/backend/internal/service/importer"
)

type Importer interface {
	Import(ctx context.Context, kind importer.Kind, table importer.Table) (importer.Report, error)
	ImportStudents(ctx context.Context, table importer.Table) (importer.Report, error)
}
