package report

import (
	"context"

	"lunch/backend/internal/repository/postgres/report"
)

type Report interface {
	GetList(ctx context.Context, filter report.Filter) ([]report.GetListResponse, error)
}
