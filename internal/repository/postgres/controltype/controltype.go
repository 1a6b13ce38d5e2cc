package controltype

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/repository/postgres"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) List(ctx context.Context, filter Filter) ([]entity.ControlType, int, error) {
	list := make([]entity.ControlType, 0)
	q := r.NewSelect().Model(&list).Order("name ASC")

	if filter.Search != nil {
		q.Where("name ILIKE ?", postgres.Like(strings.TrimSpace(*filter.Search)))
	}
	if filter.Limit != nil {
		q.Limit(*filter.Limit).Offset(postgresql.Offset(filter.Page, filter.Limit, filter.Offset))
	}

	count, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "selecting control type list")
	}

	return list, count, nil
}

func (r Repository) GetByID(ctx context.Context, id int) (entity.ControlType, error) {
	var detail entity.ControlType

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return entity.ControlType{}, postgresql.Translate(err, "control type")
	}

	return detail, nil
}

// Save creates item when its id is zero and renames it otherwise.
func (r Repository) Save(ctx context.Context, item entity.ControlType) (entity.ControlType, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return entity.ControlType{}, errs.New(errs.Validation, "control type name is required")
	}

	if item.ID == 0 {
		if _, err := r.NewInsert().Model(&item).Returning("id").Exec(ctx); err != nil {
			return entity.ControlType{}, postgres.NameTaken(errors.Wrap(err, "creating control type"), "control type", item.Name)
		}
		return item, nil
	}

	res, err := r.NewUpdate().Model(&item).Column("name").WherePK().Exec(ctx)
	if err != nil {
		return entity.ControlType{}, postgres.NameTaken(errors.Wrap(err, "updating control type"), "control type", item.Name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ControlType{}, errs.New(errs.NotFound, "control type not found")
	}

	return item, nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return postgres.DeleteByID(ctx, r.DB, "tipo_control", id, "control type")
}
