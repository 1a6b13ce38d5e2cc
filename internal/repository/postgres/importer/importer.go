// Package importer is the bun store behind the bulk import reconciler.
package importer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/service/importer"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

var _ importer.Store = (*Repository)(nil)

func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx importer.Tx) error) error {
	return r.Database.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, importTx{tx})
	})
}

type importTx struct {
	tx bun.Tx
}

type nameRow struct {
	ID   int    `bun:"id"`
	Name string `bun:"name"`
}

func (t importTx) names(ctx context.Context, table string) (map[string]int, error) {
	var rows []nameRow
	if err := t.tx.NewSelect().Table(table).Column("id", "name").Scan(ctx, &rows); err != nil {
		return nil, errors.Wrapf(err, "selecting %s", table)
	}

	m := make(map[string]int, len(rows))
	for _, row := range rows {
		m[row.Name] = row.ID
	}
	return m, nil
}

func (t importTx) Lookup(ctx context.Context) (importer.Lookup, error) {
	var (
		l   importer.Lookup
		err error
	)

	if l.Departments, err = t.names(ctx, "dptos"); err != nil {
		return importer.Lookup{}, err
	}
	if l.PersonTypes, err = t.names(ctx, "tipos_persona"); err != nil {
		return importer.Lookup{}, err
	}
	if l.ControlTypes, err = t.names(ctx, "tipo_control"); err != nil {
		return importer.Lookup{}, err
	}

	var codes []string
	if err := t.tx.NewSelect().Table("personas").Column("id").Scan(ctx, &codes); err != nil {
		return importer.Lookup{}, errors.Wrap(err, "selecting person codes")
	}
	l.Persons = make(map[string]bool, len(codes))
	for _, code := range codes {
		l.Persons[code] = true
	}

	return l, nil
}

func (t importTx) CreateDepartments(ctx context.Context, names []string) error {
	rows := make([]entity.Department, 0, len(names))
	for _, name := range names {
		rows = append(rows, entity.Department{Name: name})
	}

	_, err := t.tx.NewInsert().Model(&rows).Exec(ctx)
	return postgresql.Translate(err, "creating departments")
}

func (t importTx) CreatePersons(ctx context.Context, persons []entity.Person) error {
	for i := range persons {
		if persons[i].Photo == "" {
			persons[i].Photo = entity.DefaultPhoto
		}
	}

	_, err := t.tx.NewInsert().Model(&persons).Exec(ctx)
	return postgresql.Translate(err, "creating persons")
}

// UpdatePersons overwrites everything but the code and the photo.
func (t importTx) UpdatePersons(ctx context.Context, persons []entity.Person) error {
	_, err := t.tx.NewUpdate().
		With("_data", t.tx.NewValues(&persons)).
		Model((*entity.Person)(nil)).
		TableExpr("_data").
		Set("full_name = _data.full_name").
		Set("sex = _data.sex").
		Set("department_id = _data.department_id").
		Set("person_type_id = _data.person_type_id").
		Set("control_type_id = _data.control_type_id").
		Where("person.id = _data.id").
		Exec(ctx)

	return postgresql.Translate(err, "updating persons")
}
