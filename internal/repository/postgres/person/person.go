package person

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/repository/postgres"
)

const (
	minSearchLength = 3
	maxSearchResult = 20
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

const selectColumns = `
		SELECT
			p.id,
			p.full_name,
			p.sex,
			p.department_id,
			d.name,
			p.person_type_id,
			tp.name,
			p.control_type_id,
			tc.name,
			p.photo
		FROM personas p
		JOIN dptos d ON d.id = p.department_id
		JOIN tipos_persona tp ON tp.id = p.person_type_id
		JOIN tipo_control tc ON tc.id = p.control_type_id
`

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	whereQuery := "WHERE TRUE"
	var args []interface{}

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereQuery += " AND (p.id ILIKE ? OR p.full_name ILIKE ?)"
		search := postgres.Like(strings.TrimSpace(*filter.Search))
		args = append(args, search, search)
	}
	if filter.DepartmentID != nil {
		whereQuery += " AND p.department_id = ?"
		args = append(args, *filter.DepartmentID)
	}

	query := fmt.Sprintf(`%s %s ORDER BY p.full_name ASC %s`,
		selectColumns, whereQuery, postgres.Pagination(filter.Limit, filter.Offset, filter.Page))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "selecting persons")
	}
	defer rows.Close()

	list := make([]GetListResponse, 0)
	for rows.Next() {
		var d GetDetailByIdResponse
		if err := scan(rows, &d); err != nil {
			return nil, 0, errors.Wrap(err, "scanning person list")
		}
		list = append(list, GetListResponse{
			ID:          d.ID,
			FullName:    d.FullName,
			Sex:         d.Sex,
			Department:  d.Department,
			PersonType:  d.PersonType,
			ControlType: d.ControlType,
			Photo:       d.Photo,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "scanning person list")
	}

	var count int
	countQuery := fmt.Sprintf(`SELECT count(p.id) FROM personas p %s`, whereQuery)
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, errors.Wrap(err, "counting persons")
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id string) (GetDetailByIdResponse, error) {
	var detail GetDetailByIdResponse

	err := scan(r.QueryRowContext(ctx, selectColumns+" WHERE p.id = ?", id), &detail)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, errs.Wrap(errs.NotFound, err, "person not found")
	}
	if err != nil {
		return GetDetailByIdResponse{}, errors.Wrap(err, "selecting person detail")
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (entity.Person, error) {
	p := entity.Person{
		ID:            strings.TrimSpace(request.ID),
		FullName:      strings.TrimSpace(request.FullName),
		DepartmentID:  request.DepartmentID,
		PersonTypeID:  request.PersonTypeID,
		ControlTypeID: request.ControlTypeID,
		Photo:         entity.DefaultPhoto,
	}

	sex, ok := entity.NormalizeSex(request.Sex)
	if !ok {
		return entity.Person{}, errs.Newf(errs.Validation, "sex (%q) must be 'M' or 'F'", request.Sex)
	}
	p.Sex = sex

	if _, err := r.NewInsert().Model(&p).Exec(ctx); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return entity.Person{}, errs.Wrap(errs.Conflict, err, fmt.Sprintf("a person with code %q already exists", p.ID))
		}
		if postgres.IsForeignKeyViolation(err) {
			return entity.Person{}, errs.Wrap(errs.Validation, err, "department, person type or control type does not exist")
		}
		return entity.Person{}, errors.Wrap(err, "creating person")
	}

	return p, nil
}

// Update overwrites every field but the code, which is immutable.
func (r Repository) Update(ctx context.Context, request UpdateRequest) error {
	sex, ok := entity.NormalizeSex(request.Sex)
	if !ok {
		return errs.Newf(errs.Validation, "sex (%q) must be 'M' or 'F'", request.Sex)
	}

	q := r.NewUpdate().Table("personas").Where("id = ?", request.ID)
	q.Set("full_name = ?", strings.TrimSpace(request.FullName))
	q.Set("sex = ?", sex)
	q.Set("department_id = ?", request.DepartmentID)
	q.Set("person_type_id = ?", request.PersonTypeID)
	q.Set("control_type_id = ?", request.ControlTypeID)

	res, err := q.Exec(ctx)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return errs.Wrap(errs.Validation, err, "department, person type or control type does not exist")
		}
		return errors.Wrap(err, "updating person")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.New(errs.NotFound, "person not found")
	}

	return nil
}

func (r Repository) UpdatePhoto(ctx context.Context, id, photo string) (previous string, err error) {
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Table("personas").Column("photo").Where("id = ?", id).For("UPDATE").Scan(ctx, &previous); err != nil {
			return postgresql.Translate(err, "person")
		}
		_, err := tx.NewUpdate().Table("personas").Set("photo = ?", photo).Where("id = ?", id).Exec(ctx)
		return errors.Wrap(err, "updating person photo")
	})

	return previous, err
}

// Delete refuses to remove a person who already has ledger entries.
func (r Repository) Delete(ctx context.Context, id string) error {
	return r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var name string
		err := tx.NewSelect().Table("personas").Column("full_name").Where("id = ?", id).Scan(ctx, &name)
		if err != nil {
			return postgresql.Translate(err, "person")
		}

		taken, err := tx.NewSelect().Table("registros").Where("person_id = ?", id).Exists(ctx)
		if err != nil {
			return errors.Wrap(err, "checking person records")
		}
		if taken {
			return errs.Newf(errs.Conflict, "%s cannot be deleted because they have lunch records", name)
		}

		return postgres.DeleteByID(ctx, tx, "personas", id, "person")
	})
}

// Search matches persons by name or code for the registration screen.
// Terms shorter than three characters return nothing.
func (r Repository) Search(ctx context.Context, term string) ([]SearchResult, error) {
	list := make([]SearchResult, 0)

	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchLength {
		return list, nil
	}

	err := r.NewSelect().
		TableExpr("personas AS p").
		Join("JOIN dptos AS d ON d.id = p.department_id").
		ColumnExpr("p.id, p.full_name, d.name AS department").
		Where("p.full_name ILIKE ? OR p.id ILIKE ?", postgres.Like(term), postgres.Like(term)).
		OrderExpr("p.full_name ASC").
		Limit(maxSearchResult).
		Scan(ctx, &list)
	if err != nil {
		return nil, errors.Wrap(err, "searching persons")
	}

	return list, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(row scanner, d *GetDetailByIdResponse) error {
	return row.Scan(
		&d.ID,
		&d.FullName,
		&d.Sex,
		&d.DepartmentID,
		&d.Department,
		&d.PersonTypeID,
		&d.PersonType,
		&d.ControlTypeID,
		&d.ControlType,
		&d.Photo,
	)
}
