// Package report filters the lunch ledger for the report screen and the
// spreadsheet export.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/localtime"
	"lunch/backend/internal/pkg/repository/postgresql"
)

type Repository struct {
	*postgresql.Database
	zone localtime.Zone
}

func NewRepository(database *postgresql.Database, zone localtime.Zone) *Repository {
	return &Repository{Database: database, zone: zone}
}

// Where builds the WHERE clause and its arguments for filter.
func (r Repository) Where(filter Filter) (string, []interface{}, error) {
	var (
		conditions []string
		args       []interface{}
	)

	switch filter.Type {
	case "", TypePerson, TypeControlType, TypeDepartment, TypePersonType:
	default:
		return "", nil, errs.Newf(errs.Validation, "unknown report type %q", filter.Type)
	}

	if filter.From != nil {
		start, _ := r.zone.DayRange(filter.From.ToTime(), filter.From.ToTime())
		conditions = append(conditions, "r.created_at >= ?")
		args = append(args, start)
	}
	if filter.To != nil {
		_, end := r.zone.DayRange(filter.To.ToTime(), filter.To.ToTime())
		conditions = append(conditions, "r.created_at < ?")
		args = append(args, end)
	}

	filterID := strings.TrimSpace(filter.FilterID)
	if filterID != "" {
		switch filter.Type {
		case TypePerson:
			conditions = append(conditions, "r.person_id = ?")
			args = append(args, filterID)
		case TypeControlType, TypeDepartment, TypePersonType:
			id, err := strconv.Atoi(filterID)
			if err != nil {
				return "", nil, errs.Newf(errs.Validation, "filter id %q must be a number", filterID)
			}
			column := map[string]string{
				TypeControlType: "r.control_type_id",
				TypeDepartment:  "p.department_id",
				TypePersonType:  "p.person_type_id",
			}[filter.Type]
			conditions = append(conditions, column+" = ?")
			args = append(args, id)
		}
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}

	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, error) {
	whereQuery, args, err := r.Where(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			r.id,
			r.created_at,
			p.id,
			p.full_name,
			d.name,
			tp.name,
			tc.name
		FROM registros r
		JOIN personas p ON p.id = r.person_id
		JOIN dptos d ON d.id = p.department_id
		JOIN tipos_persona tp ON tp.id = p.person_type_id
		JOIN tipo_control tc ON tc.id = r.control_type_id
		%s
		ORDER BY r.created_at DESC, r.id DESC
	`, whereQuery)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting report")
	}
	defer rows.Close()

	list := make([]GetListResponse, 0)
	for rows.Next() {
		var (
			detail    GetListResponse
			createdAt time.Time
		)
		if err := rows.Scan(
			&detail.ID,
			&createdAt,
			&detail.PersonCode,
			&detail.PersonName,
			&detail.Department,
			&detail.PersonType,
			&detail.ControlType); err != nil {
			return nil, errors.Wrap(err, "scanning report")
		}

		detail.CreatedAt = createdAt
		detail.Timestamp = r.zone.Format(createdAt)
		list = append(list, detail)
	}

	return list, errors.Wrap(rows.Err(), "scanning report")
}
