// Package postgres holds the helpers shared by the bun repositories.
package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
)

var ErrNotFound = errs.New(errs.NotFound, "not found")

// ListFilter pages and searches the reference tables.
type ListFilter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsForeignKeyViolation reports whether err is a foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == codeForeignKeyViolation
}

// Constraint returns the violated constraint name carried by err, if any.
func Constraint(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('n')
	}
	return ""
}

// Pagination renders the LIMIT/OFFSET clause of a list query.
func Pagination(limit, offset, page *int) string {
	var q string
	if limit != nil {
		q += fmt.Sprintf(" LIMIT %d", *limit)
	}
	if off := postgresql.Offset(page, limit, offset); off > 0 {
		q += fmt.Sprintf(" OFFSET %d", off)
	}
	return q
}

// Like wraps a search term for ILIKE.
func Like(search string) string {
	return "%" + search + "%"
}

// DeleteByID removes the row id from table. A missing row is NotFound and a
// row still referenced elsewhere is a Conflict naming what.
func DeleteByID(ctx context.Context, db bun.IDB, table string, id interface{}, what string) error {
	res, err := db.NewDelete().TableExpr(table).Where("id = ?", id).Exec(ctx)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return errs.Wrap(errs.Conflict, err, fmt.Sprintf("%s is in use and cannot be deleted", what))
		}
		return errors.Wrapf(err, "deleting %s", what)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return errs.Newf(errs.NotFound, "%s not found", what)
	}

	return nil
}

// NameTaken converts a unique violation on a name column into a Conflict.
func NameTaken(err error, what, name string) error {
	if postgresql.IsUniqueViolation(err) {
		return errs.Wrap(errs.Conflict, err, fmt.Sprintf("%s %q already exists", what, name))
	}
	return err
}
