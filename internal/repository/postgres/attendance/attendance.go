// Package attendance is the bun implementation of the lunch ledger used by
// the registration service.
package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/service/registration"
)

type Repository struct {
	*postgresql.Database
	settings Settings
}

func NewRepository(database *postgresql.Database, settings Settings) *Repository {
	return &Repository{Database: database, settings: settings}
}

var _ registration.Store = (*Repository)(nil)

func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx registration.Tx) error) error {
	return r.Database.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, ledgerTx{tx})
	})
}

func (r *Repository) Setting(ctx context.Context, key string) (string, bool, error) {
	return r.settings.Get(ctx, key)
}

func entryQuery(db bun.IDB) *bun.SelectQuery {
	return db.NewSelect().
		TableExpr("registros AS r").
		ColumnExpr("r.id, r.created_at").
		ColumnExpr("p.id AS person_code, p.full_name AS person_name").
		ColumnExpr("d.name AS department, tc.name AS control_type").
		Join("JOIN personas AS p ON p.id = r.person_id").
		Join("JOIN dptos AS d ON d.id = p.department_id").
		Join("JOIN tipo_control AS tc ON tc.id = r.control_type_id")
}

func (r *Repository) RecordsSince(ctx context.Context, since time.Time, limit int) ([]registration.Entry, error) {
	var rows []entryRow

	err := entryQuery(r.DB).
		Where("r.created_at >= ?", since).
		OrderExpr("r.created_at DESC, r.id DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "selecting records")
	}

	list := make([]registration.Entry, 0, len(rows))
	for _, row := range rows {
		list = append(list, registration.Entry(row))
	}

	return list, nil
}

func (r *Repository) RecordByID(ctx context.Context, id int) (registration.Entry, error) {
	var row entryRow

	if err := entryQuery(r.DB).Where("r.id = ?", id).Scan(ctx, &row); err != nil {
		return registration.Entry{}, postgresql.Translate(err, "record")
	}

	return registration.Entry(row), nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id int) error {
	res, err := r.NewDelete().Model((*entity.Attendance)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.New(errs.NotFound, "record not found")
	}

	return nil
}

type ledgerTx struct {
	tx bun.Tx
}

func (t ledgerTx) PersonByCode(ctx context.Context, code string) (registration.Person, error) {
	var row personRow

	err := t.tx.NewSelect().
		TableExpr("personas AS p").
		ColumnExpr("p.id, p.full_name, p.control_type_id").
		ColumnExpr("d.name AS department, tc.name AS control_type").
		Join("JOIN dptos AS d ON d.id = p.department_id").
		Join("JOIN tipo_control AS tc ON tc.id = p.control_type_id").
		Where("p.id = ?", code).
		Scan(ctx, &row)
	if err != nil {
		return registration.Person{}, postgresql.Translate(err, "person")
	}

	return registration.Person(row), nil
}

func (t ledgerTx) HasRecordSince(ctx context.Context, code string, since time.Time) (bool, error) {
	return t.tx.NewSelect().
		Model((*entity.Attendance)(nil)).
		Where("person_id = ?", code).
		Where("created_at >= ?", since).
		Exists(ctx)
}

func (t ledgerTx) CreateRecord(ctx context.Context, record *entity.Attendance) error {
	_, err := t.tx.NewInsert().Model(record).Returning("id").Exec(ctx)
	return postgresql.Translate(err, "creating record")
}
