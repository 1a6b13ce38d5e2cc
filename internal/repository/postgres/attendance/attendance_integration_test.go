//go:build integration

package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/localtime"
	"lunch/backend/internal/pkg/repository/postgresql/pgtest"
	"lunch/backend/internal/service/registration"
)

type noSettings struct{}

func (noSettings) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func TestCreateRecordSameDay(t *testing.T) {
	ctx := context.Background()
	db := pgtest.Open(t)

	const code = "IT-2001"
	wipe := func() {
		pgtest.Exec(t, db, `DELETE FROM registros WHERE person_id = ?`, code)
		pgtest.Exec(t, db, `DELETE FROM personas WHERE id = ?`, code)
	}
	wipe()
	t.Cleanup(wipe)

	regular := pgtest.ID(t, db, "tipo_control", entity.ControlRegular)
	pgtest.Exec(t, db, `
		INSERT INTO personas (id, full_name, sex, department_id, person_type_id, control_type_id)
		VALUES (?, 'Ana Gomez', 'F', ?, ?, ?)`,
		code, pgtest.ID(t, db, "dptos", "General"), pgtest.ID(t, db, "tipos_persona", entity.PersonTypeStudent), regular)

	repo := NewRepository(db, noSettings{})
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	create := func(at time.Time) (entity.Attendance, error) {
		record := entity.Attendance{PersonID: code, ControlTypeID: regular, CreatedAt: at, LunchDay: day}
		err := repo.RunInTx(ctx, func(ctx context.Context, tx registration.Tx) error {
			return tx.CreateRecord(ctx, &record)
		})
		return record, err
	}

	first, err := create(time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = create(time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Integrity))

	n, err := db.NewSelect().Table("registros").Where("person_id = ?", code).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entry, err := repo.RecordByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, code, entry.PersonCode)
	assert.Equal(t, "General", entry.Department)
	assert.Equal(t, entity.ControlRegular, entry.ControlType)
}

func TestRegisterTwice(t *testing.T) {
	ctx := context.Background()
	db := pgtest.Open(t)

	const code = "IT-2002"
	wipe := func() {
		pgtest.Exec(t, db, `DELETE FROM registros WHERE person_id = ?`, code)
		pgtest.Exec(t, db, `DELETE FROM personas WHERE id = ?`, code)
	}
	wipe()
	t.Cleanup(wipe)

	pgtest.Exec(t, db, `
		INSERT INTO personas (id, full_name, sex, department_id, person_type_id, control_type_id)
		VALUES (?, 'Luis Perez', 'M', ?, ?, ?)`,
		code, pgtest.ID(t, db, "dptos", "General"), pgtest.ID(t, db, "tipos_persona", entity.PersonTypeStudent),
		pgtest.ID(t, db, "tipo_control", entity.ControlRegular))

	zone := localtime.Fixed(time.FixedZone("COT", -5*60*60))
	svc := registration.NewService(NewRepository(db, noSettings{}), zone, nil)

	res, err := svc.Register(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "Luis Perez", res.PersonName)
	assert.False(t, res.PrintTicket)

	_, err = svc.Register(ctx, code)
	require.ErrorIs(t, err, registration.ErrAlreadyRegisteredToday)
}
