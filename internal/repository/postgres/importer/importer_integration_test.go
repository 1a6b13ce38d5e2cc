//go:build integration

package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/pkg/repository/postgresql/pgtest"
	"lunch/backend/internal/service/importer"
)

func clean(t *testing.T, db *postgresql.Database) {
	t.Helper()

	t.Cleanup(func() {
		pgtest.Exec(t, db, `DELETE FROM personas WHERE id LIKE 'IT-%'`)
		pgtest.Exec(t, db, `DELETE FROM dptos WHERE name LIKE 'IT %'`)
	})
	pgtest.Exec(t, db, `DELETE FROM personas WHERE id LIKE 'IT-%'`)
	pgtest.Exec(t, db, `DELETE FROM dptos WHERE name LIKE 'IT %'`)
}

func person(t *testing.T, db *postgresql.Database, code string) entity.Person {
	t.Helper()

	var p entity.Person
	err := db.NewSelect().Model(&p).Where("id = ?", code).Scan(context.Background())
	require.NoError(t, err)
	return p
}

func TestUpdatePersons(t *testing.T) {
	ctx := context.Background()
	db := pgtest.Open(t)
	clean(t, db)

	repo := NewRepository(db)
	student := pgtest.ID(t, db, "tipos_persona", entity.PersonTypeStudent)
	teacher := pgtest.ID(t, db, "tipos_persona", "Docente")
	regular := pgtest.ID(t, db, "tipo_control", entity.ControlRegular)
	special := pgtest.ID(t, db, "tipo_control", entity.ControlSpecialDiet)

	err := repo.RunInTx(ctx, func(ctx context.Context, tx importer.Tx) error {
		return tx.CreateDepartments(ctx, []string{"IT Primaria", "IT Bachillerato"})
	})
	require.NoError(t, err)

	primaria := pgtest.ID(t, db, "dptos", "IT Primaria")
	bachillerato := pgtest.ID(t, db, "dptos", "IT Bachillerato")

	err = repo.RunInTx(ctx, func(ctx context.Context, tx importer.Tx) error {
		return tx.CreatePersons(ctx, []entity.Person{
			{ID: "IT-1001", FullName: "Ana Gomez", Sex: "F", DepartmentID: primaria, PersonTypeID: student, ControlTypeID: regular},
			{ID: "IT-1002", FullName: "Luis Perez", Sex: "M", DepartmentID: primaria, PersonTypeID: student, ControlTypeID: regular},
		})
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPhoto, person(t, db, "IT-1001").Photo)

	pgtest.Exec(t, db, `UPDATE personas SET photo = 'IT-1001.jpg' WHERE id = 'IT-1001'`)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx importer.Tx) error {
		return tx.UpdatePersons(ctx, []entity.Person{
			{ID: "IT-1001", FullName: "Ana Maria Gomez", Sex: "F", DepartmentID: bachillerato, PersonTypeID: teacher, ControlTypeID: special},
			{ID: "IT-1002", FullName: "Luis Perez Diaz", Sex: "M", DepartmentID: bachillerato, PersonTypeID: student, ControlTypeID: special},
		})
	})
	require.NoError(t, err)

	ana := person(t, db, "IT-1001")
	assert.Equal(t, "Ana Maria Gomez", ana.FullName)
	assert.Equal(t, bachillerato, ana.DepartmentID)
	assert.Equal(t, teacher, ana.PersonTypeID)
	assert.Equal(t, special, ana.ControlTypeID)
	assert.Equal(t, "IT-1001.jpg", ana.Photo)

	luis := person(t, db, "IT-1002")
	assert.Equal(t, "Luis Perez Diaz", luis.FullName)
	assert.Equal(t, bachillerato, luis.DepartmentID)
	assert.Equal(t, entity.DefaultPhoto, luis.Photo)
}

func TestImportRollsBack(t *testing.T) {
	ctx := context.Background()
	db := pgtest.Open(t)
	clean(t, db)

	svc := importer.NewService(NewRepository(db), nil)

	table, err := importer.ReadCSV(strings.NewReader("nombre_dpto\nIT Nuevo\n\nIT Otro\n"), ',')
	require.NoError(t, err)

	report, err := svc.Import(ctx, importer.KindDepartments, table)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Validation))
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Row)

	var n int
	n, err = db.NewSelect().Table("dptos").Where("name LIKE 'IT %'").Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	table, err = importer.ReadCSV(strings.NewReader("nombre_dpto\nIT Nuevo\nIT Otro\n"), ',')
	require.NoError(t, err)

	report, err = svc.Import(ctx, importer.KindDepartments, table)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	text := "id_persona,nombre_persona,sexo,nombre_dpto,nombre_tipopersona,nombre_control\n" +
		"IT-3001,Ana Gomez,F,IT Nuevo,Estudiante,Almuerzo Regular\n" +
		"IT-3002,Luis Perez,M,IT Otro,Estudiante,Almuerzo Regular\n"
	table, err = importer.ReadCSV(strings.NewReader(text), 0)
	require.NoError(t, err)

	report, err = svc.Import(ctx, importer.KindPersons, table)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	table, err = importer.ReadCSV(strings.NewReader(strings.ReplaceAll(text, "Almuerzo Regular", "Dieta Especial")), 0)
	require.NoError(t, err)

	report, err = svc.Import(ctx, importer.KindPersons, table)
	require.NoError(t, err)
	assert.Zero(t, report.Created)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, pgtest.ID(t, db, "tipo_control", entity.ControlSpecialDiet), person(t, db, "IT-3002").ControlTypeID)
}
