//go:build integration

package person

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/repository/postgresql/pgtest"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	db := pgtest.Open(t)

	wipe := func() { pgtest.Exec(t, db, `DELETE FROM personas WHERE id LIKE 'IT-4%'`) }
	wipe()
	t.Cleanup(wipe)

	pgtest.Exec(t, db, `
		INSERT INTO personas (id, full_name, sex, department_id, person_type_id, control_type_id)
		VALUES ('IT-4001', 'Zuleima Integracion', 'F', ?, ?, ?)`,
		pgtest.ID(t, db, "dptos", "General"), pgtest.ID(t, db, "tipos_persona", entity.PersonTypeStudent),
		pgtest.ID(t, db, "tipo_control", entity.ControlRegular))

	repo := NewRepository(db)

	list, err := repo.Search(ctx, "zuleima integ")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, SearchResult{ID: "IT-4001", FullName: "Zuleima Integracion", Department: "General"}, list[0])

	list, err = repo.Search(ctx, "IT-400")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "General", list[0].Department)

	list, err = repo.Search(ctx, "zu")
	require.NoError(t, err)
	assert.Empty(t, list)
}
