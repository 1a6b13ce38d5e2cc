package commands

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/repository/postgresql"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create tables: roles, users.",
		Query: `
        CREATE TABLE IF NOT EXISTS roles (
            id serial primary key,
            name varchar(50) not null unique
        );
        CREATE TABLE IF NOT EXISTS users (
            id serial primary key,
            username varchar(80) not null unique,
            password text not null,
            role_id int not null references roles(id)
        );`,
	},
	{
		Index:       2,
		Description: "Create reference tables: dptos, tipos_persona, tipo_control.",
		Query: `
        CREATE TABLE IF NOT EXISTS dptos (
            id serial primary key,
            name text not null unique
        );
        CREATE TABLE IF NOT EXISTS tipos_persona (
            id serial primary key,
            name text not null unique
        );
        CREATE TABLE IF NOT EXISTS tipo_control (
            id serial primary key,
            name text not null unique
        );`,
	},
	{
		Index:       3,
		Description: "Create table: personas.",
		Query: `
        CREATE TABLE IF NOT EXISTS personas (
            id varchar(20) primary key,
            full_name text not null,
            sex char(1) not null check (sex in ('M', 'F')),
            department_id int not null references dptos(id),
            person_type_id int not null references tipos_persona(id),
            control_type_id int not null references tipo_control(id),
            photo text not null default 'default.jpg'
        );
        CREATE INDEX IF NOT EXISTS personas_full_name_idx ON personas (full_name);`,
	},
	{
		Index:       4,
		Description: "Create table: registros, one row per person and lunch day.",
		Query: `
        CREATE TABLE IF NOT EXISTS registros (
            id serial primary key,
            person_id varchar(20) not null references personas(id),
            control_type_id int not null references tipo_control(id),
            created_at timestamptz not null default now(),
            lunch_day date not null,
            CONSTRAINT registros_person_day_key UNIQUE (person_id, lunch_day)
        );
        CREATE INDEX IF NOT EXISTS registros_created_at_idx ON registros (created_at DESC);`,
	},
	{
		Index:       5,
		Description: "Create table: settings.",
		Query: `
        CREATE TABLE IF NOT EXISTS settings (
            key varchar(50) primary key,
            value varchar(255) not null default ''
        );`,
	},
	{
		Index:       6,
		Description: "Seed roles and reference data.",
		Query: `
        INSERT INTO roles (name) VALUES ('Administrador'), ('Operador')
        ON CONFLICT (name) DO NOTHING;
        INSERT INTO tipos_persona (name) VALUES ('Estudiante'), ('Docente'), ('Administrativo')
        ON CONFLICT (name) DO NOTHING;
        INSERT INTO tipo_control (name) VALUES ('Almuerzo Regular'), ('Dieta Especial'), ('No Aplica')
        ON CONFLICT (name) DO NOTHING;
        INSERT INTO dptos (name) VALUES ('General')
        ON CONFLICT (name) DO NOTHING;`,
	},
	{
		Index:       7,
		Description: "Seed settings.",
		Query: `
        INSERT INTO settings (key, value) VALUES
            ('IMPRIME_TICKETS', 'false'),
            ('NOMBRE_COLEGIO', 'Colegio Privado'),
            ('LOGO_FILENAME', '')
        ON CONFLICT (key) DO NOTHING;`,
	},
}

// MigrateUP applies every scheme step newer than the recorded version. A
// step that failed is retried first.
func MigrateUP(ctx context.Context, db *postgresql.Database) error {
	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRowContext(ctx, "SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		if !strings.Contains(err.Error(), "42P01") {
			return errors.Wrap(err, "migrate schema_migrations scan")
		}
		if _, err = db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
			return errors.Wrap(err, "migrate schema_migrations create")
		}
		version = 0
		dirty = false
	}

	for _, s := range scheme {
		if s.Index < version || (s.Index == version && !dirty) {
			continue
		}

		if _, err = db.ExecContext(ctx, s.Query); err != nil {
			if _, uerr := db.ExecContext(ctx, `UPDATE schema_migrations SET error = ?, version = ?, dirty = true`, err.Error(), s.Index); uerr != nil {
				return errors.Wrap(uerr, "migrate error")
			}
			return errors.Wrapf(err, "migrate version %d (%s)", s.Index, s.Description)
		}
		if _, err = db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = false, error = null`, s.Index); err != nil {
			return errors.Wrap(err, "migrate error")
		}
	}

	return SeedAdmin(ctx, db)
}

// SeedAdmin creates the admin/admin account when no user with that name
// exists.
func SeedAdmin(ctx context.Context, db *postgresql.Database) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing admin password")
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO users (username, password, role_id)
        SELECT 'admin', ?, r.id FROM roles r
        WHERE r.name = ? AND NOT EXISTS (SELECT 1 FROM users WHERE username = 'admin')`,
		string(hash), entity.RoleAdmin)

	return errors.Wrap(err, "seeding admin user")
}
