//go:build integration

// Package pgtest connects integration tests to a migrated database. The
// connection comes from the LUNCH_DB_* environment variables the api reads;
// tests are skipped when LUNCH_DB_HOST is unset.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/commands"
	"lunch/backend/internal/pkg/config"
	"lunch/backend/internal/pkg/repository/postgresql"
)

type dbConfig struct {
	DB struct {
		Username   string `conf:"default:postgres"`
		Password   string `conf:"default:postgres,noprint"`
		Host       string
		Port       string `conf:"default:5432"`
		Name       string `conf:"default:lunch_test"`
		DisableTLS bool   `conf:"default:true"`
		Debug      bool
	}
}

// Open returns a connection to a database migrated to the latest scheme.
func Open(t *testing.T) *postgresql.Database {
	t.Helper()

	var cfg dbConfig
	require.NoError(t, conf.Parse(nil, config.Namespace, &cfg))
	if cfg.DB.Host == "" {
		t.Skip(config.Namespace + "_DB_HOST is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgresql.NewDB(ctx, postgresql.Config{
		User:       cfg.DB.Username,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Port:       cfg.DB.Port,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
		Debug:      cfg.DB.Debug,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, commands.MigrateUP(ctx, db))

	return db
}

// Exec runs query and fails the test on error.
func Exec(t *testing.T, db *postgresql.Database, query string, args ...interface{}) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}

// ID returns the id of the row of table named name.
func ID(t *testing.T, db *postgresql.Database, table, name string) int {
	t.Helper()

	var id int
	err := db.NewSelect().Table(table).Column("id").Where("name = ?", name).Scan(context.Background(), &id)
	require.NoError(t, err)
	return id
}
