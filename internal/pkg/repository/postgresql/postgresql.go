// Package postgresql opens the bun connection used by every repository and
// provides the transaction and error helpers they share.
package postgresql

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"lunch/backend/internal/pkg/errs"
)

type Config struct {
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	DisableTLS bool
	Debug      bool
}

type Database struct {
	*bun.DB
}

// NewDB opens the connection pool and checks it with a ping.
func NewDB(ctx context.Context, cfg Config) (*Database, error) {
	opts := []pgdriver.Option{
		pgdriver.WithAddr(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithTimeout(5 * time.Second),
		pgdriver.WithApplicationName("lunch-backend"),
	}
	if cfg.DisableTLS {
		opts = append(opts, pgdriver.WithInsecure(true))
	} else {
		opts = append(opts, pgdriver.WithTLSConfig(&tls.Config{ServerName: cfg.Host}))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	return &Database{DB: db}, nil
}

// RunInTx runs fn inside a read-committed transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (d *Database) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return d.DB.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// Translate maps driver errors onto errs kinds: no rows becomes NotFound and
// constraint violations become Integrity. Other errors are wrapped with
// message.
func Translate(err error, message string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.NotFound, err, message+": not found")
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return errs.Wrap(errs.Integrity, err, fmt.Sprintf("%s: %s", message, pgErr.Field('M')))
	}

	return errors.Wrap(err, message)
}

// IsUniqueViolation reports whether err is a unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

// Offset converts page/limit into an offset the way every list endpoint does.
func Offset(page, limit, offset *int) int {
	if page != nil && limit != nil && *page > 0 {
		return (*page - 1) * (*limit)
	}
	if offset != nil {
		return *offset
	}
	return 0
}
