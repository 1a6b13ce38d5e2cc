package backup

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Conn holds what pg_dump and psql need to reach the database.
type Conn struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// PgRunner shells out to pg_dump and psql.
type PgRunner struct {
	conn    Conn
	pgDump  string
	psql    string
	execCmd func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewPgRunner(conn Conn, pgDump, psql string) *PgRunner {
	return &PgRunner{
		conn:    conn,
		pgDump:  pgDump,
		psql:    psql,
		execCmd: exec.CommandContext,
	}
}

func (p *PgRunner) Dump(ctx context.Context, w io.Writer) error {
	cmd := p.command(ctx, p.pgDump,
		"--clean", "--if-exists", "--no-owner", "--no-privileges",
	)
	cmd.Stdout = w
	return run(cmd)
}

func (p *PgRunner) Restore(ctx context.Context, r io.Reader) error {
	cmd := p.command(ctx, p.psql, "--quiet", "--set", "ON_ERROR_STOP=1")
	cmd.Stdin = r
	cmd.Stdout = io.Discard
	return run(cmd)
}

func (p *PgRunner) command(ctx context.Context, bin string, args ...string) *exec.Cmd {
	args = append([]string{
		"-h", p.conn.Host,
		"-p", p.conn.Port,
		"-U", p.conn.User,
		"-d", p.conn.Name,
	}, args...)

	cmd := p.execCmd(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+p.conn.Password)
	return cmd
}

func run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return errors.Wrapf(err, "running %s", cmd.Path)
		}
		return errors.Wrapf(err, "running %s: %s", cmd.Path, msg)
	}
	return nil
}
