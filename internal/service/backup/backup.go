// Package backup dumps the database into gzip compressed SQL files and
// restores it from them.
package backup

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"lunch/backend/internal/pkg/errs"
)

// Ext is the suffix every backup file carries.
const Ext = ".sql.gz"

const nameLayout = "backup_2006-01-02_15-04-05"

// Runner produces and replays plain SQL dumps.
type Runner interface {
	Dump(ctx context.Context, w io.Writer) error
	Restore(ctx context.Context, r io.Reader) error
}

// Mirror receives a copy of every backup written to the backup folder.
type Mirror interface {
	Put(ctx context.Context, path string) error
}

// Info describes a backup stored on the server.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type Service struct {
	dir    string
	runner Runner
	mirror Mirror
	now    func() time.Time
	log    *log.Logger
}

type Option func(*Service)

// WithMirror copies new server backups to m.
func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(dir string, runner Runner, log *log.Logger, opts ...Option) *Service {
	s := &Service{
		dir:    dir,
		runner: runner,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the backups in the folder, newest name first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, errors.Wrap(err, "reading backup folder")
	}

	list := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", e.Name())
		}
		list = append(list, Info{Name: e.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name > list[j].Name })

	return list, nil
}

// Filename returns the backup name for t.
func (s *Service) Filename(t time.Time) string {
	return t.Format(nameLayout) + Ext
}

// Create writes a new backup into the folder and returns its name.
func (s *Service) Create(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "creating backup folder")
	}

	name := s.Filename(s.now())
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating backup file")
	}

	if err := s.dump(ctx, out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", errors.Wrap(err, "closing backup file")
	}

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, path); err != nil {
			s.log.Printf("backup: mirroring %s: %v", name, err)
		}
	}

	return name, nil
}

// Download dumps the database into memory and returns the compressed bytes
// with a file name for the attachment.
func (s *Service) Download(ctx context.Context) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := s.dump(ctx, &buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), s.Filename(s.now()), nil
}

// RestoreUpload replays an uploaded backup.
func (s *Service) RestoreUpload(ctx context.Context, filename string, r io.Reader) error {
	if !strings.HasSuffix(strings.ToLower(filename), Ext) {
		return errs.Newf(errs.Validation, "invalid backup file, expected a %s file", Ext)
	}
	return s.restore(ctx, r)
}

// RestoreFile replays a backup stored in the folder.
func (s *Service) RestoreFile(ctx context.Context, name string) error {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || !strings.HasSuffix(name, Ext) {
		return errs.New(errs.Validation, "invalid backup name")
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return errs.Newf(errs.NotFound, "backup %s not found", name)
		}
		return errors.Wrap(err, "opening backup")
	}
	defer f.Close()

	return s.restore(ctx, f)
}

func (s *Service) dump(ctx context.Context, w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := s.runner.Dump(ctx, zw); err != nil {
		_ = zw.Close()
		return errors.Wrap(err, "dumping database")
	}
	return errors.Wrap(zw.Close(), "compressing backup")
}

func (s *Service) restore(ctx context.Context, r io.Reader) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return errs.Wrap(errs.Validation, err, "the backup is not a valid gzip file")
	}
	defer zr.Close()

	if err := s.runner.Restore(ctx, zr); err != nil {
		return errors.Wrap(err, "restoring database")
	}
	return nil
}
