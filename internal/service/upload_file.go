package service

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"lunch/backend/internal/pkg/errs"
)

func InArray[T comparable](val T, array []T) bool {
	for _, v := range array {
		if val == v {
			return true
		}
	}
	return false
}

// Uploader stores files under baseDir/folder with random names.
type Uploader struct {
	baseDir string
	log     *log.Logger
}

func NewUploader(baseDir string, log *log.Logger) *Uploader {
	return &Uploader{baseDir: baseDir, log: log}
}

// Dir returns the absolute folder of folder.
func (u *Uploader) Dir(folder string) string {
	return filepath.Join(u.baseDir, folder)
}

// Upload copies file into folder when its extension is one of allowed and
// returns the stored file name.
func (u *Uploader) Upload(file *multipart.FileHeader, folder string, allowed []string) (string, error) {
	if file == nil {
		return "", errs.New(errs.Validation, "no file was uploaded")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !InArray(ext, allowed) {
		return "", errs.Newf(errs.Validation, "invalid file type, expected one of %v, got %q", allowed, ext)
	}

	targetPath := u.Dir(folder)
	if err := os.MkdirAll(targetPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "creating upload folder")
	}

	name := uuid.NewString() + ext

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			u.log.Println("file upload src.Close() error:", closeErr)
		}
	}()

	if err := u.write(filepath.Join(targetPath, name), src); err != nil {
		return "", err
	}

	return name, nil
}

// Remove deletes name from folder. Missing files and the default photo are
// ignored.
func (u *Uploader) Remove(folder, name string) {
	if name == "" || strings.HasPrefix(name, "default") {
		return
	}
	if err := os.Remove(filepath.Join(u.Dir(folder), filepath.Base(name))); err != nil && !os.IsNotExist(err) {
		u.log.Printf("removing %s/%s: %v", folder, name, err)
	}
}

func (u *Uploader) write(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			u.log.Println("file upload out.Close() error:", closeErr)
		}
	}()

	if _, err = io.Copy(out, src); err != nil {
		return errors.Wrap(err, fmt.Sprintf("writing %s", filepath.Base(path)))
	}

	return nil
}
