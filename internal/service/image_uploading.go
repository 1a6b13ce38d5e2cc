package service

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"lunch/backend/internal/pkg/errs"
)

const (
	PhotoFolder = "photos"
	LogoFolder  = "logos"

	thumbnailSize = 250
)

var photoExtensions = []string{".jpg", ".jpeg", ".png"}

// UploadPhoto decodes a jpeg or png, scales it to fit a 250x250 box and stores
// it as a jpeg. It returns the stored file name.
func (u *Uploader) UploadPhoto(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", errs.New(errs.Validation, "no photo was uploaded")
	}
	if !InArray(strings.ToLower(filepath.Ext(file.Filename)), photoExtensions) {
		return "", errs.New(errs.Validation, "the photo must be a .jpg, .jpeg or .png file")
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening photo")
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return "", errs.Wrap(errs.Validation, err, "the photo could not be decoded")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Thumbnail(img, thumbnailSize), &jpeg.Options{Quality: 85}); err != nil {
		return "", errors.Wrap(err, "encoding thumbnail")
	}

	name := uuid.NewString() + ".jpg"
	if err := os.MkdirAll(u.Dir(PhotoFolder), os.ModePerm); err != nil {
		return "", errors.Wrap(err, "creating photo folder")
	}
	if err := u.write(filepath.Join(u.Dir(PhotoFolder), name), &buf); err != nil {
		return "", err
	}

	return name, nil
}

// Thumbnail scales img down to fit a size x size box keeping its aspect
// ratio. Smaller images are returned untouched.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	return dst
}
