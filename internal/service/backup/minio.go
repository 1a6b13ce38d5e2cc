package backup

import (
	"context"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// MinioConfig locates the bucket backups are copied to.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioMirror uploads backups to an S3 compatible bucket.
type MinioMirror struct {
	client *minio.Client
	bucket string
}

// NewMinioMirror connects to the endpoint and creates the bucket when it
// does not exist yet.
func NewMinioMirror(ctx context.Context, cfg MinioConfig) (*MinioMirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "checking bucket %s", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "creating bucket %s", cfg.Bucket)
		}
	}

	return &MinioMirror{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinioMirror) Put(ctx context.Context, path string) error {
	_, err := m.client.FPutObject(ctx, m.bucket, filepath.Base(path), path, minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	return errors.Wrap(err, "uploading backup")
}
