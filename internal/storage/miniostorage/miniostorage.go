// Package miniostorage provides read-only access to source images kept in a minio bucket
package miniostorage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint string
	User     string
	Pass     string
	Bucket   string
	Secure   bool
}

type MinioSourceStore struct {
	bucket string
	client *minio.Client
}

func NewMinioClient(ctx context.Context, opts Options) (*MinioSourceStore, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("empty minio endpoint")
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.User, opts.Pass, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, err
	}

	// бакет не создаем - хранилище только читаем, его наполняет кто-то другой
	exists, err := strg.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", opts.Bucket)
	}

	return &MinioSourceStore{bucket: opts.Bucket, client: strg}, nil
}

// Get returns the object stream and its content type; a missing key is reported here, not on first read.
func (s *MinioSourceStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	res, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}

	resStat, err := res.Stat()
	if err != nil {
		if cErr := res.Close(); cErr != nil {
			return nil, "", errors.Join(err, cErr)
		}
		return nil, "", err
	}

	return res, resStat.ContentType, nil
}
