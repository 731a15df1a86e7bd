// Package minio stores CML document parts in an S3-compatible bucket, one
// object per custom XML part GUID.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

// ObjectAPI is the subset of the MinIO client used by PartStore.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	ReadObject(ctx context.Context, bucketName, objectName string) ([]byte, error)
}

// Config holds connection and layout settings.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "chem4word-parts"
	}
}

// clientAdapter gives *minio.Client the ReadObject method of ObjectAPI.
type clientAdapter struct {
	*minio.Client
}

// ReadObject reads a whole object.  GetObject is lazy, so the object is
// stat'ed first to surface a missing key.
func (c clientAdapter) ReadObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := c.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return nil, err
	}
	return io.ReadAll(obj)
}

// NewObjectAPI dials MinIO and returns the client behind ObjectAPI.
func NewObjectAPI(cfg Config) (ObjectAPI, error) {
	applyDefaults(&cfg)
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to create minio client")
	}
	return clientAdapter{Client: client}, nil
}

// NewPartStore connects to MinIO and makes sure the bucket exists.
func NewPartStore(ctx context.Context, cfg Config, log logging.Logger) (*PartStore, error) {
	api, err := NewObjectAPI(cfg)
	if err != nil {
		return nil, err
	}
	store := NewPartStoreWithAPI(api, cfg, log)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	store.logger.Info("MinIO part store connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", store.bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return store, nil
}

// EnsureBucket creates the bucket when it is missing.
func (s *PartStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to check bucket existence").WithDetail(s.bucket)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create bucket").WithDetail(s.bucket)
	}
	s.logger.Info("created bucket", logging.String("bucket", s.bucket))
	return nil
}
