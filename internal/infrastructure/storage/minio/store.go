package minio

import (
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

const (
	contentTypeCML = "chemical/x-cml"
	objectSuffix   = ".cml"
)

// PartInfo describes a stored part.
type PartInfo struct {
	GUID         string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

// PartStore keeps CML text keyed by custom XML part GUID.
type PartStore struct {
	api    ObjectAPI
	bucket string
	prefix string
	region string
	logger logging.Logger
}

// NewPartStoreWithAPI builds a store over an existing ObjectAPI.
func NewPartStoreWithAPI(api ObjectAPI, cfg Config, log logging.Logger) *PartStore {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PartStore{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		region: cfg.Region,
		logger: log,
	}
}

// Bucket returns the bucket name.
func (s *PartStore) Bucket() string { return s.bucket }

func (s *PartStore) objectKey(guid string) (string, error) {
	guid = strings.TrimSpace(guid)
	if guid == "" || strings.ContainsAny(guid, "/\\") {
		return "", errors.InvalidParam("invalid part GUID").WithDetail(guid)
	}
	return s.prefix + guid + objectSuffix, nil
}

func (s *PartStore) guidFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) || !strings.HasSuffix(key, objectSuffix) {
		return "", false
	}
	guid := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), objectSuffix)
	return guid, guid != "" && !strings.Contains(guid, "/")
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

// Put writes the CML text of a part, replacing any previous version.
func (s *PartStore) Put(ctx context.Context, guid, cml string, meta map[string]string) error {
	key, err := s.objectKey(guid)
	if err != nil {
		return err
	}
	_, err = s.api.PutObject(ctx, s.bucket, key, strings.NewReader(cml), int64(len(cml)), minio.PutObjectOptions{
		ContentType:  contentTypeCML,
		UserMetadata: meta,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "upload failed").WithDetail(guid)
	}
	s.logger.Debug("part stored", logging.PartGUID(guid), logging.Int("bytes", len(cml)))
	return nil
}

// Get reads the CML text of a part.  A missing part is STORE_001.
func (s *PartStore) Get(ctx context.Context, guid string) (string, error) {
	key, err := s.objectKey(guid)
	if err != nil {
		return "", err
	}
	data, err := s.api.ReadObject(ctx, s.bucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return "", errors.New(errors.CodePartNotFound, "document part not found").WithDetail(guid)
		}
		return "", errors.Wrap(err, errors.CodeStorage, "download failed").WithDetail(guid)
	}
	return string(data), nil
}

// Exists reports whether a part is stored.
func (s *PartStore) Exists(ctx context.Context, guid string) (bool, error) {
	key, err := s.objectKey(guid)
	if err != nil {
		return false, err
	}
	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CodeStorage, "stat failed").WithDetail(guid)
	}
	return true, nil
}

// Delete removes a part.  Deleting a missing part is STORE_001.
func (s *PartStore) Delete(ctx context.Context, guid string) error {
	exists, err := s.Exists(ctx, guid)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New(errors.CodePartNotFound, "document part not found").WithDetail(guid)
	}
	key, _ := s.objectKey(guid)
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "delete failed").WithDetail(guid)
	}
	s.logger.Debug("part deleted", logging.PartGUID(guid))
	return nil
}

// List returns the stored parts.  Objects under the prefix that do not look
// like parts are skipped.
func (s *PartStore) List(ctx context.Context) ([]PartInfo, error) {
	ch := s.api.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true})
	var parts []PartInfo
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.CodeStorage, "list failed")
		}
		guid, ok := s.guidFromKey(obj.Key)
		if !ok {
			continue
		}
		parts = append(parts, PartInfo{
			GUID:         guid,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			Metadata:     obj.UserMetadata,
		})
	}
	return parts, nil
}
