package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bgpiesa-backend/internal/config"
	"bgpiesa-backend/pkg/logger"
)

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

// MinIOStore keeps assets in an S3 compatible bucket.
// Keys are {kind}/upload/{folder}/{name}{ext} so that retrieval URLs
// follow the same shape ParseAssetURL understands.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, publicURL string) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &MinIOStore{client: client, bucket: cfg.Bucket, publicURL: publicURL}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", map[string]interface{}{"bucket": s.bucket})
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

// Upload sniffs the content type, stores the object and returns its public URL
func (s *MinIOStore) Upload(ctx context.Context, content io.Reader, folder, namePrefix string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	mt := mimetype.Detect(data)
	ext := mt.Extension()
	if ext == "" {
		ext = ".bin"
	}
	kind := kindFromMIME(mt.String())
	key := path.Join(string(kind), "upload", folder, UniqueName(namePrefix)) + ext

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mt.String()})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	logger.Info("asset uploaded", map[string]interface{}{
		"key":  key,
		"type": mt.String(),
		"size": humanize.Bytes(uint64(len(data))),
	})

	return s.publicURL + "/" + key, nil
}

// Delete removes every object stored under the identifier parsed from url.
// Failures are logged and dropped.
func (s *MinIOStore) Delete(ctx context.Context, url string) {
	if !s.IsManaged(url) {
		return
	}

	identifier, kind, ok := ParseAssetURL(url)
	if !ok {
		logger.Debug("asset url not parseable, skipping delete", map[string]interface{}{"url": url})
		return
	}

	kinds := []Kind{kind}
	if kind == KindAuto {
		kinds = []Kind{KindImage, KindVideo, KindRaw}
	}

	for _, k := range kinds {
		if err := s.deleteByPrefix(ctx, path.Join(string(k), "upload", identifier)+"."); err != nil {
			logger.Warn("asset delete failed", map[string]interface{}{"url": url, "error": err.Error()})
		}
	}
}

func (s *MinIOStore) deleteByPrefix(ctx context.Context, prefix string) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objects {
		if object.Err != nil {
			return fmt.Errorf("error listing objects: %w", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", object.Key, err)
		}
	}
	return nil
}

func (s *MinIOStore) IsManaged(url string) bool {
	return hasBase(url, s.publicURL)
}
