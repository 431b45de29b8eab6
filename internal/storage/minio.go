package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// noSuchKeyCode is the S3 error code for a missing object.
const noSuchKeyCode = "NoSuchKey"

// MinioStore is the MinIO-backed BlobStore.
type MinioStore struct {
	client *miniogo.Client
	cfg    config.StorageConfig
	log    logger.Interface
}

var _ BlobStore = (*MinioStore)(nil)

// NewMinio creates a blob store over the configured MinIO endpoint with
// static credentials.
func NewMinio(cfg config.StorageConfig, log logger.Interface) (*MinioStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	log.Info("blob store initialized",
		"endpoint", cfg.Endpoint,
		"raw_bucket", cfg.RawBucket,
		"text_bucket", cfg.TextBucket,
		"summary_bucket", cfg.SummaryBucket)

	return &MinioStore{client: client, cfg: cfg, log: log.WithComponent("storage")}, nil
}

// bucketFor maps a role to its configured bucket name.
func (s *MinioStore) bucketFor(role Role) (string, error) {
	switch role {
	case RoleRaw:
		return s.cfg.RawBucket, nil
	case RoleText:
		return s.cfg.TextBucket, nil
	case RoleSummary:
		return s.cfg.SummaryBucket, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// Put writes an object, overwriting any existing one under the key.
func (s *MinioStore) Put(ctx context.Context, role Role, key string, data []byte, contentType string) error {
	bucket, err := s.bucketFor(role)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	s.log.Debug("object stored", "bucket", bucket, "key", key, "size", len(data))
	return nil
}

// Get reads an object; missing keys return ErrNotFound.
func (s *MinioStore) Get(ctx context.Context, role Role, key string) ([]byte, error) {
	bucket, err := s.bucketFor(role)
	if err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if miniogo.ToErrorResponse(err).Code == noSuchKeyCode {
			return nil, fmt.Errorf("get %s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}

	return data, nil
}

// Exists reports whether the key holds an object.
func (s *MinioStore) Exists(ctx context.Context, role Role, key string) (bool, error) {
	bucket, err := s.bucketFor(role)
	if err != nil {
		return false, err
	}

	_, err = s.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		if miniogo.ToErrorResponse(err).Code == noSuchKeyCode {
			return false, nil
		}
		return false, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}

	return true, nil
}

// List returns all keys under the prefix, lexically ordered.
func (s *MinioStore) List(ctx context.Context, role Role, prefix string) ([]string, error) {
	bucket, err := s.bucketFor(role)
	if err != nil {
		return nil, err
	}

	var keys []string
	for object := range s.client.ListObjects(ctx, bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, object.Err)
		}
		keys = append(keys, object.Key)
	}

	sort.Strings(keys)
	return keys, nil
}

// Sessions returns the distinct first path segments in the role bucket.
func (s *MinioStore) Sessions(ctx context.Context, role Role) ([]string, error) {
	keys, err := s.List(ctx, role, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var sessions []string
	for _, key := range keys {
		session, _, found := strings.Cut(key, "/")
		if !found || session == "" {
			continue
		}
		if _, dup := seen[session]; dup {
			continue
		}
		seen[session] = struct{}{}
		sessions = append(sessions, session)
	}

	sort.Strings(sessions)
	return sessions, nil
}

// Healthy verifies every role bucket exists.
func (s *MinioStore) Healthy(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.RawBucket, s.cfg.TextBucket, s.cfg.SummaryBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("health check %s: %w", bucket, err)
		}
		if !exists {
			return fmt.Errorf("health check: bucket %s does not exist", bucket)
		}
	}
	return nil
}

// EnsureBuckets creates any missing role bucket. Called once at startup so
// a fresh deployment works without manual provisioning.
func (s *MinioStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.RawBucket, s.cfg.TextBucket, s.cfg.SummaryBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		s.log.Info("bucket created", "bucket", bucket)
	}
	return nil
}
