package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
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

type StoredObject struct {
	Key          string
	LastModified time.Time
}

// objectClient is the subset of *minio.Client the storage needs.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type S3Storage struct {
	client     objectClient
	bucket     string
	publicBase string

	ensureMu sync.Mutex
	ensured  bool
}

// NewS3Storage serves objects from publicBase + "/" + bucket + "/" + key.
func NewS3Storage(client *minio.Client, bucket, publicBase string) *S3Storage {
	s := &S3Storage{
		bucket:     strings.TrimSpace(bucket),
		publicBase: strings.TrimRight(strings.TrimSpace(publicBase), "/"),
	}
	if client != nil {
		s.client = client
	}
	return s
}

func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}

	// Failures are not cached; the next upload retries.
	if err := s.ensure(ctx); err != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, err)
	}
	s.ensured = true

	return nil
}

func (s *S3Storage) ensure(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	return s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket))
}

// Put stores the object and returns its public URL.
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if key == "" || body == nil || size <= 0 {
		return "", ErrValidation
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object to s3: %w", err)
	}

	return s.PublicURL(key), nil
}

func (s *S3Storage) PublicURL(key string) string {
	return s.publicBase + "/" + s.bucket + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL reverses PublicURL. URLs that do not point into this bucket are rejected.
func (s *S3Storage) KeyFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, err := url.Parse(raw); err != nil {
		return "", false
	}

	prefix := s.publicBase + "/" + s.bucket + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(raw, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (s *S3Storage) ListOlderThan(ctx context.Context, cutoff time.Time) ([]StoredObject, error) {
	if s.client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}

	var out []StoredObject
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if obj.LastModified.Before(cutoff) {
			out = append(out, StoredObject{Key: obj.Key, LastModified: obj.LastModified})
		}
	}
	return out, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.client == nil || key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
