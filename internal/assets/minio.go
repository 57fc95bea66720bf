package assets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the object storage connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL is the externally reachable root for stored objects,
	// e.g. "https://cdn.example.com". Defaults to the endpoint scheme+host.
	PublicBaseURL string
}

// MinioUploader stores images in an S3-compatible bucket.
type MinioUploader struct {
	cfg    MinioConfig
	client *minio.Client
}

// NewMinioUploader connects to the object store and ensures the bucket exists.
func NewMinioUploader(ctx context.Context, cfg MinioConfig) (*MinioUploader, error) {
	cfg.Endpoint = strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	u := &MinioUploader{cfg: cfg, client: cl}

	exists, err := cl.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cl.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// Upload stores data under images/<unix-ms>-<name> and returns its public URL.
func (u *MinioUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	key := fmt.Sprintf("images/%d-%s", time.Now().UnixMilli(), sanitizeObjectName(name))
	contentType := http.DetectContentType(data)

	_, err := u.client.PutObject(ctx, u.cfg.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}

	return u.publicURL(key), nil
}

// Delete removes the object referenced by url. Unknown URLs are an error so
// the caller can log them.
func (u *MinioUploader) Delete(ctx context.Context, url string) error {
	key, ok := u.objectKey(url)
	if !ok {
		return fmt.Errorf("url %q is not in bucket %q", url, u.cfg.Bucket)
	}
	return u.client.RemoveObject(ctx, u.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (u *MinioUploader) publicURL(key string) string {
	base := u.cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if u.cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + u.cfg.Endpoint
	}
	return strings.TrimSuffix(base, "/") + "/" + u.cfg.Bucket + "/" + key
}

func (u *MinioUploader) objectKey(url string) (string, bool) {
	marker := "/" + u.cfg.Bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	return url[idx+len(marker):], true
}

// sanitizeObjectName strips path separators and keeps only the base name.
func sanitizeObjectName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
