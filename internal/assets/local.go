package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader stores images on the local filesystem, served by the HTTP
// layer under /uploads/. Development fallback when object storage is not
// configured.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the upload directory if needed.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if dir == "" {
		dir = "./data/uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (u *LocalUploader) Dir() string {
	return u.dir
}

// Upload writes data under <unix-ms>-<name> and returns its /uploads/ URL.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	fileName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeObjectName(name))
	if err := os.WriteFile(filepath.Join(u.dir, fileName), data, 0644); err != nil {
		return "", err
	}
	return u.baseURL + "/uploads/" + fileName, nil
}

// Delete removes the file referenced by url.
func (u *LocalUploader) Delete(ctx context.Context, url string) error {
	idx := strings.Index(url, "/uploads/")
	if idx < 0 {
		return fmt.Errorf("url %q is not a local upload", url)
	}
	fileName := url[idx+len("/uploads/"):]
	// Base() guards against traversal out of the upload dir.
	return os.Remove(filepath.Join(u.dir, filepath.Base(fileName)))
}
