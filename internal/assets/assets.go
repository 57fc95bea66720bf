// Package assets wraps the external object storage provider and owns the
// lifecycle of uploaded resource images: upload before the catalog write,
// best-effort deletion of replaced or orphaned objects afterwards.
package assets

import "context"

// Uploader stores raw file bytes and returns a durable public URL.
// MinioUploader is the production implementation; LocalUploader serves
// development setups without object storage.
type Uploader interface {
	// Upload stores data under a name-derived key and returns the object URL.
	Upload(ctx context.Context, data []byte, name string) (string, error)

	// Delete removes the object a previous Upload returned url for.
	Delete(ctx context.Context, url string) error
}
