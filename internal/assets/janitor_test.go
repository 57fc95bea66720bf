package assets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// deleteRecorder records Delete calls; failWith makes them error.
type deleteRecorder struct {
	mu       sync.Mutex
	deleted  []string
	failWith error
}

func (d *deleteRecorder) Upload(ctx context.Context, data []byte, name string) (string, error) {
	return "https://assets.test/" + name, nil
}

func (d *deleteRecorder) Delete(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	d.deleted = append(d.deleted, url)
	return nil
}

func (d *deleteRecorder) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.deleted...)
}

func TestJanitorDeletesReleasedAssets(t *testing.T) {
	rec := &deleteRecorder{}
	j := NewJanitor(rec, zerolog.Nop())

	j.Release("https://assets.test/a.png")
	j.Release("https://assets.test/b.png")
	j.Close() // drains the queue

	assert.Equal(t, []string{"https://assets.test/a.png", "https://assets.test/b.png"}, rec.snapshot())
}

func TestJanitorIgnoresEmptyURL(t *testing.T) {
	rec := &deleteRecorder{}
	j := NewJanitor(rec, zerolog.Nop())

	j.Release("")
	j.Close()

	assert.Empty(t, rec.snapshot())
}

func TestJanitorSwallowsDeleteFailures(t *testing.T) {
	rec := &deleteRecorder{failWith: errors.New("bucket gone")}
	j := NewJanitor(rec, zerolog.Nop())

	// Must not panic or block
	j.Release("https://assets.test/a.png")
	j.Close()

	assert.Empty(t, rec.snapshot())
}
