package assets

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/metrics"
)

const deleteTimeout = 10 * time.Second

// Releaser schedules best-effort deletion of an asset that is no longer
// referenced by any resource.
type Releaser interface {
	Release(url string)
}

// Janitor deletes released assets in the background. Deletion failures are
// logged and counted, never propagated: a stale object in the asset store
// does not affect the correctness of the catalog.
type Janitor struct {
	uploader Uploader
	logger   zerolog.Logger
	queue    chan string
	done     chan struct{}
}

// NewJanitor starts the background delete worker.
func NewJanitor(uploader Uploader, logger zerolog.Logger) *Janitor {
	j := &Janitor{
		uploader: uploader,
		logger:   logger,
		queue:    make(chan string, 256),
		done:     make(chan struct{}),
	}
	go j.run()
	return j
}

// Release schedules deletion of url. Never blocks the caller: if the queue is
// full the delete is dropped and logged, which only leaks an orphan object.
func (j *Janitor) Release(url string) {
	if url == "" {
		return
	}
	select {
	case j.queue <- url:
	default:
		j.logger.Warn().Str("url", url).Msg("asset delete queue full, dropping")
		metrics.AssetDeletes.WithLabelValues("dropped").Inc()
	}
}

// Close stops accepting releases, drains the queue and waits for the worker.
func (j *Janitor) Close() {
	close(j.queue)
	<-j.done
}

func (j *Janitor) run() {
	defer close(j.done)
	for url := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		err := j.uploader.Delete(ctx, url)
		cancel()
		if err != nil {
			j.logger.Warn().Err(err).Str("url", url).Msg("stale asset delete failed (ignored)")
			metrics.AssetDeletes.WithLabelValues("error").Inc()
			continue
		}
		j.logger.Debug().Str("url", url).Msg("stale asset deleted")
		metrics.AssetDeletes.WithLabelValues("ok").Inc()
	}
}
