package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eldtechnologies/bazaar/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack forwards to the underlying ResponseWriter so websocket upgrades
// work through the metrics wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Metrics returns middleware that records Prometheus metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(wrapped.status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath normalizes paths to avoid high cardinality in metrics.
func normalizePath(path string) string {
	switch path {
	case "/stores/public/all", "/collections/public/all", "/products/public/all":
		return path
	}
	patterns := []struct{ prefix, normalized string }{
		{"/stores/public/store/", "/stores/public/store/:id"},
		{"/stores/public/", "/stores/public/:id"},
		{"/stores/", "/stores/:id"},
		{"/collections/public/store/", "/collections/public/store/:id"},
		{"/collections/public/", "/collections/public/:id"},
		{"/collections/store/", "/collections/store/:id"},
		{"/collections/", "/collections/:id"},
		{"/products/public/store/", "/products/public/store/:id"},
		{"/products/public/", "/products/public/:id"},
		{"/products/store/", "/products/store/:id"},
		{"/products/", "/products/:id"},
		{"/chat/product/", "/chat/product/:id"},
		{"/ws/product/", "/ws/product/:id"},
		{"/uploads/", "/uploads/:file"},
	}
	for _, p := range patterns {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			return p.normalized
		}
	}
	return path
}
