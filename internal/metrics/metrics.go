package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bazaar_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_users_registered_total",
			Help: "Total users registered",
		},
	)

	ResourcesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_resources_created_total",
			Help: "Total catalog resources created",
		},
		[]string{"kind"}, // "store", "collection" or "product"
	)

	ResourcesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_resources_deleted_total",
			Help: "Total catalog resources deleted",
		},
		[]string{"kind"},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_messages_sent_total",
			Help: "Total chat messages sent",
		},
	)

	LiveDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_live_deliveries_total",
			Help: "Total live message deliveries to subscribers",
		},
	)

	LiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bazaar_live_subscribers",
			Help: "Current live chat subscribers",
		},
	)

	// Asset metrics
	AssetUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_asset_uploads_total",
			Help: "Total asset uploads",
		},
		[]string{"result"}, // "ok" or "error"
	)

	AssetDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_asset_deletes_total",
			Help: "Total best-effort asset deletes",
		},
		[]string{"result"}, // "ok", "error" or "dropped"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
