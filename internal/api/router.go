package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
	"github.com/eldtechnologies/bazaar/internal/config"
	"github.com/eldtechnologies/bazaar/internal/handlers"
	"github.com/eldtechnologies/bazaar/internal/hub"
	"github.com/eldtechnologies/bazaar/internal/service"
	"github.com/eldtechnologies/bazaar/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// which disables rate limiting.
func NewRouter(
	logger zerolog.Logger,
	cfg *config.Config,
	db store.DataStore,
	messages store.MessageStore,
	catalog *service.Catalog,
	chat *service.Chat,
	liveHub *hub.Hub,
	redisClient *redis.Client,
) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(12 << 20)) // 10MB images plus multipart overhead
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(redisClient, logger, cfg.RateLimit, cfg.RateLimitWhitelist)
	r.Use(limiter.Middleware)

	// CORS - browser wallets call from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(db, messages, catalog, chat, liveHub, logger)
	auth := middleware.NewAuthMiddleware(db)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/register", h.Register)

	r.Get("/stores/public/all", h.GetStoresPublic)
	r.Get("/stores/public/{storeID}", h.GetStorePublic)
	r.Get("/collections/public/all", h.GetCollectionsPublic)
	r.Get("/collections/public/store/{storeID}", h.GetCollectionsByStorePublic)
	r.Get("/collections/public/{collectionID}", h.GetCollectionPublic)
	r.Get("/products/public/all", h.GetProductsPublic)
	r.Get("/products/public/store/{storeID}", h.GetProductsByStorePublic)
	r.Get("/products/public/{productID}", h.GetProductPublic)

	// Locally stored images (development / single node deployments)
	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/stores", h.GetMyStores)
		r.Post("/stores", h.CreateStore)
		r.Get("/stores/{storeID}", h.GetStore)
		r.Put("/stores/{storeID}", h.UpdateStore)
		r.Delete("/stores/{storeID}", h.DeleteStore)

		r.Get("/collections", h.GetMyCollections)
		r.Get("/collections/store/{storeID}", h.GetMyCollectionsByStore)
		r.Post("/collections", h.CreateCollection)
		r.Get("/collections/{collectionID}", h.GetCollection)
		r.Put("/collections/{collectionID}", h.UpdateCollection)
		r.Delete("/collections/{collectionID}", h.DeleteCollection)

		r.Get("/products", h.GetMyProducts)
		r.Get("/products/store/{storeID}", h.GetMyProductsByStore)
		r.Post("/products", h.CreateProduct)
		r.Get("/products/{productID}", h.GetProduct)
		r.Put("/products/{productID}", h.UpdateProduct)
		r.Delete("/products/{productID}", h.DeleteProduct)

		r.Post("/chat/send", h.SendMessage)
		r.Get("/chat/product/{productID}", h.GetMessages)
		r.Get("/ws/product/{productID}", h.Subscribe)
	})

	return r
}
