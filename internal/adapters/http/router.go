package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/anishmaharjan/caremap/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Bearer-token auth (optional per request; booking routes require it)
	app.Use(JWTMiddleware(deps.JWTSecret))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// /v1/hospitals/near predates /nearby and sunsets at the end of 2026.
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Path:        "/v1/hospitals/near",
			SunsetDate:  time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/hospitals/nearby",
		},
	}))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout; the sync trigger gets more
	// because it waits on the geodata provider.
	v1 := app.Group("/v1")
	v1.Get("/hospitals/nearby", timeout.NewWithContext(NearbyHospitalsHandler(deps), 15*time.Second))
	v1.Get("/hospitals/near", timeout.NewWithContext(NearbyHospitalsHandler(deps), 15*time.Second))
	v1.Get("/hospitals/:id", timeout.NewWithContext(GetHospitalHandler(deps), 15*time.Second))
	v1.Post("/sync", timeout.NewWithContext(TriggerSyncHandler(deps), 60*time.Second))
	v1.Get("/sync/status", SyncStatusHandler(deps))
	v1.Post("/bookings", timeout.NewWithContext(CreateBookingHandler(deps), 15*time.Second))
	v1.Get("/bookings", timeout.NewWithContext(ListBookingsHandler(deps), 15*time.Second))
	v1.Get("/drafts", GetDraftHandler(deps))
	v1.Put("/drafts", PutDraftHandler(deps))
	v1.Delete("/drafts", DeleteDraftHandler(deps))
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
