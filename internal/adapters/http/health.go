package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) string
}

// HealthHandler is the liveness probe: it answers as long as the process
// serves requests, regardless of dependency state.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler is the readiness probe: Postgres must answer, NATS must be
// connected, and the Valkey cache must respond to a read. Any failing
// check turns the response into a 503.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := []dependencyCheck{
		{name: "database", check: func(ctx context.Context) string {
			if deps.DB == nil {
				return "not configured"
			}
			if err := deps.DB.Healthy(ctx); err != nil {
				return "error: " + err.Error()
			}
			return "ok"
		}},
		{name: "nats", check: func(ctx context.Context) string {
			if deps.NATS == nil {
				return "not configured"
			}
			if !deps.NATS.IsConnected() {
				return "disconnected"
			}
			return "ok"
		}},
		{name: "cache", check: func(ctx context.Context) string {
			if deps.Cache == nil {
				return "not configured"
			}
			// A missing key reads back as "valkey nil message"; only
			// transport-level failures count against readiness.
			if _, err := deps.Cache.Get(ctx, "__health_check__"); err != nil && err.Error() != "valkey nil message" {
				return "error: " + err.Error()
			}
			return "ok"
		}},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, p := range probes {
			result := p.check(ctx)
			checks[p.name] = result
			if result != "ok" && result != "not configured" {
				ready = false
			}
		}
		if checks["database"] == "not configured" {
			ready = false
		}

		code := fiber.StatusOK
		status := "ready"
		if !ready {
			code = fiber.StatusServiceUnavailable
			status = "not ready"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
