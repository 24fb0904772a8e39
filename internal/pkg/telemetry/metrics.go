package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricHospitalFreshness = "sync.data_age_seconds"
	MetricSyncLatency       = "sync.run_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSyncRuns        = "business.sync_runs"
	MetricBookingsCreated = "business.bookings_created"
)
