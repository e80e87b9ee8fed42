package config

import "time"

// Application constants
const (
	// Application Info
	AppName   = "Deep South Health Equity BI"
	AppVendor = "FemTechBI"

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// Ingestion
	DefaultMaxUploadBytes = 32 << 20 // 32MB per file

	// Sessions
	DefaultMaxSessions    = 1000
	DefaultSessionIdleTTL = 2 * time.Hour

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/app.log"

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
