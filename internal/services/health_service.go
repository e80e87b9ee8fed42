package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts"
)

// ClientCounter reports connected event-stream clients
type ClientCounter interface {
	ClientCount() int
}

// SessionCounter reports live sessions
type SessionCounter interface {
	SessionCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	clients   ClientCounter
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	ActiveSessions   int     `json:"active_sessions"`
	WebSocketClients int     `json:"websocket_clients"`
	Goroutines       int     `json:"goroutines"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a new health service. clients and sessions may be
// nil, in which case the matching checks report not_ready.
func NewHealthService(clients ClientCounter, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime),
		slog.String("build_id", contracts.GitCommit))

	return &HealthService{
		version:   contracts.Version,
		buildTime: contracts.BuildTime,
		buildID:   contracts.GitCommit,
		clients:   clients,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns readiness plus per-service detail
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"sessions":  hs.checkSessionHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "degraded"
			break
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.sessions != nil {
		stats.ActiveSessions = hs.sessions.SessionCount()
	}
	if hs.clients != nil {
		stats.WebSocketClients = hs.clients.ClientCount()
	}
	return stats
}

func (hs *HealthService) checkSessionHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{Status: "not_ready", Message: "session store not initialized"}
	}
	return ServiceHealth{Status: "ready", Message: "session store is healthy"}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "not_ready", Message: "websocket hub not initialized"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "websocket service is healthy",
		Uptime:  time.Since(hs.startTime).String(),
	}
}
