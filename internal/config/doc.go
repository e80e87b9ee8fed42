// Package config provides centralized configuration management for the
// health equity pipeline service and CLI.
//
// # Configuration Sources
//
// Configuration is assembled in this order, later sources winning:
//
//	1. Default values (Default)
//	2. A YAML file: $DSBI_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables use the DSBI_ prefix followed by the section
// and field name:
//
//	DSBI_SERVER_PORT=8080
//	DSBI_LOGGING_LEVEL=debug
//	DSBI_INGEST_MAX_UPLOAD_BYTES=10485760
//	DSBI_SESSIONS_IDLE_TTL=30m
//	DSBI_TELEMETRY_TRACE_EXPORTER=stdout
//	DSBI_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//
// # Validation
//
// Load rejects out-of-range ports, non-positive timeouts and limits, and
// unknown telemetry exporters. An unknown logging output falls back to
// console.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    slog.Error("failed to load configuration", "error", err)
//	    os.Exit(1)
//	}
package config
