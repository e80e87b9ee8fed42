package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFrom tests loading with defaults, files and env overrides
func TestLoadFrom(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Ingest.MaxUploadBytes)
				assert.True(t, cfg.Ingest.ExportBOM)
				assert.Equal(t, DefaultMaxSessions, cfg.Sessions.MaxSessions)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "file overrides defaults",
			file: "server:\n  port: 9090\nlogging:\n  level: debug\ningest:\n  export_bom: false\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.False(t, cfg.Ingest.ExportBOM)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"DSBI_SERVER_PORT":                "7070",
				"DSBI_SESSIONS_IDLE_TTL":          "15m",
				"DSBI_SECURITY_ALLOWED_ORIGINS":   "http://a.test,http://b.test",
				"DSBI_TELEMETRY_TRACE_EXPORTER":   "stdout",
				"DSBI_INGEST_MAX_UPLOAD_BYTES":    "1024",
				"DSBI_SECURITY_RATE_LIMIT_ENABLED": "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 15*time.Minute, cfg.Sessions.IdleTTL)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				assert.Equal(t, int64(1024), cfg.Ingest.MaxUploadBytes)
				assert.False(t, cfg.Security.RateLimit.Enabled)
			},
		},
		{
			name: "unknown logging output falls back to console",
			env:  map[string]string{"DSBI_LOGGING_OUTPUT": "syslog"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"DSBI_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unsupported exporter",
			env:     map[string]string{"DSBI_TELEMETRY_METRIC_EXPORTER": "otlp"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}
