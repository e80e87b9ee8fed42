package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blaise762/FemTechBI-MVP/internal/config"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts"
)

const (
	ServiceName = "femtechbi-pipeline"
	MeterName   = "femtechbi"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// OTelConfigFrom maps the application telemetry section onto OTelConfig
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
		SampleRatio:    cfg.SampleRatio,
	}
}

// InitializeOTel sets up tracing and metrics. Disabled signals fall back to
// noop implementations so callers never need nil checks.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default().Telemetry)
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics sets up OpenTelemetry metrics. The Prometheus exporter
// uses a private registry, which also carries the Go runtime and process
// collectors.
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)

	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", cfg.MetricExporter))
	return nil
}

// BusinessMetrics holds the HTTP and pipeline instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	PipelineRunsTotal     metric.Int64Counter
	PipelineRunDuration   metric.Float64Histogram
	PipelineWarnings      metric.Int64Counter
	IngestRowsTotal       metric.Int64Counter
	IngestDecodeTotal     metric.Int64Counter
	IngestBytesTotal      metric.Int64Counter
	SessionsActive        metric.Int64UpDownCounter
	WebSocketClientsTotal metric.Int64UpDownCounter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var m BusinessMetrics
	var errs []error
	collect := func(err error) { errs = append(errs, err) }

	var err error
	m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	collect(err)
	m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"), metric.WithUnit("s"))
	collect(err)
	m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests"))
	collect(err)

	m.PipelineRunsTotal, err = meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs by status"))
	collect(err)
	m.PipelineRunDuration, err = meter.Float64Histogram("pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"), metric.WithUnit("s"))
	collect(err)
	m.PipelineWarnings, err = meter.Int64Counter("pipeline_warnings_total",
		metric.WithDescription("Total number of non-fatal pipeline warnings"))
	collect(err)
	m.IngestRowsTotal, err = meter.Int64Counter("ingest_rows_total",
		metric.WithDescription("Total number of rows ingested by source"))
	collect(err)
	m.IngestDecodeTotal, err = meter.Int64Counter("ingest_decode_total",
		metric.WithDescription("Uploads decoded, by winning text encoding"))
	collect(err)
	m.IngestBytesTotal, err = meter.Int64Counter("ingest_bytes_total",
		metric.WithDescription("Total bytes uploaded"), metric.WithUnit("By"))
	collect(err)
	m.SessionsActive, err = meter.Int64UpDownCounter("sessions_active",
		metric.WithDescription("Number of live sessions"))
	collect(err)
	m.WebSocketClientsTotal, err = meter.Int64UpDownCounter("websocket_clients",
		metric.WithDescription("Number of connected session event clients"))
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordPipelineRun records one pipeline run
func (m *BusinessMetrics) RecordPipelineRun(ctx context.Context, status string, warnings int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.PipelineRunsTotal.Add(ctx, 1, attrs)
	m.PipelineRunDuration.Record(ctx, duration.Seconds(), attrs)
	if warnings > 0 {
		m.PipelineWarnings.Add(ctx, int64(warnings))
	}
}

// RecordIngest records one decoded upload
func (m *BusinessMetrics) RecordIngest(ctx context.Context, source, format, encoding string, rows, size int) {
	if m == nil {
		return
	}
	m.IngestRowsTotal.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
	m.IngestBytesTotal.Add(ctx, int64(size), metric.WithAttributes(attribute.String("source", source)))
	m.IngestDecodeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("encoding", encoding),
	))
}

// RecordSessions adjusts the live session gauge
func (m *BusinessMetrics) RecordSessions(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.SessionsActive.Add(ctx, delta)
}

// RecordWebSocketClients adjusts the connected client gauge
func (m *BusinessMetrics) RecordWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClientsTotal.Add(ctx, delta)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %w", errors.Join(errs...))
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
