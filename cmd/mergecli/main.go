package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Blaise762/FemTechBI-MVP/internal/config"
	"github.com/Blaise762/FemTechBI-MVP/internal/dataprocessing"
	"github.com/Blaise762/FemTechBI-MVP/internal/exporter"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/internal/services"
	"github.com/Blaise762/FemTechBI-MVP/internal/validation"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// options holds the parsed command line
type options struct {
	vital    string
	shortage string
	regions  []domain.RegionCode
	years    []int
	table    domain.ExportTable
	out      string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
	}

	// One trace id per invocation ties the run's log lines together.
	ctx := infrastructure.EnsureTraceID(context.Background())
	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "mergecli")

	if err := run(ctx, os.Args[1:], os.Stdout, logger, cfg.Ingest.MaxUploadBytes); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		infrastructure.WithError(logger, err).Error("mergecli failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("mergecli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	vital := fs.String("vital", "", "vital statistics table (.csv, .xlsx)")
	shortage := fs.String("shortage", "", "provider shortage table (.csv, .xlsx)")
	regions := fs.String("regions", "", "comma separated region codes to keep (default all)")
	years := fs.String("years", "", "comma separated years to keep (default all)")
	table := fs.String("table", string(domain.ExportScored), "table to export: scored or unified")
	out := fs.String("out", "", "output file (.csv or .xlsx); stdout CSV when empty")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		vital:    *vital,
		shortage: *shortage,
		table:    domain.ExportTable(*table),
		out:      *out,
	}
	if opts.vital == "" || opts.shortage == "" {
		return options{}, fmt.Errorf("both -vital and -shortage are required")
	}
	if opts.table != domain.ExportScored && opts.table != domain.ExportUnified {
		return options{}, fmt.Errorf("unknown table %q", *table)
	}

	for _, field := range splitList(*regions) {
		code := dataprocessing.StandardizeRegion(field)
		if !dataprocessing.IsKnownRegion(code) {
			return options{}, fmt.Errorf("unknown region %q", field)
		}
		opts.regions = append(opts.regions, domain.RegionCode(code))
	}
	for _, field := range splitList(*years) {
		y, err := strconv.Atoi(field)
		if err != nil || y <= 0 {
			return options{}, fmt.Errorf("invalid year %q", field)
		}
		opts.years = append(opts.years, y)
	}

	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// run executes one merge. Missing or unsupported files fail up front;
// tables that cannot be parsed surface as warnings in the log.
func run(ctx context.Context, args []string, stdout io.Writer, logger *slog.Logger, maxBytes int64) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger, maxBytes)
	vitalFormat, err := validator.ValidateInputTable(opts.vital)
	if err != nil {
		return fmt.Errorf("vital table: %w", err)
	}
	shortageFormat, err := validator.ValidateInputTable(opts.shortage)
	if err != nil {
		return fmt.Errorf("shortage table: %w", err)
	}
	if opts.out != "" {
		if _, err := validator.ValidateOutputFile(opts.out); err != nil {
			return err
		}
	}

	vital, err := os.ReadFile(opts.vital)
	if err != nil {
		return fmt.Errorf("read vital table: %w", err)
	}
	shortage, err := os.ReadFile(opts.shortage)
	if err != nil {
		return fmt.Errorf("read shortage table: %w", err)
	}

	svc := services.NewPipelineService(services.NewSessionStore(0, 0), nil, nil, logger, services.PipelineServiceOptions{})
	result, err := svc.RunOnce(ctx, vital, vitalFormat, shortage, shortageFormat)
	if err != nil {
		return err
	}

	logger.Info("Pipeline finished",
		slog.String("status", string(result.Status)),
		slog.Int("unified_rows", len(result.Unified.Records)),
		slog.Int("scored_regions", len(result.Scored)),
		slog.Any("years", result.Years))
	for _, w := range result.Warnings {
		logger.Warn("Pipeline warning", slog.String("warning", w))
	}

	sel := dataprocessing.DefaultSelection(result.Years)
	if len(opts.regions) > 0 {
		sel.Regions = opts.regions
	}
	if len(opts.years) > 0 {
		sel.Years = opts.years
	}
	filtered := dataprocessing.ApplySelection(result, sel)

	return write(stdout, filtered, opts, logger)
}

func write(stdout io.Writer, filtered domain.FilteredResult, opts options, logger *slog.Logger) error {
	switch {
	case opts.out == "":
		return exporter.Export(stdout, filtered, opts.table, domain.ExportCSV, false)

	case strings.EqualFold(filepath.Ext(opts.out), ".xlsx"):
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		if err := exporter.WriteXLSX(f, filtered.Unified, filtered.Scored); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

	default:
		wo := exporter.WriteOptions{Headers: exporter.ScoredHeaders, Records: exporter.ScoredRows(filtered.Scored)}
		if opts.table == domain.ExportUnified {
			wo = exporter.WriteOptions{Headers: exporter.UnifiedHeaders(filtered.Unified), Records: exporter.UnifiedRows(filtered.Unified)}
		}
		if err := exporter.NewCSVWriter(true).WriteFile(opts.out, wo); err != nil {
			return err
		}
	}

	logger.Info("Export written", slog.String("path", opts.out), slog.String("table", string(opts.table)))
	return nil
}
