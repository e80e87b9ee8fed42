package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

const tracerName = "femtechbi.dataprocessing"

// Stage names used in spans, logs and warnings
const (
	StageMapVital    = "map_vital_statistics"
	StageMapShortage = "map_shortage_scores"
	StageJoin        = "aggregate_join"
	StageScore       = "derive_opportunity"
	StageYears       = "available_years"
)

// Pipeline runs the normalize, map, aggregate, join and score stages over
// two raw tables. It holds no state between runs.
type Pipeline struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPipeline creates a pipeline that logs to logger
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger.With(slog.String("component", "pipeline")),
		tracer: otel.Tracer(tracerName),
	}
}

// Run maps both raw tables, joins them and scores the result. Status is
// empty-input when the vital-statistics table maps to nothing and
// no-common-key when the join precondition fails. A panic inside a stage is
// recovered into a warning and whatever earlier stages produced is returned.
func (p *Pipeline) Run(ctx context.Context, vital, shortage domain.RawTable) domain.PipelineResult {
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.Int("vital.rows", len(vital.Rows)),
		attribute.Int("shortage.rows", len(shortage.Rows)),
	))
	defer span.End()
	start := time.Now()

	result := domain.PipelineResult{
		Status:  domain.StatusOK,
		Unified: domain.UnifiedTable{Fields: []domain.Role{}, Records: []domain.UnifiedRecord{}},
		Scored:  []domain.ScoredRecord{},
		Years:   []int{},
	}

	var vitalTable domain.VitalTable
	var shortageTable domain.ShortageTable
	p.stage(ctx, &result, StageMapVital, func() { vitalTable = MapVitalStatistics(vital) })
	p.stage(ctx, &result, StageMapShortage, func() { shortageTable = MapShortageScores(shortage) })

	if vitalTable.IsEmpty() {
		result.Status = domain.StatusEmptyInput
		p.finish(ctx, span, result, start)
		return result
	}
	if !domain.HasRole(vitalTable.Fields, domain.RoleTotalBirths) {
		result.Warnings = append(result.Warnings, "vital statistics: no births column found; opportunity index will be zero")
	}
	if !shortageTable.IsEmpty() && !domain.HasRole(shortageTable.Fields, domain.RoleGapScore) {
		result.Warnings = append(result.Warnings, "shortage scores: no HPSA score column found; gap scores default to zero")
	}

	joined := false
	p.stage(ctx, &result, StageJoin, func() {
		unified, status := Join(vitalTable, shortageTable)
		result.Unified = unified
		result.Status = status
		joined = true
	})
	if !joined || result.Status != domain.StatusOK {
		p.finish(ctx, span, result, start)
		return result
	}

	p.stage(ctx, &result, StageYears, func() { result.Years = AvailableYears(result.Unified) })
	p.stage(ctx, &result, StageScore, func() { result.Scored = Score(result.Unified) })

	p.finish(ctx, span, result, start)
	return result
}

// stage runs fn inside its own span and converts a panic into a warning
func (p *Pipeline) stage(ctx context.Context, result *domain.PipelineResult, name string, fn func()) {
	_, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("%s failed: %v", name, r)
			result.Warnings = append(result.Warnings, msg)
			span.SetStatus(codes.Error, msg)
			p.logger.ErrorContext(ctx, "Pipeline stage panicked",
				slog.String("stage", name),
				slog.Any("panic", r))
		}
	}()

	fn()
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, result domain.PipelineResult, start time.Time) {
	span.SetAttributes(
		attribute.String("pipeline.status", string(result.Status)),
		attribute.Int("unified.rows", len(result.Unified.Records)),
		attribute.Int("scored.rows", len(result.Scored)),
		attribute.Int("warnings", len(result.Warnings)),
	)
	p.logger.InfoContext(ctx, "Pipeline run complete",
		slog.String("status", string(result.Status)),
		slog.Int("unified_rows", len(result.Unified.Records)),
		slog.Int("scored_rows", len(result.Scored)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", time.Since(start)))
}
