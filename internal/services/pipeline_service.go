package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Blaise762/FemTechBI-MVP/internal/dataprocessing"
	"github.com/Blaise762/FemTechBI-MVP/internal/exporter"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// SessionPublisher receives session snapshots after every transition
type SessionPublisher interface {
	PublishSession(ctx context.Context, sessionID string, snapshot interface{})
	CloseSession(ctx context.Context, sessionID string)
}

// PipelineServiceOptions tunes ingestion and export
type PipelineServiceOptions struct {
	MaxUploadBytes int64
	ExportBOM      bool
}

// PipelineService drives sessions through uploads, filter changes and
// exports. It is the only caller of the pipeline in the HTTP host.
type PipelineService struct {
	store     *SessionStore
	pipeline  *dataprocessing.Pipeline
	publisher SessionPublisher
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
	opts      PipelineServiceOptions
}

// NewPipelineService creates a pipeline service. publisher and metrics may
// be nil.
func NewPipelineService(store *SessionStore, publisher SessionPublisher, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, opts PipelineServiceOptions) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "pipeline_service")

	logger.Info("PipelineService initialized",
		slog.Int64("max_upload_bytes", opts.MaxUploadBytes),
		slog.Bool("export_bom", opts.ExportBOM))

	return &PipelineService{
		store:     store,
		pipeline:  dataprocessing.NewPipeline(logger),
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

func (s *PipelineService) publish(ctx context.Context, sess *Session) domain.SessionSnapshot {
	snap := sess.Snapshot()
	if s.publisher != nil {
		s.publisher.PublishSession(ctx, snap.ID, snap)
	}
	return snap
}

// CreateSession starts a new session on the home page
func (s *PipelineService) CreateSession(ctx context.Context) (domain.SessionSnapshot, error) {
	sess, err := s.store.Create()
	if err != nil {
		s.logger.WarnContext(ctx, "Session rejected",
			slog.Int("active_sessions", s.store.Len()),
			slog.String("error", err.Error()))
		return domain.SessionSnapshot{}, err
	}
	s.metrics.RecordSessions(ctx, 1)

	s.logger.InfoContext(ctx, "Session created", slog.String("session_id", sess.ID()))
	return sess.Snapshot(), nil
}

// GetSession returns a snapshot of the session
func (s *PipelineService) GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// DeleteSession discards the session and notifies its watchers
func (s *PipelineService) DeleteSession(ctx context.Context, sessionID string) error {
	if !s.store.Delete(sessionID) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.closed(ctx, sessionID)
	s.logger.InfoContext(ctx, "Session deleted", slog.String("session_id", sessionID))
	return nil
}

func (s *PipelineService) closed(ctx context.Context, sessionID string) {
	s.metrics.RecordSessions(ctx, -1)
	if s.publisher != nil {
		s.publisher.CloseSession(ctx, sessionID)
	}
}

// SubmitForm completes the access form for the session
func (s *PipelineService) SubmitForm(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	sess.SubmitForm()
	s.logger.InfoContext(ctx, "Access form submitted", slog.String("session_id", sessionID))
	return s.publish(ctx, sess), nil
}

// Navigate switches the active page
func (s *PipelineService) Navigate(ctx context.Context, sessionID string, page domain.Page) (domain.SessionSnapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := sess.Navigate(page); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.publish(ctx, sess), nil
}

// Upload ingests one source file and re-runs the pipeline for the session.
// An empty format is guessed from the filename. A file that cannot be read
// is stored as an empty table with a warning instead of failing the upload.
func (s *PipelineService) Upload(ctx context.Context, sessionID string, source domain.Source, filename string, format domain.Format, data []byte) (domain.SessionSnapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	ingest, warning, err := s.ingest(ctx, source, filename, format, data)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	info := domain.UploadInfo{
		Filename:   filename,
		Size:       len(data),
		Ingest:     ingest,
		UploadedAt: time.Now(),
		Warning:    warning,
	}

	start := time.Now()
	result := sess.SelectFile(ctx, s.pipeline, source, info, ingest.Table)
	s.recordRun(ctx, sessionID, result, time.Since(start))

	return s.publish(ctx, sess), nil
}

// ingest validates and decodes one upload
func (s *PipelineService) ingest(ctx context.Context, source domain.Source, filename string, format domain.Format, data []byte) (domain.IngestResult, string, error) {
	if !source.IsValid() {
		return domain.IngestResult{}, "", fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	if format == "" {
		format = dataprocessing.FormatFromFilename(filename)
	}
	if !format.IsValid() {
		return domain.IngestResult{}, "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return domain.IngestResult{}, "", fmt.Errorf("%w: %d bytes exceeds %d", ErrUploadTooLarge, len(data), s.opts.MaxUploadBytes)
	}

	logger := s.logger.With(
		slog.String("source", string(source)),
		slog.String("filename", filename),
		slog.String("format", string(format)))

	var warning string
	ingest, err := dataprocessing.ReadTable(data, format)
	if err != nil {
		warning = fmt.Sprintf("%s: file could not be read (%v); treated as empty", source, err)
		infrastructure.WithError(logger, err).WarnContext(ctx, "Upload unreadable, continuing with empty table")
		ingest.Table = domain.RawTable{}
		ingest.Rows, ingest.Columns = 0, 0
	}
	if ingest.Replaced {
		warning = fmt.Sprintf("%s: text decoded with %d replacement characters", source, ingest.ReplacementCount)
	}

	s.metrics.RecordIngest(ctx, string(source), string(format), ingest.Encoding, ingest.Rows, len(data))
	logger.InfoContext(ctx, "Upload ingested",
		slog.Int("rows", ingest.Rows),
		slog.Int("columns", ingest.Columns),
		slog.String("encoding", ingest.Encoding),
		slog.String("checksum", ingest.Checksum))

	return ingest, warning, nil
}

func (s *PipelineService) recordRun(ctx context.Context, sessionID string, result domain.PipelineResult, elapsed time.Duration) {
	s.metrics.RecordPipelineRun(ctx, string(result.Status), len(result.Warnings), elapsed)

	attrs := []any{
		slog.String("status", string(result.Status)),
		slog.Int("unified_rows", len(result.Unified.Records)),
		slog.Int("scored_rows", len(result.Scored)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", elapsed),
	}
	if sessionID != "" {
		attrs = append(attrs, slog.String("session_id", sessionID))
	}
	s.logger.InfoContext(ctx, "Pipeline run completed", attrs...)
}

// ApplyFilters replaces the session's selection and returns the filtered
// view. Unknown regions and non-positive years are rejected.
func (s *PipelineService) ApplyFilters(ctx context.Context, sessionID string, sel domain.Selection) (domain.FilteredResult, error) {
	for _, code := range sel.Regions {
		if !dataprocessing.IsKnownRegion(string(code)) {
			return domain.FilteredResult{}, fmt.Errorf("%w: unknown region %q", ErrInvalidSelection, code)
		}
	}
	for _, year := range sel.Years {
		if year <= 0 {
			return domain.FilteredResult{}, fmt.Errorf("%w: year %d", ErrInvalidSelection, year)
		}
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return domain.FilteredResult{}, err
	}

	filtered := sess.ChangeFilters(sel)
	s.publish(ctx, sess)

	s.logger.DebugContext(ctx, "Filters applied",
		slog.String("session_id", sessionID),
		slog.Int("regions", len(sel.Regions)),
		slog.Int("years", len(sel.Years)),
		slog.Int("unified_rows", len(filtered.Unified.Records)))
	return filtered, nil
}

// Years returns the years available for filtering
func (s *PipelineService) Years(ctx context.Context, sessionID string) ([]int, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Years(), nil
}

// Result returns the filtered result. The dashboard data sits behind the
// access form.
func (s *PipelineService) Result(ctx context.Context, sessionID string) (domain.FilteredResult, error) {
	sess, err := s.gated(sessionID)
	if err != nil {
		return domain.FilteredResult{}, err
	}
	return sess.Filtered(), nil
}

// Export writes one table of the filtered result to w
func (s *PipelineService) Export(ctx context.Context, sessionID string, table domain.ExportTable, format domain.ExportFormat, w io.Writer) error {
	if table != domain.ExportUnified && table != domain.ExportScored {
		return fmt.Errorf("%w: table %q", ErrInvalidFormat, table)
	}
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		return fmt.Errorf("%w: export format %q", ErrInvalidFormat, format)
	}

	sess, err := s.gated(sessionID)
	if err != nil {
		return err
	}

	if err := exporter.Export(w, sess.Filtered(), table, format, s.opts.ExportBOM); err != nil {
		s.logger.ErrorContext(ctx, "Export failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return fmt.Errorf("export %s as %s: %w", table, format, err)
	}

	s.logger.InfoContext(ctx, "Export written",
		slog.String("session_id", sessionID),
		slog.String("table", string(table)),
		slog.String("format", string(format)))
	return nil
}

func (s *PipelineService) gated(sessionID string) (*Session, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.FormCompleted() {
		return nil, ErrFormRequired
	}
	return sess, nil
}

// RunOnce runs the pipeline over two uploads without a session. Ingestion
// warnings are prepended to the pipeline warnings.
func (s *PipelineService) RunOnce(ctx context.Context, vital []byte, vitalFormat domain.Format, shortage []byte, shortageFormat domain.Format) (domain.PipelineResult, error) {
	vitalIngest, vitalWarning, err := s.ingest(ctx, domain.SourceVital, "", vitalFormat, vital)
	if err != nil {
		return domain.PipelineResult{}, err
	}
	shortageIngest, shortageWarning, err := s.ingest(ctx, domain.SourceShortage, "", shortageFormat, shortage)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	start := time.Now()
	result := s.pipeline.Run(ctx, vitalIngest.Table, shortageIngest.Table)
	s.recordRun(ctx, "", result, time.Since(start))

	var warnings []string
	for _, w := range []string{vitalWarning, shortageWarning} {
		if w != "" {
			warnings = append(warnings, w)
		}
	}
	if len(warnings) > 0 {
		result.Warnings = append(warnings, result.Warnings...)
	}
	return result, nil
}

// SessionCount returns the number of live sessions
func (s *PipelineService) SessionCount() int {
	return s.store.Len()
}

// RunSweeper expires idle sessions every interval until ctx is done
func (s *PipelineService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

func (s *PipelineService) sweep(ctx context.Context, now time.Time) {
	expired := s.store.Sweep(now)
	for _, id := range expired {
		s.closed(ctx, id)
	}
	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "Idle sessions expired",
			slog.Int("expired", len(expired)),
			slog.Int("remaining", s.store.Len()))
	}
}
