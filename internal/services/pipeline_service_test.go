package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/internal/shared/testutil"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

const (
	vitalCSV    = "State,Year,Births\nGeorgia,2020,\"1,000\"\nGA,2021,2000\nAlabama,2020,500\n"
	shortageCSV = "State,HPSA Score\nGeorgia,5\n"
)

func newTestService(t *testing.T, pub SessionPublisher, opts PipelineServiceOptions) *PipelineService {
	t.Helper()
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 1 << 20
	}
	metrics, err := infrastructure.CreateBusinessMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return NewPipelineService(NewSessionStore(10, time.Hour), pub, metrics, discardLogger(), opts)
}

func publisherAcceptingAll() *MockSessionPublisher {
	pub := &MockSessionPublisher{}
	pub.On("PublishSession", mock.Anything, mock.Anything, mock.Anything).Return()
	pub.On("CloseSession", mock.Anything, mock.Anything).Return()
	return pub
}

func uploadBoth(t *testing.T, svc *PipelineService, id string) domain.SessionSnapshot {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Upload(ctx, id, domain.SourceVital, "vital.csv", "", []byte(vitalCSV))
	require.NoError(t, err)
	snap, err := svc.Upload(ctx, id, domain.SourceShortage, "hpsa.csv", domain.FormatCSV, []byte(shortageCSV))
	require.NoError(t, err)
	return snap
}

func TestPipelineServiceSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := publisherAcceptingAll()
	svc := newTestService(t, pub, PipelineServiceOptions{})

	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.SessionCount())

	_, err = svc.Result(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrFormRequired)

	_, err = svc.Navigate(ctx, snap.ID, domain.PageDashboard)
	assert.ErrorIs(t, err, ErrFormRequired)

	snap, err = svc.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.True(t, snap.FormCompleted)

	snap, err = svc.Navigate(ctx, snap.ID, domain.PageDashboard)
	require.NoError(t, err)
	assert.Equal(t, domain.PageDashboard, snap.ActivePage)

	snap = uploadBoth(t, svc, snap.ID)
	assert.Equal(t, domain.StatusOK, snap.Status)
	assert.Equal(t, []int{2020, 2021}, snap.Years)
	require.Contains(t, snap.Uploads, domain.SourceVital)
	assert.Equal(t, domain.FormatCSV, snap.Uploads[domain.SourceVital].Ingest.Format)
	assert.Equal(t, 3, snap.Uploads[domain.SourceVital].Ingest.Rows)
	assert.NotEmpty(t, snap.Uploads[domain.SourceVital].Ingest.Checksum)

	result, err := svc.Result(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, result.Unified.Records, 3)
	require.Len(t, result.Scored, 2)

	require.NoError(t, svc.DeleteSession(ctx, snap.ID))
	assert.ErrorIs(t, svc.DeleteSession(ctx, snap.ID), ErrSessionNotFound)
	_, err = svc.GetSession(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	pub.AssertCalled(t, "PublishSession", mock.Anything, snap.ID, mock.AnythingOfType("domain.SessionSnapshot"))
	pub.AssertCalled(t, "CloseSession", mock.Anything, snap.ID)
}

func TestPipelineServiceUploadErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, PipelineServiceOptions{MaxUploadBytes: 16})
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		source  domain.Source
		format  domain.Format
		data    string
		wantErr error
	}{
		{"unknown session", "missing", domain.SourceVital, domain.FormatCSV, "a", ErrSessionNotFound},
		{"unknown source", snap.ID, domain.Source("census"), domain.FormatCSV, "a", ErrInvalidSource},
		{"unknown format", snap.ID, domain.SourceVital, domain.Format("parquet"), "a", ErrInvalidFormat},
		{"too large", snap.ID, domain.SourceVital, domain.FormatCSV, vitalCSV, ErrUploadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.id, tt.source, "file.csv", tt.format, []byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPipelineServiceUnreadableSpreadsheetBecomesWarning(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, PipelineServiceOptions{})
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	snap, err = svc.Upload(ctx, snap.ID, domain.SourceVital, "births.xlsx", "", []byte("not a workbook"))
	require.NoError(t, err)

	info := snap.Uploads[domain.SourceVital]
	require.NotNil(t, info)
	assert.Equal(t, domain.FormatSpreadsheet, info.Ingest.Format)
	assert.Contains(t, info.Warning, "could not be read")
	assert.Zero(t, info.Ingest.Rows)
	assert.Equal(t, domain.StatusEmptyInput, snap.Status)
}

func TestPipelineServiceLogsUnreadableUpload(t *testing.T) {
	ctx := context.Background()
	logger, logs := testutil.NewTestLogger(t)
	svc := NewPipelineService(NewSessionStore(10, time.Hour), nil, nil, logger, PipelineServiceOptions{})
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.Upload(ctx, snap.ID, domain.SourceShortage, "hpsa.xlsx", "", []byte("not a workbook"))
	require.NoError(t, err)

	r, ok := logs.Find("Upload unreadable, continuing with empty table")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, r.Level)
	assert.Equal(t, "pipeline_service", r.Attrs["component"])
	assert.Equal(t, "shortage", r.Attrs["source"])
	assert.NotEmpty(t, r.Attrs["error"])
}

func TestPipelineServiceApplyFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, publisherAcceptingAll(), PipelineServiceOptions{})
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	uploadBoth(t, svc, snap.ID)

	filtered, err := svc.ApplyFilters(ctx, snap.ID, domain.Selection{
		Regions: []domain.RegionCode{domain.RegionGA},
		Years:   []int{2021},
	})
	require.NoError(t, err)
	require.Len(t, filtered.Unified.Records, 1)
	assert.Equal(t, 2021.0, *filtered.Unified.Records[0].Year)
	require.Len(t, filtered.Scored, 1)
	assert.Equal(t, "GA", filtered.Scored[0].Region)

	_, err = svc.ApplyFilters(ctx, snap.ID, domain.Selection{Regions: []domain.RegionCode{"TX"}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = svc.ApplyFilters(ctx, snap.ID, domain.Selection{Years: []int{-1}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	years, err := svc.Years(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2021}, years)
}

func TestPipelineServiceExport(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, PipelineServiceOptions{})
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	uploadBoth(t, svc, snap.ID)

	var buf bytes.Buffer
	err = svc.Export(ctx, snap.ID, domain.ExportScored, domain.ExportCSV, &buf)
	assert.ErrorIs(t, err, ErrFormRequired)

	_, err = svc.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Export(ctx, snap.ID, domain.ExportScored, domain.ExportCSV, &buf))
	assert.Equal(t, "region,total_births,gap_score,opportunity_index\nAL,500,0,0\nGA,3000,5,5\n", buf.String())

	err = svc.Export(ctx, snap.ID, domain.ExportTable("raw"), domain.ExportCSV, &buf)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	err = svc.Export(ctx, snap.ID, domain.ExportScored, domain.ExportFormat("pdf"), &buf)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPipelineServiceRunOnce(t *testing.T) {
	svc := newTestService(t, nil, PipelineServiceOptions{})

	result, err := svc.RunOnce(context.Background(), []byte(vitalCSV), domain.FormatCSV, []byte(shortageCSV), domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Len(t, result.Scored, 2)
	assert.Zero(t, svc.SessionCount())

	result, err = svc.RunOnce(context.Background(), []byte(vitalCSV), domain.FormatCSV, []byte("junk"), domain.FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoCommonKey, result.Status)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "shortage")

	_, err = svc.RunOnce(context.Background(), []byte(vitalCSV), domain.Format("json"), nil, domain.FormatCSV)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPipelineServiceSessionLimit(t *testing.T) {
	svc := NewPipelineService(NewSessionStore(1, time.Hour), nil, nil, discardLogger(), PipelineServiceOptions{})

	_, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	_, err = svc.CreateSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestPipelineServiceSweepClosesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	pub := &MockSessionPublisher{}
	svc := NewPipelineService(NewSessionStore(10, time.Minute), pub, nil, discardLogger(), PipelineServiceOptions{})

	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	pub.On("CloseSession", mock.Anything, snap.ID).Return().Once()
	svc.sweep(ctx, time.Now().Add(5*time.Minute))

	pub.AssertExpectations(t)
	assert.Zero(t, svc.SessionCount())
}

func TestPipelineServiceRunSweeperStopsOnCancel(t *testing.T) {
	svc := newTestService(t, nil, PipelineServiceOptions{})

	for _, interval := range []time.Duration{0, time.Millisecond} {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.RunSweeper(ctx, interval) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatalf("sweeper with interval %s did not stop", interval)
		}
	}
}
