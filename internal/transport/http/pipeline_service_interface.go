package http

import (
	"context"
	"io"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// PipelineServiceInterface defines the session and pipeline operations the
// handlers depend on
type PipelineServiceInterface interface {
	CreateSession(ctx context.Context) (domain.SessionSnapshot, error)
	GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error

	SubmitForm(ctx context.Context, sessionID string) (domain.SessionSnapshot, error)
	Navigate(ctx context.Context, sessionID string, page domain.Page) (domain.SessionSnapshot, error)
	Upload(ctx context.Context, sessionID string, source domain.Source, filename string, format domain.Format, data []byte) (domain.SessionSnapshot, error)
	ApplyFilters(ctx context.Context, sessionID string, sel domain.Selection) (domain.FilteredResult, error)

	Years(ctx context.Context, sessionID string) ([]int, error)
	Result(ctx context.Context, sessionID string) (domain.FilteredResult, error)
	Export(ctx context.Context, sessionID string, table domain.ExportTable, format domain.ExportFormat, w io.Writer) error

	// Stateless single run
	RunOnce(ctx context.Context, vital []byte, vitalFormat domain.Format, shortage []byte, shortageFormat domain.Format) (domain.PipelineResult, error)
}
