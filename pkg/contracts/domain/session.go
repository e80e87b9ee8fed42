package domain

import "time"

// Page is the presentation page a session is currently on
type Page string

const (
	PageHome           Page = "home"
	PageDashboard      Page = "dashboard"
	PageGapOpportunity Page = "gap-opportunity"
	PageAIInsights     Page = "ai-insights"
	PageDownloadCenter Page = "download-center"
)

// AllPages lists the navigable pages in menu order
var AllPages = []Page{PageHome, PageDashboard, PageGapOpportunity, PageAIInsights, PageDownloadCenter}

// IsValid reports whether p is a known page
func (p Page) IsValid() bool {
	for _, known := range AllPages {
		if p == known {
			return true
		}
	}
	return false
}

// RequiresForm reports whether the page is gated behind the access form
func (p Page) RequiresForm() bool {
	return p != PageHome
}

// UploadInfo describes the latest upload for one source
type UploadInfo struct {
	Filename   string       `json:"filename"`
	Size       int          `json:"size"`
	Ingest     IngestResult `json:"ingest"`
	UploadedAt time.Time    `json:"uploaded_at"`
	Warning    string       `json:"warning,omitempty"`
}

// SessionSnapshot is a point-in-time copy of a session, safe to serialize
type SessionSnapshot struct {
	ID            string                 `json:"id"`
	FormCompleted bool                   `json:"form_completed"`
	ActivePage    Page                   `json:"active_page"`
	Uploads       map[Source]*UploadInfo `json:"uploads"`
	Selection     Selection              `json:"selection"`
	Status        PipelineStatus         `json:"status,omitempty"`
	Years         []int                  `json:"years"`
	Warnings      []string               `json:"warnings,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
