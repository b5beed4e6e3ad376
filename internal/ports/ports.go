package ports

import (
	"context"
	"time"

	"TenderScanner/internal/domain"
)

// TenderSource talks to the tender-listing service.
type TenderSource interface {
	Search(ctx context.Context, window domain.FetchWindow) ([]string, error)
	Tender(ctx context.Context, id string) (domain.TenderRecord, error)
	Document(ctx context.Context, tenderID string, doc domain.Attachment) (domain.AttachmentBlob, error)
}

// LLMClient sends one prompt to a web-search capable model and returns its text answer.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RequirementResearcher summarises submission requirements reachable from a tender page.
type RequirementResearcher interface {
	Research(ctx context.Context, tenderURL string) (string, error)
}

// BidAnalyzer produces a go/no-go recommendation for a tender.
type BidAnalyzer interface {
	Analyze(ctx context.Context, tender *domain.EnrichedTender) (domain.Analysis, error)
}

// ChatClient posts to the team channel. Implementations no-op (returning an empty
// thread id and nil error) when they are not configured.
type ChatClient interface {
	PostMessage(ctx context.Context, text, threadTS string) (string, error)
	UploadFile(ctx context.Context, threadTS, filename, title string, data []byte) error
}

// Notifier publishes a tender's notification bundle.
type Notifier interface {
	Publish(ctx context.Context, bundle domain.NotificationBundle) (string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
