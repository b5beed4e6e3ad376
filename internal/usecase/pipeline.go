package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TenderScanner/internal/domain"
	"TenderScanner/internal/logging"
	"TenderScanner/internal/notify"
	"TenderScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.TenderSource
	Researcher ports.RequirementResearcher
	Analyzer   ports.BidAnalyzer
	Notifier   ports.Notifier
	Format     notify.FormatOptions
	MaxTenders int
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Pipeline implements the tender-ingestion workflow.
type Pipeline struct {
	source     ports.TenderSource
	researcher ports.RequirementResearcher
	analyzer   ports.BidAnalyzer
	notifier   ports.Notifier
	format     notify.FormatOptions
	maxTenders int
	logger     *slog.Logger
	clock      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		researcher: deps.Researcher,
		analyzer:   deps.Analyzer,
		notifier:   deps.Notifier,
		format:     deps.Format,
		maxTenders: deps.MaxTenders,
		logger:     logger.With("component", "pipeline"),
		clock:      clock,
	}
}

// RunCycle searches the fetch window ending on day, caps the result and processes every
// tender. A failed search is logged and yields an empty cycle.
func (p *Pipeline) RunCycle(ctx context.Context, day time.Time) map[string]*domain.EnrichedTender {
	if p.source == nil {
		return map[string]*domain.EnrichedTender{}
	}

	runID := uuid.NewString()
	ctx = withRunLogger(ctx, p.logger.With("run_id", runID))
	logger := loggerFrom(ctx, p.logger)

	window := domain.NewFetchWindow(day)
	ids, err := p.source.Search(ctx, window)
	if err != nil {
		logger.Warn("tender search failed", "from", window.From(), "till", window.Till(), "error", err)
		return map[string]*domain.EnrichedTender{}
	}
	logger.Info("tenders found", "from", window.From(), "till", window.Till(), "count", len(ids))

	if p.maxTenders > 0 && len(ids) > p.maxTenders {
		ids = ids[:p.maxTenders]
	}
	return p.ProcessTenders(ctx, ids)
}

// ProcessTenders enriches and publishes each tender in order. Tenders whose detail fetch
// fails are left out of the result; every later failure degrades to a placeholder.
func (p *Pipeline) ProcessTenders(ctx context.Context, ids []string) map[string]*domain.EnrichedTender {
	logger := loggerFrom(ctx, p.logger)
	results := make(map[string]*domain.EnrichedTender, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.Warn("cycle cancelled", "remaining", len(ids)-i, "error", err)
			break
		}

		tender, err := p.processOne(ctx, logger.With("tender_id", id), id)
		if err != nil {
			logger.Error("tender skipped", "tender_id", id, "error", err)
			continue
		}
		results[id] = tender
		p.publish(ctx, logger.With("tender_id", id), tender)
	}

	logger.Info("cycle finished", "requested", len(ids), "processed", len(results))
	return results
}

func (p *Pipeline) processOne(ctx context.Context, logger *slog.Logger, id string) (tender *domain.EnrichedTender, err error) {
	defer func() {
		if r := recover(); r != nil {
			tender, err = nil, fmt.Errorf("panic while fetching tender detail: %v", r)
		}
	}()

	record, err := p.source.Tender(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch detail: %w", err)
	}
	tender = domain.NewEnrichedTender(record)

	guard(logger, "requirements", func() { p.research(ctx, logger, tender) })
	guard(logger, "analysis", func() { p.analyze(ctx, logger, tender) })
	guard(logger, "documents", func() { p.downloadDocuments(ctx, logger, id, tender) })
	return tender, nil
}

// guard runs one enrichment stage. A panic is logged and leaves the tender with whatever
// the stage had set so far.
func guard(logger *slog.Logger, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("enrichment stage panicked", "stage", stage, "panic", r)
		}
	}()
	fn()
}

func (p *Pipeline) research(ctx context.Context, logger *slog.Logger, tender *domain.EnrichedTender) {
	if p.researcher == nil {
		return
	}
	summary, err := p.researcher.Research(ctx, tender.URL)
	if err != nil {
		logger.Warn("requirement research failed", "error", err)
		return
	}
	if summary != "" {
		tender.RequirementsSummary = summary
	}
}

func (p *Pipeline) analyze(ctx context.Context, logger *slog.Logger, tender *domain.EnrichedTender) {
	if p.analyzer == nil {
		return
	}
	analysis, err := p.analyzer.Analyze(ctx, tender)
	if err != nil {
		logger.Warn("go/no-go analysis failed", "error", err)
		return
	}
	tender.Analysis = analysis
}

func (p *Pipeline) downloadDocuments(ctx context.Context, logger *slog.Logger, id string, tender *domain.EnrichedTender) {
	for _, doc := range tender.Documents {
		blob, err := p.source.Document(ctx, id, doc)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				logger.Info("document not found", "document_id", doc.ID)
			} else {
				logger.Warn("document download failed", "document_id", doc.ID, "error", err)
			}
			continue
		}
		if len(blob.Data) == 0 {
			logger.Info("document empty", "document_id", doc.ID)
			continue
		}
		tender.Attachments = append(tender.Attachments, blob)
	}
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, tender *domain.EnrichedTender) {
	if p.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish panicked", "panic", r)
		}
	}()

	bundle := notify.Format(tender, p.clock(), p.format)
	if _, err := p.notifier.Publish(ctx, bundle); err != nil {
		logger.Error("publish failed", "error", err)
	}
}

type runLoggerKey struct{}

func withRunLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, runLoggerKey{}, logger)
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(runLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}
