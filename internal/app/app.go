package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"TenderScanner/internal/config"
	"TenderScanner/internal/domain"
	"TenderScanner/internal/infrastructure/devaid"
	"TenderScanner/internal/infrastructure/llm"
	"TenderScanner/internal/infrastructure/scheduler"
	"TenderScanner/internal/infrastructure/slack"
	"TenderScanner/internal/logging"
	"TenderScanner/internal/notify"
	"TenderScanner/internal/ports"
	"TenderScanner/internal/preview"
	"TenderScanner/internal/research"
	"TenderScanner/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Options changes how the application is wired.
type Options struct {
	// DryRun renders notifications to Out instead of posting them to Slack.
	DryRun bool
	Out    io.Writer
	// Registry overrides the LLM provider registry.
	Registry *llm.Registry
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.DevAid.APIKey == "" {
		baseLogger.Warn("DEVAID_API_KEY is not set, tender search will be rejected")
	}

	registry := opts.Registry
	if registry == nil {
		registry = llm.DefaultRegistry()
	}
	model, err := registry.Build(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	source := devaid.NewClient(cfg.DevAid, cfg.Search, nil, baseLogger.With("component", "devaid"))

	var chat ports.ChatClient
	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		chat = preview.NewConsole(out)
	} else {
		if !cfg.Slack.Enabled() {
			baseLogger.Warn("SLACK_BOT_TOKEN or SLACK_CHANNEL_ID missing, notifications are disabled")
		}
		chat = slack.NewClient(cfg.Slack, nil, baseLogger)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Researcher: research.NewRequirementResearcher(model),
		Analyzer:   research.NewGoNoGoAnalyzer(model, cfg.Bidder, cfg.LLM.AnalysisCharBudget, baseLogger.With("component", "gonogo")),
		Notifier:   notify.NewPublisher(chat, baseLogger.With("component", "publisher")),
		Format: notify.FormatOptions{
			BotName:      cfg.Pipeline.BotName,
			SummaryLimit: cfg.Pipeline.SummaryLimit,
		},
		MaxTenders: cfg.Pipeline.MaxTenders,
		Logger:     baseLogger,
		Clock: func() time.Time {
			return time.Now().In(cfg.Scheduler.Location())
		},
	})
	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

// RunOnce performs a single cycle for today.
func (a *Application) RunOnce(ctx context.Context) map[string]*domain.EnrichedTender {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.RunCycle(ctx, now)
}

// RunScheduled runs cycles on the configured cron schedule until ctx is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.cfg.Scheduler.PollInterval,
		a.logger,
	)
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, a.pipeline, a.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}
