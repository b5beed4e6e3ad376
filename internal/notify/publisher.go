package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TenderScanner/internal/domain"
	"TenderScanner/internal/ports"
)

// Publisher posts a bundle as one chat thread: the header opens it, everything else
// replies to it.
type Publisher struct {
	chat   ports.ChatClient
	logger *slog.Logger
}

var _ ports.Notifier = (*Publisher)(nil)

// NewPublisher wires the chat client.
func NewPublisher(chat ports.ChatClient, logger *slog.Logger) *Publisher {
	return &Publisher{chat: chat, logger: logger}
}

// Publish posts the header, then the remaining segments and attachments in the header's
// thread. The first failure aborts the rest and is returned. It returns the thread
// timestamp.
func (p *Publisher) Publish(ctx context.Context, bundle domain.NotificationBundle) (string, error) {
	if p.chat == nil {
		return "", fmt.Errorf("publish tender %s: no chat client configured", bundle.TenderID)
	}

	threadTS, err := p.chat.PostMessage(ctx, bundle.Header, "")
	if err != nil {
		return "", fmt.Errorf("publish tender %s header: %w", bundle.TenderID, err)
	}

	replies := []struct {
		name string
		text string
	}{
		{"summary", bundle.Summary},
		{"requirements", bundle.Requirements},
		{"recommendation", bundle.Recommendation},
	}
	for _, r := range replies {
		if strings.TrimSpace(r.text) == "" {
			continue
		}
		if _, err := p.chat.PostMessage(ctx, r.text, threadTS); err != nil {
			return threadTS, fmt.Errorf("publish tender %s %s: %w", bundle.TenderID, r.name, err)
		}
	}

	for _, att := range bundle.Attachments {
		if err := p.chat.UploadFile(ctx, threadTS, att.Filename, att.Filename, att.Data); err != nil {
			return threadTS, fmt.Errorf("publish tender %s attachment %s: %w", bundle.TenderID, att.Filename, err)
		}
	}

	if p.logger != nil {
		p.logger.Info("tender published", "tender_id", bundle.TenderID, "thread_ts", threadTS, "attachments", len(bundle.Attachments))
	}
	return threadTS, nil
}
