package slack

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	slackgo "github.com/slack-go/slack"

	"TenderScanner/internal/config"
	"TenderScanner/internal/domain"
	"TenderScanner/internal/logging"
	"TenderScanner/internal/ports"
	"TenderScanner/internal/redact"
)

// Client posts to one Slack channel with a bot token.
type Client struct {
	api       *slackgo.Client
	channelID string
	logger    *slog.Logger
}

var _ ports.ChatClient = (*Client)(nil)

// NewClient registers bot token and channel. Without both, every call is a logged no-op.
func NewClient(cfg config.SlackConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Client{channelID: strings.TrimSpace(cfg.ChannelID), logger: logger.With("component", "slack")}
	if !cfg.Enabled() {
		return c
	}

	opts := []slackgo.Option{}
	if httpClient != nil {
		opts = append(opts, slackgo.OptionHTTPClient(httpClient))
	}
	if apiURL := strings.TrimSpace(cfg.APIURL); apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slackgo.OptionAPIURL(apiURL))
	}
	c.api = slackgo.New(strings.TrimSpace(cfg.BotToken), opts...)
	return c
}

// PostMessage sends text, as a thread reply when threadTS is set, and returns the
// message timestamp.
func (c *Client) PostMessage(ctx context.Context, text, threadTS string) (string, error) {
	if c.api == nil {
		c.logger.Warn("slack is not configured, message dropped", "chars", len(text))
		return "", nil
	}

	opts := []slackgo.MsgOption{slackgo.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slackgo.MsgOptionTS(threadTS))
	}
	_, ts, err := c.api.PostMessageContext(ctx, c.channelID, opts...)
	if err != nil {
		return "", wrap("chat.postMessage", err)
	}
	return ts, nil
}

// UploadFile attaches data to the thread.
func (c *Client) UploadFile(ctx context.Context, threadTS, filename, title string, data []byte) error {
	if c.api == nil {
		c.logger.Warn("slack is not configured, file dropped", "filename", filename)
		return nil
	}
	if len(data) == 0 {
		return &domain.ValidationError{Field: "file " + filename, Reason: "is empty"}
	}

	_, err := c.api.UploadFileV2Context(ctx, slackgo.UploadFileV2Parameters{
		Channel:         c.channelID,
		ThreadTimestamp: threadTS,
		Filename:        filename,
		Title:           title,
		FileSize:        len(data),
		Reader:          bytes.NewReader(data),
	})
	if err != nil {
		return wrap("files.uploadV2", err)
	}
	return nil
}

func wrap(op string, err error) error {
	te := &domain.TransportError{Op: op, Err: errors.New(redact.Secrets(err.Error()))}
	var rl *slackgo.RateLimitedError
	if errors.As(err, &rl) {
		te.StatusCode = http.StatusTooManyRequests
		te.Status = "429 Too Many Requests"
	}
	return te
}
