package devaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/time/rate"

	"TenderScanner/internal/config"
	"TenderScanner/internal/domain"
	"TenderScanner/internal/ports"
	"TenderScanner/internal/redact"
)

const (
	apiKeyHeader   = "X-API-KEY"
	maxSnippet     = 256
	maxDocumentLen = 64 << 20
)

// Client is the DevelopmentAid external API adapter.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	search    config.SearchConfig
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	maxDoc    int64
}

var _ ports.TenderSource = (*Client)(nil)

// NewClient builds a client from configuration. A nil httpClient gets one with the
// configured timeout.
func NewClient(cfg config.DevAidConfig, search config.SearchConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		search:    search,
		http:      httpClient,
		limiter:   limiter,
		logger:    logger,
		maxDoc:    maxDocumentLen,
	}
}

// Search runs the configured filter over the window and returns tender ids, most
// recently posted first.
func (c *Client) Search(ctx context.Context, window domain.FetchWindow) ([]string, error) {
	body := buildSearchRequest(c.search, window)

	var resp searchResponse
	if err := c.doJSON(ctx, "search", http.MethodPost, c.endpoint("tenders", "search"), body, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID == "" {
			continue
		}
		ids = append(ids, item.ID.String())
	}
	c.debug("search done", "from", window.From(), "till", window.Till(), "countries", strings.Join(c.search.CountryNames(), ", "), "items", len(ids), "total", resp.Total)
	return ids, nil
}

// Tender fetches the full record of one tender.
func (c *Client) Tender(ctx context.Context, id string) (domain.TenderRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.TenderRecord{}, &domain.ValidationError{Field: "tender id", Reason: "is empty"}
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "tender", http.MethodGet, c.endpoint("tenders", id), nil, &raw); err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return domain.TenderRecord{}, &domain.NotFoundError{Resource: "tender", ID: id}
		}
		return domain.TenderRecord{}, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return domain.TenderRecord{}, &domain.NotFoundError{Resource: "tender", ID: id}
	}

	var record domain.TenderRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return domain.TenderRecord{}, &domain.FormatError{Op: "tender", Err: err}
	}
	if record.ID == "" {
		record.ID = domain.ID(id)
	}
	return record, nil
}

// Document downloads one attachment listed on a tender. Bodies over the size limit are
// rejected rather than truncated.
func (c *Client) Document(ctx context.Context, tenderID string, doc domain.Attachment) (domain.AttachmentBlob, error) {
	docID := strings.TrimSpace(doc.ID.String())
	if docID == "" {
		return domain.AttachmentBlob{}, &domain.ValidationError{Field: "document id", Reason: "is missing"}
	}

	resp, err := c.do(ctx, "document", http.MethodGet, c.endpoint("tenders", tenderID, "documents", docID), nil, "*/*")
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return domain.AttachmentBlob{}, &domain.NotFoundError{Resource: "document", ID: docID}
		}
		return domain.AttachmentBlob{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDoc+1))
	if err != nil {
		return domain.AttachmentBlob{}, &domain.TransportError{Op: "document", Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > c.maxDoc {
		return domain.AttachmentBlob{}, &domain.TransportError{
			Op:  "document",
			Err: fmt.Errorf("document %s exceeds %d bytes", docID, c.maxDoc),
		}
	}

	return domain.AttachmentBlob{
		Filename: documentFilename(tenderID, doc),
		Data:     data,
	}, nil
}

func documentFilename(tenderID string, doc domain.Attachment) string {
	if name := strings.TrimSpace(doc.FileName); name != "" {
		return name
	}
	if name := strings.TrimSpace(doc.Name); name != "" {
		return name
	}
	return fmt.Sprintf("tender-%s-%s", tenderID, doc.ID)
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.baseURL + "/" + path.Join(escaped...)
}

func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, payload, v any) error {
	resp, err := c.do(ctx, op, method, endpoint, payload, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
		return &domain.FormatError{Op: op, ContentType: contentType, Err: errors.New("expected JSON")}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.FormatError{Op: op, ContentType: contentType, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// do sends one request and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any, accept string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.TransportError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new %s request: %w", op, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: errors.New(redact.Secrets(err.Error()))}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxSnippet+1))
		_ = resp.Body.Close()
		return nil, &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    redact.Snippet(snippet, maxSnippet),
		}
	}
	return resp, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
