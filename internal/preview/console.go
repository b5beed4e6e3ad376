// Package preview renders chat messages to a terminal instead of posting them.
package preview

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"TenderScanner/internal/ports"
)

var (
	accentColor = lipgloss.Color("#2DA44E")
	dimColor    = lipgloss.Color("#6E7681")

	threadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	replyStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(dimColor).
			PaddingLeft(2).
			MarginLeft(2)

	fileStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			MarginLeft(4)
)

// Console is a ChatClient that prints messages as threads.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	seq int
}

var _ ports.ChatClient = (*Console)(nil)

// NewConsole writes to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PostMessage prints a thread header or a reply and returns a synthetic timestamp.
func (c *Console) PostMessage(_ context.Context, text, threadTS string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	ts := fmt.Sprintf("preview.%06d", c.seq)
	style := threadStyle
	if threadTS != "" {
		style = replyStyle
	}
	if _, err := fmt.Fprintln(c.out, style.Render(text)); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	return ts, nil
}

// UploadFile prints a placeholder line for the attachment.
func (c *Console) UploadFile(_ context.Context, _ string, filename, title string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("📎 %s (%s) %s", filename, humanize.Bytes(uint64(len(data))), title)
	if _, err := fmt.Fprintln(c.out, fileStyle.Render(line)); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}
