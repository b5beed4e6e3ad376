package preview

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConsolePrintsThread(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf)
	ctx := context.Background()

	ts, err := c.PostMessage(ctx, "Tender Details", "")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	next, err := c.PostMessage(ctx, "Summary", ts)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if ts == "" || ts == next {
		t.Fatalf("timestamps %q %q", ts, next)
	}
	if err := c.UploadFile(ctx, ts, "tor.pdf", "tor.pdf", make([]byte, 2048)); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Tender Details", "Summary", "tor.pdf", "2.0 kB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
