package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TenderScanner/internal/config"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	var got responsesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test-123456789" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"output":[
			{"type":"web_search_call","status":"completed"},
			{"type":"message","content":[{"type":"output_text","text":"Requirements:\n"},{"type":"output_text","text":"- CVs"}]}
		]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{Endpoint: server.URL, Model: "gpt-4.1", APIKey: "sk-test-123456789", Timeout: 5 * time.Second})
	text, err := client.Complete(context.Background(), "find requirements")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Requirements:\n- CVs" {
		t.Fatalf("text = %q", text)
	}
	if got.Model != "gpt-4.1" || got.Input != "find requirements" || len(got.Tools) != 1 || got.Tools[0].Type != "web_search" {
		t.Fatalf("request = %+v", got)
	}
}

func TestOpenAIClientErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "empty") {
			_, _ = io.WriteString(w, `{"output":[]}`)
			return
		}
		http.Error(w, `{"error":"invalid key sk-test-123456789"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.LLMConfig{Endpoint: server.URL, Model: "gpt-4.1", APIKey: "sk-test-123456789", Timeout: time.Second}
	_, err := NewOpenAIClient(cfg).Complete(context.Background(), "x")
	if err == nil || strings.Contains(err.Error(), "sk-test-123456789") {
		t.Fatalf("expected redacted error, got %v", err)
	}

	cfg.Endpoint = server.URL + "/empty"
	if _, err := NewOpenAIClient(cfg).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty output")
	}

	if _, err := NewOpenAIClient(config.LLMConfig{}).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}

func TestRegistryBuild(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	client, err := reg.Build(context.Background(), config.LLMConfig{Provider: "OpenAI", Endpoint: "http://x", Model: "m", APIKey: "k"})
	if err != nil {
		t.Fatalf("Build openai: %v", err)
	}
	if _, ok := client.(*OpenAIClient); !ok {
		t.Fatalf("unexpected client type %T", client)
	}

	if _, err := reg.Build(context.Background(), config.LLMConfig{Provider: "gemini"}); err == nil {
		t.Fatal("gemini without key should fail")
	}

	_, err = reg.Build(context.Background(), config.LLMConfig{Provider: "claude"})
	if err == nil || !strings.Contains(err.Error(), "gemini, openai") {
		t.Fatalf("unexpected error for unknown provider: %v", err)
	}
}
