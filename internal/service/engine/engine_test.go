package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/ollama/ollama/api"

	"github.com/marcus/good-drawer/internal/config"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		BaseURL:     "http://localhost:11434",
		Model:       "gpt-oss:20b",
		MaxTokens:   2000,
		Temperature: 0.9,
	}
}

func TestNewServiceCompilesDefaultChain(t *testing.T) {
	svc, err := NewService(context.Background(), testEngineConfig())
	if err != nil {
		t.Fatalf("expected offline construction to succeed, got %v", err)
	}
	if svc.DefaultModel() != "gpt-oss:20b" {
		t.Fatalf("unexpected default model %s", svc.DefaultModel())
	}
}

func TestNewServiceRejectsBadBaseURL(t *testing.T) {
	cfg := testEngineConfig()
	cfg.BaseURL = "://bad"
	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for malformed base url")
	}
}

func TestChainInputPrefixesPrompt(t *testing.T) {
	input := chainInput("a cat playing violin")
	query, ok := input["query"].(string)
	if !ok || query != "Draw: a cat playing violin" {
		t.Fatalf("unexpected query %v", input["query"])
	}
	system, ok := input["system"].(string)
	if !ok || !strings.Contains(system, `viewBox="0 0 400 400"`) {
		t.Fatalf("system prompt missing canvas definition")
	}
}

func TestIsUnavailableConnectionRefused(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	if !IsUnavailable(dialErr) {
		t.Fatalf("expected refused dial to classify as unavailable")
	}

	wrapped := &url.Error{Op: "Post", URL: "http://localhost:11434/api/chat", Err: dialErr}
	if !IsUnavailable(fmt.Errorf("failed to stream: %w", wrapped)) {
		t.Fatalf("expected wrapped transport error to classify as unavailable")
	}
}

func TestIsUnavailableStatusCodes(t *testing.T) {
	if !IsUnavailable(api.StatusError{StatusCode: 503, Status: "503 Service Unavailable"}) {
		t.Fatalf("expected 503 to classify as unavailable")
	}
	if IsUnavailable(api.StatusError{StatusCode: 400, Status: "400 Bad Request"}) {
		t.Fatalf("expected 400 to stay a generation fault")
	}
}

func TestIsUnavailableSentinel(t *testing.T) {
	if !IsUnavailable(fmt.Errorf("engine check: %w", ErrEngineUnavailable)) {
		t.Fatalf("expected sentinel to classify as unavailable")
	}
}

func TestIsUnavailableOtherErrors(t *testing.T) {
	if IsUnavailable(nil) {
		t.Fatalf("nil is not unavailable")
	}
	if IsUnavailable(errors.New("model exploded mid-stroke")) {
		t.Fatalf("expected generic failure to stay a generation fault")
	}
}
