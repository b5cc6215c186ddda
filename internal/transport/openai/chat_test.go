package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
)

func newTestChatter(baseURL string) *Chatter {
	return NewChatter(&Config{
		APIKey:  "test-key",
		BaseURL: baseURL + "/v1",
		Model:   "gpt-4o-mini",
		Logger:  zap.NewNop(),
	})
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Messages[1].Content != "who does payroll?" {
			t.Errorf("unexpected user message: %q", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Gusto handles payroll."}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer server.Close()

	answer, err := newTestChatter(server.URL).Complete(context.Background(), "You answer about YC companies.", "who does payroll?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != "Gusto handles payroll." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	_, err := newTestChatter(server.URL).Complete(context.Background(), "sys", "user")
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestChatter(server.URL).Complete(context.Background(), "sys", "user")
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}
