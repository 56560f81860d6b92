package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseServer(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["stream"] != true {
			t.Errorf("stream flag not set")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func collect(t *testing.T, chunks <-chan string, errs <-chan error) (string, error) {
	t.Helper()
	var b strings.Builder
	for c := range chunks {
		b.WriteString(c)
	}
	return b.String(), <-errs
}

func TestStreamChatCollectsDeltas(t *testing.T) {
	srv := sseServer(t, []string{"Hel", "lo", "!"})
	defer srv.Close()

	c := NewClient(GenerationConfig{Host: srv.URL, Model: "m", MaxTokens: 64})
	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Text: "hi"}})

	got, err := collect(t, chunks, errs)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got != "Hello!" {
		t.Fatalf("expected %q, got %q", "Hello!", got)
	}
}

func TestStreamChatUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(GenerationConfig{Host: srv.URL, Model: "m"})
	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Text: "hi"}})

	got, err := collect(t, chunks, errs)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("error lost upstream detail: %v", err)
	}
	if got != "" {
		t.Fatalf("no chunks expected, got %q", got)
	}
}

func TestStreamChatInlineErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"context length exceeded\"}}\n\n")
	}))
	defer srv.Close()

	c := NewClient(GenerationConfig{Host: srv.URL, Model: "m"})
	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Text: "hi"}})

	got, err := collect(t, chunks, errs)
	if err == nil || !strings.Contains(err.Error(), "context length exceeded") {
		t.Fatalf("expected inline error, got %v", err)
	}
	if got != "par" {
		t.Fatalf("expected chunks before the error, got %q", got)
	}
}

func TestStreamChatMissingModel(t *testing.T) {
	c := NewClient(GenerationConfig{Host: "http://localhost:1", Model: "  "})
	chunks, errs := c.StreamChat(context.Background(), nil)
	if _, err := collect(t, chunks, errs); err == nil {
		t.Fatalf("expected error for empty model")
	}
}
