package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenerationConfig is the resolved provider + model configuration for one
// stream invocation.
type GenerationConfig struct {
	Host        string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client streams completions from an OpenAI-compatible endpoint.
type Client struct {
	cfg GenerationConfig
	hc  *http.Client
}

// NewClient builds a streaming client. No global timeout is set; the
// caller's context bounds the request.
func NewClient(cfg GenerationConfig) *Client {
	return &Client{cfg: cfg, hc: &http.Client{}}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatReq struct {
	Model               string        `json:"model"`
	Messages            []wireMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p"`
	Stream              bool          `json:"stream"`
}

type chatStreamResp struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func toWire(messages []Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		if len(m.Parts) > 0 {
			out = append(out, wireMessage{Role: m.Role, Content: m.Parts})
			continue
		}
		out = append(out, wireMessage{Role: m.Role, Content: m.Text})
	}
	return out
}

// StreamChat issues one streaming completion call. Only non-null text deltas
// are surfaced. Provider-side errors abort the sequence; no retries. The
// response body is released exactly once, when the goroutine exits.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		model := strings.TrimSpace(c.cfg.Model)
		if model == "" {
			errs <- errors.New("openai: model is required")
			return
		}

		reqBody := chatReq{
			Model:               model,
			Messages:            toWire(messages),
			MaxCompletionTokens: c.cfg.MaxTokens,
			Temperature:         c.cfg.Temperature,
			TopP:                c.cfg.TopP,
			Stream:              true,
		}

		b, err := json.Marshal(reqBody)
		if err != nil {
			errs <- err
			return
		}

		url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.cfg.Host, "/"))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			errs <- err
			return
		}
		req.Header.Set("Content-Type", "application/json")

		// Some servers reject an empty bearer token outright.
		key := c.cfg.APIKey
		if key == "" {
			key = "empty"
		}
		req.Header.Set("Authorization", "Bearer "+key)

		resp, err := c.hc.Do(req)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
			msg := strings.TrimSpace(string(body))
			if msg == "" {
				msg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			errs <- fmt.Errorf("openai: %s", msg)
			return
		}

		sc := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, 2*1024*1024)

		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}
			var decoded chatStreamResp
			if err := json.Unmarshal([]byte(data), &decoded); err != nil {
				errs <- err
				return
			}
			if decoded.Error != nil && decoded.Error.Message != "" {
				errs <- errors.New(decoded.Error.Message)
				return
			}
			if len(decoded.Choices) == 0 {
				continue
			}
			delta := decoded.Choices[0].Delta.Content
			if delta != nil && *delta != "" {
				select {
				case chunks <- *delta:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := sc.Err(); err != nil {
			errs <- err
			return
		}
	}()

	return chunks, errs
}
