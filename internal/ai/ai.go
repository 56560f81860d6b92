// Package ai speaks the OpenAI-compatible chat completion protocol and
// translates stored conversation history into its wire format.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message is one turn handed to the completion endpoint. A turn with Parts
// is serialized as structured multimodal content; otherwise Text is sent as
// a plain string.
type Message struct {
	Role  string
	Text  string
	Parts []Part
}

// PartKind enumerates the wire content part types.
type PartKind string

const (
	PartText       PartKind = "text"
	PartImageURL   PartKind = "image_url"
	PartVideoURL   PartKind = "video_url"
	PartInputAudio PartKind = "input_audio"
)

// Part is one content fragment of a structured turn. Media kinds carry a
// base64 data URI in URL.
type Part struct {
	Kind PartKind
	Text string
	URL  string
}

type urlRef struct {
	URL string `json:"url"`
}

func (p Part) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PartText:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{"text", p.Text})
	case PartImageURL:
		return json.Marshal(struct {
			Type     string `json:"type"`
			ImageURL urlRef `json:"image_url"`
		}{"image_url", urlRef{p.URL}})
	case PartVideoURL:
		return json.Marshal(struct {
			Type     string `json:"type"`
			VideoURL urlRef `json:"video_url"`
		}{"video_url", urlRef{p.URL}})
	case PartInputAudio:
		return json.Marshal(struct {
			Type       string `json:"type"`
			InputAudio urlRef `json:"input_audio"`
		}{"input_audio", urlRef{p.URL}})
	}
	return nil, fmt.Errorf("ai: unknown part kind %q", p.Kind)
}

// Streamer delivers a completion as incremental text deltas. The sequence is
// finite and not restartable; both channels are closed when it ends.
type Streamer interface {
	StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}
