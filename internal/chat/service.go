// Package chat drives one generation request end to end: history load,
// provider streaming, cooperative cancellation, persistence and change
// notification.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/abhishekkrthakur/aiaio/internal/ai"
	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

// Registry is the slice of the session hub the orchestrator needs. *hub.Hub
// satisfies it; tests substitute fakes.
type Registry interface {
	SetGenerating(clientID string, generating bool)
	ShouldStop(clientID string) bool
	Broadcast(ev hub.Event)
}

type Service struct {
	repo     *store.Repo
	registry Registry

	// newStreamer builds the provider client for one generation; replaced in
	// tests with scripted streams.
	newStreamer func(ai.GenerationConfig) ai.Streamer
}

func NewService(repo *store.Repo, registry Registry) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		newStreamer: func(cfg ai.GenerationConfig) ai.Streamer {
			return ai.NewClient(cfg)
		},
	}
}

type ChatRequest struct {
	ConversationID string
	ClientID       string
	Message        string
	SystemPrompt   string
	Attachments    []store.AttachmentInput
}

type RegenerateRequest struct {
	ConversationID string
	ClientID       string
	SystemPrompt   string
	TargetID       string
}

// Stream is an in-flight generation. Chunks is unbuffered: the producer
// yields after every forwarded chunk, so cancellation takes effect with at
// most one chunk of latency. Err must be read after Chunks is drained.
type Stream struct {
	Chunks <-chan string
	errs   <-chan error
}

func (s *Stream) Err() error {
	return <-s.errs
}

func (s *Service) generationConfig(ctx context.Context) (ai.GenerationConfig, error) {
	p, err := s.repo.DefaultProvider(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ai.GenerationConfig{}, fmt.Errorf("no default provider: %w", common.ErrNotConfigured)
		}
		return ai.GenerationConfig{}, err
	}
	m, err := s.repo.DefaultModel(ctx, p.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ai.GenerationConfig{}, fmt.Errorf("no default model for provider: %w", common.ErrNotConfigured)
		}
		return ai.GenerationConfig{}, err
	}
	return ai.GenerationConfig{
		Host:        p.Host,
		APIKey:      p.APIKey,
		Model:       m.ModelName,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxTokens:   p.MaxTokens,
	}, nil
}

func lastSystemPrompt(history []store.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == store.RoleSystem {
			return history[i].Content
		}
	}
	return ""
}

// Chat runs an append-mode generation. Pre-flight failures (missing default
// provider/model, unreadable attachments, storage errors) are returned
// before any streaming begins; everything after arrives on the Stream.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*Stream, error) {
	cfg, err := s.generationConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.EnsureConversation(ctx, req.ConversationID); err != nil {
		return nil, err
	}

	history, err := s.repo.History(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	// A conversation never reaches a user message without a system message,
	// and a changed prompt is appended as a fresh system turn.
	if len(history) == 0 || lastSystemPrompt(history) != req.SystemPrompt {
		if _, err := s.repo.AddMessage(ctx, req.ConversationID, store.RoleSystem, req.SystemPrompt, store.ContentText, nil); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.AddMessage(ctx, req.ConversationID, store.RoleUser, req.Message, store.ContentText, req.Attachments); err != nil {
		return nil, err
	}

	history, err = s.repo.History(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	wire, err := ai.BuildMessages(history)
	if err != nil {
		return nil, err
	}

	firstTurn := len(history) == 2 &&
		history[0].Role == store.RoleSystem &&
		history[1].Role == store.RoleUser

	out := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		full, outcome := s.consume(ctx, cfg, req.ClientID, wire, out)
		switch outcome {
		case outcomeUpstreamError:
			errs <- full.err
			return

		case outcomeTransportCancelled:
			// The caller is gone; keep what was generated so far.
			if full.text != "" {
				if _, err := s.repo.AddMessage(ctx, req.ConversationID, store.RoleAssistant, full.text, store.ContentText, nil); err != nil {
					log.Printf("chat: save partial response conv=%s err=%v", req.ConversationID, err)
				}
			}
			errs <- full.err
			return
		}

		// Clean completion and user stop both persist the accumulated text;
		// a stop merely truncates the reply.
		msgID, err := s.repo.AddMessage(ctx, req.ConversationID, store.RoleAssistant, full.text, store.ContentText, nil)
		if err != nil {
			errs <- err
			return
		}
		s.registry.Broadcast(hub.MessageAdded(req.ConversationID, msgID))

		if firstTurn {
			s.runSummary(ctx, cfg, req.ClientID, req.ConversationID, history)
		}
	}()

	return &Stream{Chunks: out, errs: errs}, nil
}

// Regenerate replaces the target message's content using only history
// strictly before it. A cancelled regeneration (stop or transport drop)
// leaves the target untouched; only clean completion writes.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (*Stream, error) {
	cfg, err := s.generationConfig(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.HistoryBefore(ctx, req.ConversationID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no conversation history: %w", common.ErrNotFound)
	}

	if lastSystemPrompt(history) != req.SystemPrompt {
		if _, err := s.repo.AddMessage(ctx, req.ConversationID, store.RoleSystem, req.SystemPrompt, store.ContentText, nil); err != nil {
			return nil, err
		}
	}

	wire, err := ai.BuildMessages(history)
	if err != nil {
		return nil, err
	}

	out := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		full, outcome := s.consume(ctx, cfg, req.ClientID, wire, out)
		switch outcome {
		case outcomeUpstreamError, outcomeTransportCancelled:
			errs <- full.err
			return
		case outcomeUserStopped:
			return
		}

		if err := s.repo.EditMessage(ctx, req.TargetID, full.text); err != nil {
			errs <- err
			return
		}
		s.registry.Broadcast(hub.MessageEdited(req.TargetID, full.text, string(store.RoleAssistant)))
	}()

	return &Stream{Chunks: out, errs: errs}, nil
}

type outcome int

const (
	outcomeComplete outcome = iota
	outcomeUserStopped
	outcomeTransportCancelled
	outcomeUpstreamError
)

type result struct {
	text string
	err  error
}

// consume runs one provider stream, forwarding chunks to out. Before each
// forward it checks the registry stop flag and the request context; each
// forward blocks until the caller has taken the chunk, which is the yield
// point that keeps cancellation latency at one chunk.
func (s *Service) consume(ctx context.Context, cfg ai.GenerationConfig, clientID string, wire []ai.Message, out chan<- string) (result, outcome) {
	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.registry.SetGenerating(clientID, true)
	defer s.registry.SetGenerating(clientID, false)

	pChunks, pErrs := s.newStreamer(cfg).StreamChat(genCtx, wire)

	var b strings.Builder
	for chunk := range pChunks {
		if s.registry.ShouldStop(clientID) {
			log.Printf("chat: stopping generation for client=%s", clientID)
			cancel()
			return result{text: b.String()}, outcomeUserStopped
		}
		select {
		case out <- chunk:
			b.WriteString(chunk)
		case <-ctx.Done():
			cancel()
			return result{text: b.String(), err: ctx.Err()}, outcomeTransportCancelled
		}
	}

	// The provider stream can also end because the request context died
	// while we were waiting on the next token.
	if ctx.Err() != nil {
		return result{text: b.String(), err: ctx.Err()}, outcomeTransportCancelled
	}

	select {
	case err := <-pErrs:
		if err != nil {
			log.Printf("chat: upstream stream failed client=%s err=%v", clientID, err)
			return result{err: err}, outcomeUpstreamError
		}
	default:
	}

	return result{text: b.String()}, outcomeComplete
}
