package chat

import (
	"context"
	"log"
	"strings"

	"github.com/abhishekkrthakur/aiaio/internal/ai"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

// runSummary generates and persists the conversation summary after the first
// assistant reply. Failures are logged and swallowed: the summary must never
// fail the primary response.
func (s *Service) runSummary(ctx context.Context, cfg ai.GenerationConfig, clientID, conversationID string, history []store.Message) {
	var userContents []string
	for _, m := range history {
		if m.Role == store.RoleUser {
			userContents = append(userContents, m.Content)
		}
	}

	wire := []ai.Message{
		{Role: string(store.RoleSystem), Text: store.SummaryPromptText},
		{Role: string(store.RoleUser), Text: strings.Join(userContents, "\n")},
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.registry.SetGenerating(clientID, true)
	defer s.registry.SetGenerating(clientID, false)

	pChunks, pErrs := s.newStreamer(cfg).StreamChat(genCtx, wire)

	var b strings.Builder
	for chunk := range pChunks {
		if s.registry.ShouldStop(clientID) {
			cancel()
			break
		}
		b.WriteString(chunk)
	}

	select {
	case err := <-pErrs:
		if err != nil {
			log.Printf("chat: summary generation failed conv=%s err=%v", conversationID, err)
			return
		}
	default:
	}

	summary := strings.TrimSpace(b.String())
	if err := s.repo.UpdateConversationSummary(ctx, conversationID, summary); err != nil {
		log.Printf("chat: save summary conv=%s err=%v", conversationID, err)
		return
	}
	s.registry.Broadcast(hub.SummaryUpdated(conversationID, summary))
}
