package store

import (
	"context"
	"errors"
	"testing"

	"github.com/abhishekkrthakur/aiaio/internal/common"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := Open("file:"+t.Name()+"?mode=memory&cache=shared", SeedConfig{
		ProviderHost: "http://localhost:8000/v1",
		ModelName:    "test-model",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return NewRepo(db)
}

func TestHistoryOrdering(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, err := repo.CreateConversation(ctx, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	var ids []string
	for _, turn := range []struct {
		role    Role
		content string
	}{
		{RoleSystem, "You are a helpful assistant."},
		{RoleUser, "hello"},
		{RoleAssistant, "hi there"},
	} {
		id, err := repo.AddMessage(ctx, convID, turn.role, turn.content, ContentText, nil)
		if err != nil {
			t.Fatalf("add message: %v", err)
		}
		ids = append(ids, id)
	}

	history, err := repo.History(ctx, convID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	for i, id := range ids {
		if history[i].MessageID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, history[i].MessageID)
		}
	}
	// ULIDs from the same process are strictly increasing, so id order is
	// insertion order even when created_at collides.
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("message ids not increasing: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestHistoryMissingConversationIsEmpty(t *testing.T) {
	repo := openTestRepo(t)

	history, err := repo.History(context.Background(), "no-such-conversation")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}
}

func TestHistoryBeforeExcludesTarget(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, _ := repo.CreateConversation(ctx, nil)
	repo.AddMessage(ctx, convID, RoleSystem, "sys", ContentText, nil)
	repo.AddMessage(ctx, convID, RoleUser, "question", ContentText, nil)
	target, _ := repo.AddMessage(ctx, convID, RoleAssistant, "old answer", ContentText, nil)
	repo.AddMessage(ctx, convID, RoleUser, "followup", ContentText, nil)

	history, err := repo.HistoryBefore(ctx, convID, target)
	if err != nil {
		t.Fatalf("history before: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages before target, got %d", len(history))
	}
	for _, m := range history {
		if m.MessageID == target {
			t.Fatalf("target message leaked into history")
		}
	}
	if history[1].Content != "question" {
		t.Fatalf("expected last prior message %q, got %q", "question", history[1].Content)
	}
}

func TestHistoryBeforeWrongConversation(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convA, _ := repo.CreateConversation(ctx, nil)
	convB, _ := repo.CreateConversation(ctx, nil)
	target, _ := repo.AddMessage(ctx, convA, RoleAssistant, "answer", ContentText, nil)

	if _, err := repo.HistoryBefore(ctx, convB, target); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditMessage(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, _ := repo.CreateConversation(ctx, nil)
	sysID, _ := repo.AddMessage(ctx, convID, RoleSystem, "sys", ContentText, nil)
	userID, _ := repo.AddMessage(ctx, convID, RoleUser, "original", ContentText, nil)

	if err := repo.EditMessage(ctx, sysID, "tampered"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden editing system message, got %v", err)
	}
	if err := repo.EditMessage(ctx, userID, "edited"); err != nil {
		t.Fatalf("edit user message: %v", err)
	}
	msg, err := repo.GetMessage(ctx, userID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if msg.Content != "edited" {
		t.Fatalf("expected edited content, got %q", msg.Content)
	}

	if err := repo.EditMessage(ctx, "no-such-id", "x"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, _ := repo.CreateConversation(ctx, nil)
	msgID, err := repo.AddMessage(ctx, convID, RoleUser, "with file", ContentText, []AttachmentInput{
		{Name: "a.png", Path: "/tmp/a.png", Type: "image/png", Size: 3},
	})
	if err != nil {
		t.Fatalf("add message: %v", err)
	}
	history, _ := repo.History(ctx, convID)
	if len(history) != 1 || len(history[0].Attachments) != 1 {
		t.Fatalf("attachment not stored")
	}
	attID := history[0].Attachments[0].AttachmentID

	if err := repo.DeleteConversation(ctx, convID); err != nil {
		t.Fatalf("delete conversation: %v", err)
	}
	if _, err := repo.GetConversation(ctx, convID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("conversation survived delete: %v", err)
	}
	if _, err := repo.GetMessage(ctx, msgID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("message survived delete: %v", err)
	}
	if _, err := repo.GetAttachment(ctx, attID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("attachment survived delete: %v", err)
	}
}

func TestListConversationsAggregates(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, _ := repo.CreateConversation(ctx, nil)
	repo.AddMessage(ctx, convID, RoleSystem, "sys", ContentText, nil)
	repo.AddMessage(ctx, convID, RoleUser, "hi", ContentText, nil)
	empty, _ := repo.CreateConversation(ctx, nil)

	rows, err := repo.ListConversations(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(rows))
	}
	byID := map[string]ConversationInfo{}
	for _, row := range rows {
		byID[row.ConversationID] = row
	}
	if byID[convID].MessageCount != 2 {
		t.Fatalf("expected message_count 2, got %d", byID[convID].MessageCount)
	}
	if byID[convID].LastMessageAt == nil {
		t.Fatalf("expected last_message_at set")
	}
	if byID[empty].MessageCount != 0 {
		t.Fatalf("expected message_count 0 for empty conversation, got %d", byID[empty].MessageCount)
	}
}

func TestDuplicateProviderNameConflict(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p := &Provider{Name: "vllm", Host: "http://h", Temperature: 1, MaxTokens: 512, TopP: 0.9}
	if err := repo.CreateProvider(ctx, p); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	dup := &Provider{Name: "vllm", Host: "http://other", Temperature: 1, MaxTokens: 512, TopP: 0.9}
	if err := repo.CreateProvider(ctx, dup); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSetDefaultProviderIsExclusive(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	// The seeded provider is already default.
	second := &Provider{Name: "second", Host: "http://h2", Temperature: 1, MaxTokens: 512, TopP: 0.9}
	if err := repo.CreateProvider(ctx, second); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if err := repo.SetDefaultProvider(ctx, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	providers, _ := repo.ListProviders(ctx)
	defaults := 0
	for _, p := range providers {
		if p.IsDefault {
			defaults++
			if p.ID != second.ID {
				t.Fatalf("wrong default provider: %d", p.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default provider, got %d", defaults)
	}

	if err := repo.SetDefaultProvider(ctx, 9999); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateModelConflict(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p, err := repo.DefaultProvider(ctx)
	if err != nil {
		t.Fatalf("default provider: %v", err)
	}
	if _, err := repo.AddModel(ctx, p.ID, "llama", false); err != nil {
		t.Fatalf("add model: %v", err)
	}
	if _, err := repo.AddModel(ctx, p.ID, "llama", true); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSetDefaultModelScopedToProvider(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p, _ := repo.DefaultProvider(ctx)
	id, err := repo.AddModel(ctx, p.ID, "bigger-model", true)
	if err != nil {
		t.Fatalf("add model: %v", err)
	}
	if err := repo.SetDefaultModel(ctx, id); err != nil {
		t.Fatalf("set default model: %v", err)
	}

	models, _ := repo.ListModels(ctx, p.ID)
	defaults := 0
	for _, m := range models {
		if m.IsDefault {
			defaults++
			if m.ID != id {
				t.Fatalf("wrong default model: %d", m.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default model, got %d", defaults)
	}

	m, err := repo.DefaultModel(ctx, p.ID)
	if err != nil {
		t.Fatalf("default model: %v", err)
	}
	if m.ModelName != "bigger-model" {
		t.Fatalf("expected bigger-model, got %s", m.ModelName)
	}
}

func TestDeleteProviderRemovesModels(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p := &Provider{Name: "doomed", Host: "http://h", Temperature: 1, MaxTokens: 512, TopP: 0.9}
	if err := repo.CreateProvider(ctx, p); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if _, err := repo.AddModel(ctx, p.ID, "m1", false); err != nil {
		t.Fatalf("add model: %v", err)
	}
	if err := repo.DeleteProvider(ctx, p.ID); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
	models, err := repo.ListModels(ctx, p.ID)
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(models) != 0 {
		t.Fatalf("models survived provider delete: %d", len(models))
	}
}

func TestPromptLifecycle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	// Seeding marks "default" active.
	active, err := repo.ActivePrompt(ctx)
	if err != nil {
		t.Fatalf("active prompt: %v", err)
	}
	if active.PromptName != "default" {
		t.Fatalf("expected default active, got %s", active.PromptName)
	}

	id, err := repo.AddPrompt(ctx, "pirate", "Answer like a pirate.")
	if err != nil {
		t.Fatalf("add prompt: %v", err)
	}
	if _, err := repo.AddPrompt(ctx, "pirate", "dup"); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := repo.SetActivePrompt(ctx, id); err != nil {
		t.Fatalf("set active: %v", err)
	}
	prompts, _ := repo.ListPrompts(ctx)
	actives := 0
	for _, p := range prompts {
		if p.IsActive {
			actives++
			if p.ID != id {
				t.Fatalf("wrong active prompt: %d", p.ID)
			}
		}
	}
	if actives != 1 {
		t.Fatalf("expected exactly one active prompt, got %d", actives)
	}
}

func TestDeleteDefaultPromptForbidden(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	def, err := repo.GetPromptByName(ctx, "default")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if err := repo.DeletePrompt(ctx, def.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestActivePromptFallsBackToDefault(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	// Deactivate everything; resolution must revive the default prompt.
	if err := repo.db.Model(&SystemPrompt{}).Where("1 = 1").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	p, err := repo.ActivePrompt(ctx)
	if err != nil {
		t.Fatalf("active prompt: %v", err)
	}
	if p.PromptName != "default" || !p.IsActive {
		t.Fatalf("expected default re-activated, got %s active=%v", p.PromptName, p.IsActive)
	}
}

func TestProjectCascade(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	projectID, err := repo.CreateProject(ctx, "research", "", "Be precise.")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	convID, err := repo.CreateConversation(ctx, &projectID)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	msgID, _ := repo.AddMessage(ctx, convID, RoleUser, "hi", ContentText, nil)

	project, err := repo.ProjectForConversation(ctx, convID)
	if err != nil {
		t.Fatalf("project for conversation: %v", err)
	}
	if project.SystemPrompt != "Be precise." {
		t.Fatalf("unexpected project prompt %q", project.SystemPrompt)
	}

	if err := repo.DeleteProject(ctx, projectID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := repo.GetProject(ctx, projectID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("project survived delete: %v", err)
	}
	if _, err := repo.GetConversation(ctx, convID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("conversation survived project delete: %v", err)
	}
	if _, err := repo.GetMessage(ctx, msgID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("message survived project delete: %v", err)
	}
}

func TestUpdateConversationSummary(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	convID, _ := repo.CreateConversation(ctx, nil)
	if err := repo.UpdateConversationSummary(ctx, convID, "Short title"); err != nil {
		t.Fatalf("update summary: %v", err)
	}
	conv, _ := repo.GetConversation(ctx, convID)
	if conv.Summary == nil || *conv.Summary != "Short title" {
		t.Fatalf("summary not stored: %v", conv.Summary)
	}
}
