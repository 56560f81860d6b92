package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

type promptReq struct {
	Name string `json:"name" binding:"required"`
	Text string `json:"content" binding:"required"`
}

func (h *Handler) ListPrompts(c *gin.Context) {
	prompts, err := h.Repo.ListPrompts(c.Request.Context())
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, prompts)
}

func (h *Handler) GetPrompt(c *gin.Context) {
	id, ok := pathID(c, "prompt_id")
	if !ok {
		return
	}
	p, err := h.Repo.GetPrompt(c.Request.Context(), id)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, p)
}

func (h *Handler) CreatePrompt(c *gin.Context) {
	var req promptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name and content are required")
		return
	}
	id, err := h.Repo.AddPrompt(c.Request.Context(), req.Name, req.Text)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": id})
}

func (h *Handler) UpdatePrompt(c *gin.Context) {
	id, ok := pathID(c, "prompt_id")
	if !ok {
		return
	}
	var req promptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name and content are required")
		return
	}
	if err := h.Repo.EditPrompt(c.Request.Context(), id, req.Name, req.Text); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) DeletePrompt(c *gin.Context) {
	id, ok := pathID(c, "prompt_id")
	if !ok {
		return
	}
	if err := h.Repo.DeletePrompt(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) ActivatePrompt(c *gin.Context) {
	id, ok := pathID(c, "prompt_id")
	if !ok {
		return
	}
	if err := h.Repo.SetActivePrompt(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) GetActivePrompt(c *gin.Context) {
	p, err := h.Repo.ActivePrompt(c.Request.Context())
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, p)
}

// GetSystemPrompt resolves the prompt a chat in the given conversation would
// run with: the conversation's own last system message wins, then the
// conversation's project prompt, then the process-wide active prompt.
func (h *Handler) GetSystemPrompt(c *gin.Context) {
	ctx := c.Request.Context()

	if conversationID := c.Query("conversation_id"); conversationID != "" {
		history, err := h.Repo.History(ctx, conversationID)
		if err != nil {
			common.FailErr(c, err)
			return
		}
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == store.RoleSystem {
				common.OK(c, gin.H{"system_prompt": history[i].Content, "source": "conversation"})
				return
			}
		}
		if project, err := h.Repo.ProjectForConversation(ctx, conversationID); err == nil && project.SystemPrompt != "" {
			common.OK(c, gin.H{"system_prompt": project.SystemPrompt, "source": "project"})
			return
		}
	}

	p, err := h.Repo.ActivePrompt(ctx)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"system_prompt": p.PromptText, "source": "active"})
}
