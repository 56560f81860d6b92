package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

func (h *Handler) ListConversations(c *gin.Context) {
	var projectID *string
	if v := c.Query("project_id"); v != "" {
		projectID = &v
	}
	conversations, err := h.Repo.ListConversations(c.Request.Context(), projectID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"conversations": conversations})
}

func (h *Handler) GetConversation(c *gin.Context) {
	history, err := h.Repo.History(c.Request.Context(), c.Param("conversation_id"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	if len(history) == 0 {
		common.Fail(c, http.StatusNotFound, 40400, "conversation not found")
		return
	}
	common.OK(c, gin.H{"messages": history})
}

type createConversationReq struct {
	ProjectID *string `json:"project_id"`
}

func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationReq
	_ = c.ShouldBindJSON(&req) // empty body allowed

	conversationID, err := h.Repo.CreateConversation(c.Request.Context(), req.ProjectID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.Hub.Broadcast(hub.ConversationCreated(conversationID))
	common.OK(c, gin.H{"conversation_id": conversationID})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	if err := h.Repo.DeleteConversation(c.Request.Context(), conversationID); err != nil {
		common.FailErr(c, err)
		return
	}
	h.Hub.Broadcast(hub.ConversationDeleted(conversationID))
	common.OK(c, gin.H{"status": "success"})
}

type titleUpdateReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) UpdateConversationTitle(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req titleUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Repo.UpdateConversationSummary(c.Request.Context(), conversationID, req.Title); err != nil {
		common.FailErr(c, err)
		return
	}
	h.Hub.Broadcast(hub.SummaryUpdated(conversationID, req.Title))
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) UpdateConversationSummary(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	summary := c.PostForm("summary")
	if summary == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "summary is required")
		return
	}

	if err := h.Repo.UpdateConversationSummary(c.Request.Context(), conversationID, summary); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

type messageInput struct {
	Role        store.Role        `json:"role" binding:"required"`
	Content     string            `json:"content" binding:"required"`
	ContentType store.ContentType `json:"content_type"`
}

func (h *Handler) AddMessage(c *gin.Context) {
	var req messageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !req.Role.Valid() {
		common.Fail(c, http.StatusBadRequest, 10002, "invalid role")
		return
	}
	if req.ContentType == "" {
		req.ContentType = store.ContentText
	}
	if !req.ContentType.Valid() {
		common.Fail(c, http.StatusBadRequest, 10003, "invalid content_type")
		return
	}

	conversationID := c.Param("conversation_id")
	messageID, err := h.Repo.AddMessage(c.Request.Context(), conversationID, req.Role, req.Content, req.ContentType, nil)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.Hub.Broadcast(hub.MessageAdded(conversationID, messageID))
	common.OK(c, gin.H{"message_id": messageID})
}
