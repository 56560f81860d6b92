package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
)

type projectReq struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.Repo.ListProjects(c.Request.Context())
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.Repo.GetProject(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, p)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name is required")
		return
	}
	projectID, err := h.Repo.CreateProject(c.Request.Context(), req.Name, req.Description, req.SystemPrompt)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"project_id": projectID})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	projectID := c.Param("project_id")

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name is required")
		return
	}
	if err := h.Repo.UpdateProject(c.Request.Context(), projectID, req.Name, req.Description, req.SystemPrompt); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

// DeleteProject removes the project and every conversation under it. Each
// removed conversation is announced so connected clients drop it from view.
func (h *Handler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := c.Param("project_id")

	conversations, err := h.Repo.ListConversations(ctx, &projectID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	if err := h.Repo.DeleteProject(ctx, projectID); err != nil {
		common.FailErr(c, err)
		return
	}
	for _, conv := range conversations {
		h.Hub.Broadcast(hub.ConversationDeleted(conv.ConversationID))
	}
	common.OK(c, gin.H{"status": "success"})
}
