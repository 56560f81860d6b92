package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
)

type messageEditReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) EditMessage(c *gin.Context) {
	messageID := c.Param("message_id")

	var req messageEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Repo.EditMessage(c.Request.Context(), messageID, req.Content); err != nil {
		common.FailErr(c, err)
		return
	}

	msg, err := h.Repo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.Hub.Broadcast(hub.MessageEdited(messageID, req.Content, string(msg.Role)))

	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) GetRawMessage(c *gin.Context) {
	msg, err := h.Repo.GetMessage(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"content": msg.Content})
}
