package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/chat"
	"github.com/abhishekkrthakur/aiaio/internal/common"
)

func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": appVersion})
}

// Chat handles a fresh chat turn: multipart form with message, system
// prompt, conversation id, client id and optional file uploads. The reply
// streams back as an unbuffered chunked body.
func (h *Handler) Chat(c *gin.Context) {
	message := c.PostForm("message")
	systemPrompt := c.PostForm("system_prompt")
	conversationID := c.PostForm("conversation_id")
	clientID := c.PostForm("client_id")
	if message == "" || conversationID == "" || clientID == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "message, conversation_id and client_id are required")
		return
	}

	log.Printf("httpapi: chat conv=%s client=%s", conversationID, clientID)

	attachments, inlined, err := h.saveUploads(c)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to process uploaded file")
		return
	}
	message += inlined

	stream, err := h.ChatSvc.Chat(c.Request.Context(), chat.ChatRequest{
		ConversationID: conversationID,
		ClientID:       clientID,
		Message:        message,
		SystemPrompt:   systemPrompt,
		Attachments:    attachments,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}

	h.streamResponse(c, stream)
}

// Regenerate re-runs generation for an existing message, replacing its
// content on clean completion.
func (h *Handler) Regenerate(c *gin.Context) {
	systemPrompt := c.PostForm("system_prompt")
	conversationID := c.PostForm("conversation_id")
	messageID := c.PostForm("message_id")
	clientID := c.PostForm("client_id")
	if conversationID == "" || messageID == "" || clientID == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "conversation_id, message_id and client_id are required")
		return
	}

	log.Printf("httpapi: regenerate conv=%s msg=%s client=%s", conversationID, messageID, clientID)

	stream, err := h.ChatSvc.Regenerate(c.Request.Context(), chat.RegenerateRequest{
		ConversationID: conversationID,
		ClientID:       clientID,
		SystemPrompt:   systemPrompt,
		TargetID:       messageID,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}

	h.streamResponse(c, stream)
}

// streamResponse copies chunks to the client, flushing after every write so
// nothing buffers between the model and the browser. Once streaming has
// begun the status is committed; later failures only truncate the body.
func (h *Handler) streamResponse(c *gin.Context, stream *chat.Stream) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeFailed := false
	for chunk := range stream.Chunks {
		if writeFailed {
			// Keep draining so the generation goroutine can finish its
			// persistence work.
			continue
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			writeFailed = true
			continue
		}
		c.Writer.Flush()
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("httpapi: stream ended with error err=%v", err)
	}
}
