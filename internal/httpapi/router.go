package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/chat"
	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/httpapi/handlers"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

func NewRouter(repo *store.Repo, hb *hub.Hub, svc *chat.Service, uploadDir string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.New(repo, hb, svc, uploadDir)

	r.GET("/version", h.Version)

	// Streaming chat
	r.POST("/chat", h.Chat)
	r.POST("/regenerate_response", h.Regenerate)

	// Conversations
	r.GET("/conversations", h.ListConversations)
	r.GET("/conversations/:conversation_id", h.GetConversation)
	r.POST("/create_conversation", h.CreateConversation)
	r.DELETE("/conversations/:conversation_id", h.DeleteConversation)
	r.PUT("/conversations/:conversation_id/title", h.UpdateConversationTitle)
	r.POST("/conversations/:conversation_id/summary", h.UpdateConversationSummary)
	r.POST("/conversations/:conversation_id/messages", h.AddMessage)

	// Messages
	r.PUT("/messages/:message_id", h.EditMessage)
	r.GET("/messages/:message_id/raw", h.GetRawMessage)

	// Providers and models
	r.GET("/providers", h.ListProviders)
	r.GET("/providers/:provider_id", h.GetProvider)
	r.POST("/providers", h.CreateProvider)
	r.PUT("/providers/:provider_id", h.UpdateProvider)
	r.DELETE("/providers/:provider_id", h.DeleteProvider)
	r.POST("/providers/:provider_id/set_default", h.SetDefaultProvider)
	r.GET("/providers/:provider_id/models", h.ListModels)
	r.POST("/providers/:provider_id/models", h.AddModel)
	r.DELETE("/models/:model_id", h.DeleteModel)
	r.POST("/models/:model_id/set_default", h.SetDefaultModel)
	r.GET("/default_provider", h.GetDefaultProvider)

	// System prompts
	r.GET("/prompts", h.ListPrompts)
	r.GET("/prompts/active", h.GetActivePrompt)
	r.GET("/prompts/:prompt_id", h.GetPrompt)
	r.POST("/prompts", h.CreatePrompt)
	r.PUT("/prompts/:prompt_id", h.UpdatePrompt)
	r.DELETE("/prompts/:prompt_id", h.DeletePrompt)
	r.POST("/prompts/:prompt_id/activate", h.ActivatePrompt)
	r.GET("/get_system_prompt", h.GetSystemPrompt)

	// Projects
	r.GET("/projects", h.ListProjects)
	r.GET("/projects/:project_id", h.GetProject)
	r.POST("/projects", h.CreateProject)
	r.PUT("/projects/:project_id", h.UpdateProject)
	r.DELETE("/projects/:project_id", h.DeleteProject)

	// Attachments
	r.GET("/attachments/:attachment_id", h.GetAttachment)

	// Notification channel
	r.GET("/ws/:client_id", h.WebSocket)

	return r
}
