package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid "+name)
		return 0, false
	}
	return id, true
}

type providerReq struct {
	Name        string   `json:"name" binding:"required"`
	Host        string   `json:"host" binding:"required"`
	APIKey      string   `json:"api_key"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	TopP        *float64 `json:"top_p"`
}

func (r *providerReq) toProvider() *store.Provider {
	p := &store.Provider{
		Name:        r.Name,
		Host:        r.Host,
		APIKey:      r.APIKey,
		Temperature: 1.0,
		MaxTokens:   4096,
		TopP:        0.95,
	}
	if r.Temperature != nil {
		p.Temperature = *r.Temperature
	}
	if r.MaxTokens != nil {
		p.MaxTokens = *r.MaxTokens
	}
	if r.TopP != nil {
		p.TopP = *r.TopP
	}
	return p
}

func (h *Handler) ListProviders(c *gin.Context) {
	providers, err := h.Repo.ListProviders(c.Request.Context())
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, providers)
}

func (h *Handler) GetProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	p, err := h.Repo.GetProvider(c.Request.Context(), id)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, p)
}

func (h *Handler) CreateProvider(c *gin.Context) {
	var req providerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name and host are required")
		return
	}
	p := req.toProvider()
	if err := h.Repo.CreateProvider(c.Request.Context(), p); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": p.ID})
}

func (h *Handler) UpdateProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	var req providerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "name and host are required")
		return
	}
	if err := h.Repo.UpdateProvider(c.Request.Context(), id, req.toProvider()); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) DeleteProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	if err := h.Repo.DeleteProvider(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) SetDefaultProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	if err := h.Repo.SetDefaultProvider(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

// GetDefaultProvider returns the default provider together with its default
// model, the exact pair streaming chat will use.
func (h *Handler) GetDefaultProvider(c *gin.Context) {
	p, err := h.Repo.DefaultProvider(c.Request.Context())
	if err != nil {
		common.FailErr(c, err)
		return
	}
	resp := gin.H{"provider": p}
	if m, err := h.Repo.DefaultModel(c.Request.Context(), p.ID); err == nil {
		resp["model"] = m
	}
	common.OK(c, resp)
}

type modelReq struct {
	ModelName    string `json:"model_name" binding:"required"`
	IsMultimodal bool   `json:"is_multimodal"`
}

func (h *Handler) ListModels(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	models, err := h.Repo.ListModels(c.Request.Context(), id)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, models)
}

func (h *Handler) AddModel(c *gin.Context) {
	providerID, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	var req modelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "model_name is required")
		return
	}
	id, err := h.Repo.AddModel(c.Request.Context(), providerID, req.ModelName, req.IsMultimodal)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": id})
}

func (h *Handler) DeleteModel(c *gin.Context) {
	id, ok := pathID(c, "model_id")
	if !ok {
		return
	}
	if err := h.Repo.DeleteModel(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}

func (h *Handler) SetDefaultModel(c *gin.Context) {
	id, ok := pathID(c, "model_id")
	if !ok {
		return
	}
	if err := h.Repo.SetDefaultModel(c.Request.Context(), id); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"status": "success"})
}
