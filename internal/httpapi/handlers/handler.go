package handlers

import (
	"github.com/abhishekkrthakur/aiaio/internal/chat"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

const appVersion = "1.0.0"

type Handler struct {
	Repo      *store.Repo
	Hub       *hub.Hub
	ChatSvc   *chat.Service
	UploadDir string
}

func New(repo *store.Repo, h *hub.Hub, svc *chat.Service, uploadDir string) *Handler {
	return &Handler{
		Repo:      repo,
		Hub:       h,
		ChatSvc:   svc,
		UploadDir: uploadDir,
	}
}
