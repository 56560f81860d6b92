package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/abhishekkrthakur/aiaio/internal/common"
)

func (r *Repo) CreateProject(ctx context.Context, name, description, systemPrompt string) (string, error) {
	p := Project{
		ProjectID:    NewID(),
		Name:         name,
		Description:  description,
		SystemPrompt: systemPrompt,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return "", err
	}
	return p.ProjectID, nil
}

func (r *Repo) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&p).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

func (r *Repo) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *Repo) UpdateProject(ctx context.Context, projectID, name, description, systemPrompt string) error {
	res := r.db.WithContext(ctx).Model(&Project{}).
		Where("project_id = ?", projectID).
		Updates(map[string]any{
			"name":          name,
			"description":   description,
			"system_prompt": systemPrompt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteProject removes a project and cascades to its conversations,
// messages and attachment rows. Attachment files on disk are left behind.
func (r *Repo) DeleteProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		convs := tx.Model(&Conversation{}).Select("conversation_id").Where("project_id = ?", projectID)
		msgs := tx.Model(&Message{}).Select("message_id").Where("conversation_id IN (?)", convs)

		if err := tx.Where("message_id IN (?)", msgs).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN (?)", convs).Delete(&Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&Conversation{}).Error; err != nil {
			return err
		}

		res := tx.Where("project_id = ?", projectID).Delete(&Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

// ProjectForConversation resolves the project a conversation belongs to, or
// ErrNotFound when the conversation has no project association.
func (r *Repo) ProjectForConversation(ctx context.Context, conversationID string) (*Project, error) {
	conv, err := r.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.ProjectID == nil {
		return nil, common.ErrNotFound
	}
	return r.GetProject(ctx, *conv.ProjectID)
}
