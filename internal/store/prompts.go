package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/abhishekkrthakur/aiaio/internal/common"
)

func (r *Repo) AddPrompt(ctx context.Context, name, text string) (uint64, error) {
	p := SystemPrompt{PromptName: name, PromptText: text}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&SystemPrompt{}).Where("prompt_name = ?", name).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return common.ErrConflict
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *Repo) GetPrompt(ctx context.Context, id uint64) (*SystemPrompt, error) {
	var p SystemPrompt
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

func (r *Repo) GetPromptByName(ctx context.Context, name string) (*SystemPrompt, error) {
	var p SystemPrompt
	if err := r.db.WithContext(ctx).
		Where("prompt_name = ?", name).
		First(&p).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

func (r *Repo) ListPrompts(ctx context.Context) ([]SystemPrompt, error) {
	var prompts []SystemPrompt
	if err := r.db.WithContext(ctx).Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *Repo) EditPrompt(ctx context.Context, id uint64, name, text string) error {
	res := r.db.WithContext(ctx).Model(&SystemPrompt{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"prompt_name": name,
			"prompt_text": text,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeletePrompt removes a prompt. The prompt named "default" is protected.
func (r *Repo) DeletePrompt(ctx context.Context, id uint64) error {
	p, err := r.GetPrompt(ctx, id)
	if err != nil {
		return err
	}
	if p.PromptName == "default" {
		return common.ErrForbidden
	}
	return r.db.WithContext(ctx).Delete(&SystemPrompt{}, id).Error
}

// SetActivePrompt deactivates all prompts and activates the given one.
func (r *Repo) SetActivePrompt(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&SystemPrompt{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		res := tx.Model(&SystemPrompt{}).Where("id = ?", id).Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

// ActivePrompt returns the active prompt, falling back to (and reactivating)
// the "default" prompt when none is active.
func (r *Repo) ActivePrompt(ctx context.Context) (*SystemPrompt, error) {
	var p SystemPrompt
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def, err := r.GetPromptByName(ctx, "default")
	if err != nil {
		return nil, err
	}
	if err := r.SetActivePrompt(ctx, def.ID); err != nil {
		return nil, err
	}
	def.IsActive = true
	return def, nil
}
