package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/abhishekkrthakur/aiaio/internal/common"
)

// CreateProvider inserts a provider. Duplicate names map to ErrConflict
// instead of a raw driver error.
func (r *Repo) CreateProvider(ctx context.Context, p *Provider) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&Provider{}).Where("name = ?", p.Name).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return common.ErrConflict
		}
		return tx.Create(p).Error
	})
}

func (r *Repo) GetProvider(ctx context.Context, id uint64) (*Provider, error) {
	var p Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

func (r *Repo) ListProviders(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *Repo) UpdateProvider(ctx context.Context, id uint64, p *Provider) error {
	res := r.db.WithContext(ctx).Model(&Provider{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":        p.Name,
			"host":        p.Host,
			"api_key":     p.APIKey,
			"temperature": p.Temperature,
			"max_tokens":  p.MaxTokens,
			"top_p":       p.TopP,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteProvider removes a provider and its models.
func (r *Repo) DeleteProvider(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", id).Delete(&Model{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Provider{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

// SetDefaultProvider clears the previous default and marks the given
// provider. Last writer wins.
func (r *Repo) SetDefaultProvider(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Provider{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&Provider{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

func (r *Repo) DefaultProvider(ctx context.Context) (*Provider, error) {
	var p Provider
	if err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		First(&p).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

// AddModel attaches a model to a provider. A duplicate model name within the
// same provider maps to ErrConflict.
func (r *Repo) AddModel(ctx context.Context, providerID uint64, modelName string, isMultimodal bool) (uint64, error) {
	if _, err := r.GetProvider(ctx, providerID); err != nil {
		return 0, err
	}

	m := Model{
		ProviderID:   providerID,
		ModelName:    modelName,
		IsMultimodal: isMultimodal,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&Model{}).
			Where("provider_id = ? AND model_name = ?", providerID, modelName).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return common.ErrConflict
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *Repo) ListModels(ctx context.Context, providerID uint64) ([]Model, error) {
	var models []Model
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("model_name ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *Repo) DeleteModel(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&Model{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetDefaultModel marks a model as default among its provider's models.
func (r *Repo) SetDefaultModel(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Model
		if err := tx.First(&m, id).Error; err != nil {
			return asNotFound(err)
		}
		if err := tx.Model(&Model{}).
			Where("provider_id = ? AND is_default = ?", m.ProviderID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&Model{}).Where("id = ?", id).Update("is_default", true).Error
	})
}

func (r *Repo) DefaultModel(ctx context.Context, providerID uint64) (*Model, error) {
	var m Model
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND is_default = ?", providerID, true).
		First(&m).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &m, nil
}
