// Package store is the durable record of conversations, messages and
// attachments, plus the provider/model/prompt/project configuration tables.
package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DefaultPromptText is the text of the protected "default" prompt.
	DefaultPromptText = "You are a helpful assistant."

	// SummaryPromptText drives the post-first-reply summary pass. The model
	// sees the user's messages and must answer with a short title only.
	SummaryPromptText = "You generate conversation titles. " +
		"Given the user's messages, reply with a short title (at most six words) " +
		"that captures the topic. Reply with the title only: no quotes, no " +
		"punctuation at the end, no explanations."
)

// SeedConfig holds the provider row inserted on first run, so the app is
// usable against a local OpenAI-compatible endpoint without any setup.
type SeedConfig struct {
	ProviderHost string
	ProviderKey  string
	ModelName    string
}

// Open opens (creating if needed) the SQLite database at path, migrates the
// schema and seeds the default provider/model and system prompts.
func Open(path string, seed SeedConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&Conversation{},
		&Message{},
		&Attachment{},
		&Provider{},
		&Model{},
		&SystemPrompt{},
		&Project{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := seedDefaults(db, seed); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

func seedDefaults(db *gorm.DB, seed SeedConfig) error {
	var providers int64
	if err := db.Model(&Provider{}).Count(&providers).Error; err != nil {
		return err
	}
	if providers == 0 {
		p := Provider{
			Name:        "default",
			Host:        seed.ProviderHost,
			APIKey:      seed.ProviderKey,
			Temperature: 1.0,
			MaxTokens:   4096,
			TopP:        0.95,
			IsDefault:   true,
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
		m := Model{
			ProviderID: p.ID,
			ModelName:  seed.ModelName,
			IsDefault:  true,
		}
		if err := db.Create(&m).Error; err != nil {
			return err
		}
	}

	var prompts int64
	if err := db.Model(&SystemPrompt{}).Count(&prompts).Error; err != nil {
		return err
	}
	if prompts == 0 {
		rows := []SystemPrompt{
			{PromptName: "summary", PromptText: SummaryPromptText, IsActive: false},
			{PromptName: "default", PromptText: DefaultPromptText, IsActive: true},
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}
