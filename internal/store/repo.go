package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/abhishekkrthakur/aiaio/internal/common"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return err
}

// AttachmentInput describes an uploaded file already saved to disk.
type AttachmentInput struct {
	Name string
	Path string
	Type string
	Size int64
}

func (r *Repo) CreateConversation(ctx context.Context, projectID *string) (string, error) {
	conv := Conversation{
		ConversationID: NewID(),
		ProjectID:      projectID,
	}
	if err := r.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return "", err
	}
	return conv.ConversationID, nil
}

// EnsureConversation creates the conversation row if it does not exist yet,
// so a chat against a fresh id works without an explicit create call.
func (r *Repo) EnsureConversation(ctx context.Context, conversationID string) error {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&Conversation{}).
		Where("conversation_id = ?", conversationID).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&Conversation{ConversationID: conversationID}).Error
}

func (r *Repo) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&conv).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &conv, nil
}

// ConversationInfo is a conversation row with its message aggregates, as
// shown in the sidebar listing.
type ConversationInfo struct {
	ConversationID string     `json:"conversation_id"`
	ProjectID      *string    `json:"project_id,omitempty"`
	Summary        *string    `json:"summary"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"last_updated"`
	MessageCount   int64      `json:"message_count"`
	LastMessageAt  *time.Time `json:"last_message_at"`
}

func (r *Repo) ListConversations(ctx context.Context, projectID *string) ([]ConversationInfo, error) {
	q := r.db.WithContext(ctx).
		Table("conversations c").
		Select("c.conversation_id, c.project_id, c.summary, c.created_at, c.updated_at, " +
			"COUNT(m.id) AS message_count, MAX(m.created_at) AS last_message_at").
		Joins("LEFT JOIN messages m ON m.conversation_id = c.conversation_id").
		Group("c.conversation_id").
		Order("c.created_at ASC")

	if projectID != nil {
		q = q.Where("c.project_id = ?", *projectID)
	}

	var rows []ConversationInfo
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteConversation removes a conversation with its messages and attachment
// rows. Backing attachment files on disk are not removed here.
func (r *Repo) DeleteConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&Message{}).Select("message_id").Where("conversation_id = ?", conversationID)
		if err := tx.Where("message_id IN (?)", sub).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Where("conversation_id = ?", conversationID).Delete(&Conversation{}).Error
	})
}

func (r *Repo) UpdateConversationSummary(ctx context.Context, conversationID, summary string) error {
	return r.db.WithContext(ctx).Model(&Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("summary", summary).Error
}

// AddMessage appends a message (and its attachments) and bumps the
// conversation's last-updated time, all in one transaction.
func (r *Repo) AddMessage(ctx context.Context, conversationID string, role Role, content string, contentType ContentType, attachments []AttachmentInput) (string, error) {
	msg := Message{
		MessageID:      NewMessageID(),
		ConversationID: conversationID,
		Role:           role,
		ContentType:    contentType,
		Content:        content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		if err := tx.Model(&Conversation{}).
			Where("conversation_id = ?", conversationID).
			Update("updated_at", msg.CreatedAt).Error; err != nil {
			return err
		}
		for _, att := range attachments {
			a := Attachment{
				AttachmentID: NewID(),
				MessageID:    msg.MessageID,
				FileName:     att.Name,
				FilePath:     att.Path,
				FileType:     att.Type,
				FileSize:     att.Size,
			}
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return msg.MessageID, nil
}

// History returns the conversation's messages with attachments, oldest
// first. Timestamp collisions are broken by insertion order (the
// autoincrement id). A missing conversation yields an empty slice.
func (r *Repo) History(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// HistoryBefore returns messages strictly before the target message in
// history order. The target itself is excluded.
func (r *Repo) HistoryBefore(ctx context.Context, conversationID, messageID string) ([]Message, error) {
	target, err := r.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if target.ConversationID != conversationID {
		return nil, common.ErrNotFound
	}

	var msgs []Message
	if err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Where("created_at < ? OR (created_at = ? AND id < ?)",
			target.CreatedAt, target.CreatedAt, target.ID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var msg Message
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		First(&msg).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &msg, nil
}

// EditMessage replaces a message's content. System messages are immutable.
func (r *Repo) EditMessage(ctx context.Context, messageID, content string) error {
	msg, err := r.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.Role == RoleSystem {
		return common.ErrForbidden
	}
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("message_id = ?", messageID).
		Updates(map[string]any{
			"content":    content,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repo) GetAttachment(ctx context.Context, attachmentID string) (*Attachment, error) {
	var att Attachment
	if err := r.db.WithContext(ctx).
		Where("attachment_id = ?", attachmentID).
		First(&att).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &att, nil
}
