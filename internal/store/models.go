package store

import "time"

// Role of a message author. Closed set; enforced by callers and by the CHECK
// semantics of EditMessage (system messages are immutable).
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ContentType tags what kind of payload a message carries.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentAudio ContentType = "audio"
	ContentVideo ContentType = "video"
	ContentFile  ContentType = "file"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentImage, ContentAudio, ContentVideo, ContentFile:
		return true
	}
	return false
}

type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"conversation_id"`
	ProjectID      *string   `gorm:"type:varchar(36);index" json:"project_id,omitempty"`
	Summary        *string   `gorm:"type:text" json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"last_updated"`
}

func (Conversation) TableName() string { return "conversations" }

// Message ids are ULIDs: lexicographic order matches creation order, so the
// id itself is a stable tiebreak when created_at collides.
type Message struct {
	ID             uint64       `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string       `gorm:"type:varchar(26);uniqueIndex;not null" json:"message_id"`
	ConversationID string       `gorm:"type:varchar(36);index;not null" json:"conversation_id"`
	Role           Role         `gorm:"type:varchar(16);not null" json:"role"`
	ContentType    ContentType  `gorm:"type:varchar(16);not null" json:"content_type"`
	Content        string       `gorm:"type:text;not null" json:"content"`
	Attachments    []Attachment `gorm:"foreignKey:MessageID;references:MessageID" json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Message) TableName() string { return "messages" }

type Attachment struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	AttachmentID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"attachment_id"`
	MessageID    string    `gorm:"type:varchar(26);index;not null" json:"-"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath     string    `gorm:"type:varchar(512);not null" json:"-"`
	FileType     string    `gorm:"type:varchar(128);not null" json:"file_type"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }

// Provider is a named OpenAI-compatible endpoint configuration. Exactly one
// provider row carries IsDefault at a time.
type Provider struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Host        string    `gorm:"type:varchar(512);not null" json:"host"`
	APIKey      string    `gorm:"type:varchar(256)" json:"api_key"`
	Temperature float64   `gorm:"not null;default:1.0" json:"temperature"`
	MaxTokens   int       `gorm:"not null;default:4096" json:"max_tokens"`
	TopP        float64   `gorm:"not null;default:0.95" json:"top_p"`
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Provider) TableName() string { return "providers" }

type Model struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderID   uint64    `gorm:"index;not null;uniqueIndex:uniq_provider_model,priority:1" json:"provider_id"`
	ModelName    string    `gorm:"type:varchar(256);not null;uniqueIndex:uniq_provider_model,priority:2" json:"model_name"`
	IsMultimodal bool      `gorm:"not null;default:false" json:"is_multimodal"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Model) TableName() string { return "models" }

type SystemPrompt struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PromptName string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	PromptText string    `gorm:"type:text;not null" json:"content"`
	IsActive   bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SystemPrompt) TableName() string { return "system_prompts" }

type Project struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ProjectID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"project_id"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
