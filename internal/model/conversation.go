package model

import "time"

const (
	PlatformWebchat = "webchat"

	IntentGeneral = "general"
)

// Conversation is one user message and its reply. Rows are append-only.
type Conversation struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   *string   `gorm:"column:session_id;type:uuid;index" json:"sessionId,omitempty"`
	CustomerID  *string   `gorm:"column:customer_id;type:uuid;index" json:"customerId"`
	UserMessage string    `gorm:"column:user_message;type:text;not null" json:"userMessage"`
	AIResponse  *string   `gorm:"column:ai_response;type:text" json:"aiResponse"`
	Intent      string    `gorm:"column:intent;type:varchar(64)" json:"intent"`
	Platform    string    `gorm:"column:platform;type:varchar(32);not null;default:'webchat'" json:"platform"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"createdAt"`
	// Seq is assigned by the database on insert and orders rows that share
	// a created_at timestamp.
	Seq int64 `gorm:"column:seq;type:bigserial;not null;->;index" json:"-"`

	Session  *ChatSession `gorm:"foreignKey:SessionID;constraint:OnDelete:SET NULL" json:"-"`
	Customer *Customer    `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
}

func (Conversation) TableName() string { return ConversationsTable }
