package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession is an anonymous webchat session. SessionToken is the only
// identifier ever handed to the widget.
type ChatSession struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	SessionToken  string            `gorm:"column:session_token;type:varchar(64);uniqueIndex;not null" json:"sessionToken"`
	CustomerID    *string           `gorm:"column:customer_id;type:uuid;index" json:"customerId"`
	IsActive      bool              `gorm:"column:is_active;not null;default:true;index" json:"isActive"`
	LastMessageAt time.Time         `gorm:"column:last_message_at;not null;index" json:"lastMessageAt"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at;not null" json:"createdAt"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
}

func (ChatSession) TableName() string { return ChatSessionsTable }

// MetadataString returns metadata[key] when it holds a non-empty string.
func (s ChatSession) MetadataString(key string) string {
	if s.Metadata == nil {
		return ""
	}
	v, ok := s.Metadata[key].(string)
	if !ok {
		return ""
	}
	return v
}
