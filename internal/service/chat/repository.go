package chat

import (
	"context"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"gorm.io/gorm"
)

// Repository is the append-only conversation log.
type Repository interface {
	CreateConversation(ctx context.Context, conversation *model.Conversation) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.Conversation, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.SQL}
}

func (r *GormRepository) CreateConversation(ctx context.Context, conversation *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// ListBySession returns one page of a session's conversations, oldest first
// in insertion order.
func (r *GormRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("seq ASC").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}
