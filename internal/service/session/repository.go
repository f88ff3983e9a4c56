package session

import (
	"context"
	"errors"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("session repository: not found")
	ErrConflict = errors.New("session repository: token already exists")
)

type Repository interface {
	Create(ctx context.Context, session *model.ChatSession) error
	FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	// LinkCustomer sets customer_id only while it is still null and reports
	// whether this call performed the link.
	LinkCustomer(ctx context.Context, sessionID, customerID string) (bool, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.SQL}
}

func (r *GormRepository) Create(ctx context.Context, session *model.ChatSession) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *GormRepository) FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND is_active = ?", token, true).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ChatSession{}, ErrNotFound
	}
	if err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}

func (r *GormRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Update("last_message_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) LinkCustomer(ctx context.Context, sessionID, customerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ? AND customer_id IS NULL", sessionID).
		Update("customer_id", customerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
