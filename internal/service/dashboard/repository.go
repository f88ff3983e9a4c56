package dashboard

import (
	"context"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"gorm.io/gorm"
)

// CustomerQuery restricts a customer count. Zero values are ignored.
type CustomerQuery struct {
	Since  time.Time
	Until  time.Time
	Status model.CustomerStatus
}

type Repository interface {
	CountCustomers(ctx context.Context, q CustomerQuery) (int64, error)
	CountActiveSessions(ctx context.Context, since time.Time) (int64, error)
	LatestConversations(ctx context.Context, limit int) ([]model.Conversation, error)
	LatestCustomers(ctx context.Context, limit int) ([]model.Customer, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.SQL}
}

func (r *GormRepository) CountCustomers(ctx context.Context, q CustomerQuery) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Customer{})
	if !q.Since.IsZero() {
		query = query.Where("created_at >= ?", q.Since)
	}
	if !q.Until.IsZero() {
		query = query.Where("created_at <= ?", q.Until)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func (r *GormRepository) CountActiveSessions(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("is_active = ? AND last_message_at >= ?", true, since).
		Count(&n).Error
	return n, err
}

func (r *GormRepository) LatestConversations(ctx context.Context, limit int) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Order("created_at DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

func (r *GormRepository) LatestCustomers(ctx context.Context, limit int) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}
