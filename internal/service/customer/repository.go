package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("customer repository: not found")
	ErrConflict = errors.New("customer repository: email or phone already exists")
)

// Filter narrows a customer listing. Zero values disable a criterion.
type Filter struct {
	Search string
	Status model.CustomerStatus
	Source string
	Offset int
	Limit  int
}

type Counts struct {
	Conversations int64 `json:"conversations"`
	SheetSyncs    int64 `json:"sheetSyncs"`
}

type Repository interface {
	List(ctx context.Context, filter Filter) ([]model.Customer, int64, error)
	CountRelations(ctx context.Context, customerIDs []string) (map[string]Counts, error)
	FindByID(ctx context.Context, id string) (model.Customer, error)
	FindByEmail(ctx context.Context, email string) (model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id string) error
	RecentConversations(ctx context.Context, customerID string, limit int) ([]model.Conversation, error)
	SheetSyncs(ctx context.Context, customerID string) ([]model.SheetSync, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.SQL}
}

func (r *GormRepository) filtered(ctx context.Context, filter Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR company ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	return q
}

func (r *GormRepository) List(ctx context.Context, filter Filter) ([]model.Customer, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := r.filtered(ctx, filter).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

type relationCount struct {
	CustomerID string
	Total      int64
}

func (r *GormRepository) CountRelations(ctx context.Context, customerIDs []string) (map[string]Counts, error) {
	counts := make(map[string]Counts, len(customerIDs))
	if len(customerIDs) == 0 {
		return counts, nil
	}

	var conversations []relationCount
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).
		Select("customer_id, COUNT(*) AS total").
		Where("customer_id IN ?", customerIDs).
		Group("customer_id").
		Scan(&conversations).Error
	if err != nil {
		return nil, err
	}

	var syncs []relationCount
	err = r.db.WithContext(ctx).Model(&model.SheetSync{}).
		Select("customer_id, COUNT(*) AS total").
		Where("customer_id IN ?", customerIDs).
		Group("customer_id").
		Scan(&syncs).Error
	if err != nil {
		return nil, err
	}

	for _, c := range conversations {
		entry := counts[c.CustomerID]
		entry.Conversations = c.Total
		counts[c.CustomerID] = entry
	}
	for _, s := range syncs {
		entry := counts[s.CustomerID]
		entry.SheetSyncs = s.Total
		counts[s.CustomerID] = entry
	}
	return counts, nil
}

func (r *GormRepository) findOne(ctx context.Context, query string, arg any) (model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where(query, arg).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return customer, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (model.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (model.Customer, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormRepository) FindByPhone(ctx context.Context, phone string) (model.Customer, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

func (r *GormRepository) Create(ctx context.Context, customer *model.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *GormRepository) Update(ctx context.Context, customer *model.Customer) error {
	res := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":       customer.Name,
			"email":      customer.Email,
			"phone":      customer.Phone,
			"company":    customer.Company,
			"status":     customer.Status,
			"source":     customer.Source,
			"notes":      customer.Notes,
			"updated_at": customer.UpdatedAt,
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) RecentConversations(ctx context.Context, customerID string, limit int) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

func (r *GormRepository) SheetSyncs(ctx context.Context, customerID string) ([]model.SheetSync, error) {
	var syncs []model.SheetSync
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("last_synced_at DESC").
		Find(&syncs).Error
	return syncs, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
