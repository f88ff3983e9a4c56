package sheets

import (
	"context"
	"errors"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Counts struct {
	Total    int64
	Synced   int64
	Errored  int64
	LastSync *time.Time
}

type Repository interface {
	List(ctx context.Context, limit int) ([]model.SheetSync, error)
	Counts(ctx context.Context) (Counts, error)
	// MarkPending flags the rows of sheetID, or of every sheet when sheetID
	// is empty, for re-import and returns how many rows were touched.
	MarkPending(ctx context.Context, sheetID string, at time.Time) (int64, error)
	// SaveRow inserts a row or replaces the one with the same sheet and
	// row number.
	SaveRow(ctx context.Context, row *model.SheetSync) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.SQL}
}

func (r *GormRepository) List(ctx context.Context, limit int) ([]model.SheetSync, error) {
	var rows []model.SheetSync
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Order("last_synced_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := r.db.WithContext(ctx).Model(&model.SheetSync{})
	if err := db.Count(&c.Total).Error; err != nil {
		return Counts{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.SheetSync{}).
		Where("sync_status = ?", model.SyncStatusSynced).
		Count(&c.Synced).Error; err != nil {
		return Counts{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.SheetSync{}).
		Where("sync_status = ?", model.SyncStatusError).
		Count(&c.Errored).Error; err != nil {
		return Counts{}, err
	}

	var latest model.SheetSync
	err := r.db.WithContext(ctx).
		Select("last_synced_at").
		Order("last_synced_at DESC").
		Take(&latest).Error
	switch {
	case err == nil:
		at := latest.LastSyncedAt
		c.LastSync = &at
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Counts{}, err
	}
	return c, nil
}

func (r *GormRepository) MarkPending(ctx context.Context, sheetID string, at time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SheetSync{})
	if sheetID != "" {
		q = q.Where("sheet_id = ?", sheetID)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Updates(map[string]any{
		"sync_status":    model.SyncStatusPending,
		"last_synced_at": at,
		"sync_error":     nil,
		"updated_at":     at,
	})
	return res.RowsAffected, res.Error
}

func (r *GormRepository) SaveRow(ctx context.Context, row *model.SheetSync) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sheet_id"}, {Name: "row_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id", "sync_status", "sync_error", "last_synced_at", "updated_at",
			}),
		}).
		Create(row).Error
}
