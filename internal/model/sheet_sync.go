package model

import "time"

type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
)

// SheetSync tracks one spreadsheet row imported by the automation service.
type SheetSync struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	SheetID      string     `gorm:"column:sheet_id;not null;index;uniqueIndex:idx_sheet_row" json:"sheetId"`
	RowNumber    *int       `gorm:"column:row_number;uniqueIndex:idx_sheet_row" json:"rowNumber"`
	CustomerID   *string    `gorm:"column:customer_id;type:uuid;index" json:"customerId"`
	SyncStatus   SyncStatus `gorm:"column:sync_status;type:varchar(16);not null;default:'pending';index" json:"syncStatus"`
	SyncError    *string    `gorm:"column:sync_error;type:text" json:"syncError"`
	LastSyncedAt time.Time  `gorm:"column:last_synced_at;not null;index" json:"lastSyncedAt"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
}

func (SheetSync) TableName() string { return SheetSyncsTable }
