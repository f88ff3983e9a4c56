package sheets

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"github.com/google/uuid"
)

const (
	DefaultDataLimit = 50
	MaxDataLimit     = 100
)

// Trigger starts a spreadsheet import on the automation service.
type Trigger interface {
	TriggerSheetSync(ctx context.Context, sheetID string, force bool) (json.RawMessage, error)
}

type Service struct {
	repo    Repository
	trigger Trigger
	logger  *slog.Logger
	now     func() time.Time
}

func New(db *database.Database, trigger Trigger, logger *slog.Logger) *Service {
	return NewWithRepository(NewGormRepository(db), trigger, logger, time.Now)
}

func NewWithRepository(repo Repository, trigger Trigger, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		trigger: trigger,
		logger:  logger.With("component", "sheets"),
		now:     now,
	}
}

func (s *Service) Data(ctx context.Context, limit int) ([]model.SheetSync, error) {
	if limit < 0 {
		return nil, newError(ErrorCodeValidation, "limit must not be negative", nil)
	}
	if limit == 0 {
		limit = DefaultDataLimit
	}
	if limit > MaxDataLimit {
		limit = MaxDataLimit
	}

	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to load sheet data", err)
	}
	if rows == nil {
		rows = []model.SheetSync{}
	}
	return rows, nil
}

type SyncStatus struct {
	LastSync      time.Time `json:"lastSync"`
	TotalRecords  int64     `json:"totalRecords"`
	SyncedRecords int64     `json:"syncedRecords"`
	ErrorRecords  int64     `json:"errorRecords"`
	IsRunning     bool      `json:"isRunning"`
}

// SyncStatus summarizes the import table. With no rows at all, LastSync is
// the current time.
func (s *Service) SyncStatus(ctx context.Context) (SyncStatus, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return SyncStatus{}, newError(ErrorCodeInternal, "failed to load sync status", err)
	}

	last := s.now().UTC()
	if counts.LastSync != nil {
		last = counts.LastSync.UTC()
	}
	return SyncStatus{
		LastSync:      last,
		TotalRecords:  counts.Total,
		SyncedRecords: counts.Synced,
		ErrorRecords:  counts.Errored,
	}, nil
}

type TriggerResult struct {
	Triggered          string
	AutomationResponse json.RawMessage
	MarkedPending      int64
	// Warning is set when the automation service could not be reached. The
	// request still counts as accepted.
	Warning         string
	AutomationError string
}

func (s *Service) TriggerSync(ctx context.Context, sheetID string, force bool) (TriggerResult, error) {
	sheetID = strings.TrimSpace(sheetID)
	result := TriggerResult{Triggered: "all sheets"}
	if sheetID != "" {
		result.Triggered = "sheet " + sheetID
	}

	if s.trigger == nil {
		result.Warning = "automation service is not configured; the sync will run once it is available"
		return result, nil
	}

	reply, err := s.trigger.TriggerSheetSync(ctx, sheetID, force)
	if err != nil {
		s.logger.Warn("sheet sync trigger failed", "sheet", sheetID, "error", err)
		result.Warning = "automation service is unavailable; the sync will run once it is online"
		result.AutomationError = err.Error()
		return result, nil
	}
	result.AutomationResponse = reply

	marked, err := s.repo.MarkPending(ctx, sheetID, s.now().UTC())
	if err != nil {
		return TriggerResult{}, newError(ErrorCodeInternal, "failed to mark rows pending", err)
	}
	result.MarkedPending = marked
	return result, nil
}

type RowInput struct {
	SheetID    string
	RowNumber  *int
	CustomerID string
	Err        error
}

// RecordRow stores the outcome of importing one spreadsheet row.
func (s *Service) RecordRow(ctx context.Context, in RowInput) error {
	now := s.now().UTC()
	row := model.SheetSync{
		ID:           uuid.NewString(),
		SheetID:      in.SheetID,
		RowNumber:    in.RowNumber,
		SyncStatus:   model.SyncStatusSynced,
		LastSyncedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.CustomerID != "" {
		id := in.CustomerID
		row.CustomerID = &id
	}
	if in.Err != nil {
		msg := in.Err.Error()
		row.SyncStatus = model.SyncStatusError
		row.SyncError = &msg
	}
	if err := s.repo.SaveRow(ctx, &row); err != nil {
		return newError(ErrorCodeInternal, "failed to record sheet row", err)
	}
	return nil
}
