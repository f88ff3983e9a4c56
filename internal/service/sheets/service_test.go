package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/model"
)

type memoryRepository struct {
	mu        sync.Mutex
	rows      []model.SheetSync
	lastLimit int
}

func (m *memoryRepository) List(ctx context.Context, limit int) ([]model.SheetSync, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if len(m.rows) < limit {
		return append([]model.SheetSync(nil), m.rows...), nil
	}
	return append([]model.SheetSync(nil), m.rows[:limit]...), nil
}

func (m *memoryRepository) Counts(ctx context.Context) (Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c Counts
	for _, r := range m.rows {
		c.Total++
		switch r.SyncStatus {
		case model.SyncStatusSynced:
			c.Synced++
		case model.SyncStatusError:
			c.Errored++
		}
		if c.LastSync == nil || r.LastSyncedAt.After(*c.LastSync) {
			at := r.LastSyncedAt
			c.LastSync = &at
		}
	}
	return c, nil
}

func (m *memoryRepository) MarkPending(ctx context.Context, sheetID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if sheetID != "" && m.rows[i].SheetID != sheetID {
			continue
		}
		m.rows[i].SyncStatus = model.SyncStatusPending
		m.rows[i].SyncError = nil
		m.rows[i].LastSyncedAt = at
		n++
	}
	return n, nil
}

func (m *memoryRepository) SaveRow(ctx context.Context, row *model.SheetSync) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.rows {
		if existing.SheetID == row.SheetID && existing.RowNumber != nil && row.RowNumber != nil && *existing.RowNumber == *row.RowNumber {
			m.rows[i] = *row
			return nil
		}
	}
	m.rows = append(m.rows, *row)
	return nil
}

type fakeTrigger struct {
	reply json.RawMessage
	err   error
	calls int
}

func (f *fakeTrigger) TriggerSheetSync(ctx context.Context, sheetID string, force bool) (json.RawMessage, error) {
	f.calls++
	return f.reply, f.err
}

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestDataClampsLimit(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewWithRepository(repo, nil, nil, fixedNow)

	if _, err := svc.Data(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != DefaultDataLimit {
		t.Fatalf("expected default limit, got %d", repo.lastLimit)
	}
	if _, err := svc.Data(context.Background(), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != MaxDataLimit {
		t.Fatalf("expected clamped limit, got %d", repo.lastLimit)
	}

	_, err := svc.Data(context.Background(), -1)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSyncStatusCounts(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewWithRepository(repo, nil, nil, fixedNow)

	status, err := svc.SyncStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.LastSync.Equal(fixedNow()) || status.TotalRecords != 0 {
		t.Fatalf("empty table should report now, got %+v", status)
	}

	earlier := fixedNow().Add(-time.Hour)
	repo.rows = []model.SheetSync{
		{SheetID: "s", SyncStatus: model.SyncStatusSynced, LastSyncedAt: earlier},
		{SheetID: "s", SyncStatus: model.SyncStatusError, LastSyncedAt: earlier.Add(-time.Hour)},
		{SheetID: "s", SyncStatus: model.SyncStatusPending, LastSyncedAt: earlier.Add(-2 * time.Hour)},
	}
	status, err = svc.SyncStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.TotalRecords != 3 || status.SyncedRecords != 1 || status.ErrorRecords != 1 || status.IsRunning {
		t.Fatalf("unexpected status %+v", status)
	}
	if !status.LastSync.Equal(earlier) {
		t.Fatalf("expected last sync %s, got %s", earlier, status.LastSync)
	}
}

func TestTriggerSyncMarksRowsPending(t *testing.T) {
	repo := &memoryRepository{rows: []model.SheetSync{
		{SheetID: "a", SyncStatus: model.SyncStatusSynced},
		{SheetID: "b", SyncStatus: model.SyncStatusError},
	}}
	trigger := &fakeTrigger{reply: json.RawMessage(`{"ok":true}`)}
	svc := NewWithRepository(repo, trigger, nil, fixedNow)

	res, err := svc.TriggerSync(context.Background(), "a", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MarkedPending != 1 || res.Warning != "" || string(res.AutomationResponse) != `{"ok":true}` {
		t.Fatalf("unexpected result %+v", res)
	}
	if repo.rows[0].SyncStatus != model.SyncStatusPending || repo.rows[1].SyncStatus != model.SyncStatusError {
		t.Fatalf("only sheet a should be pending: %+v", repo.rows)
	}
}

func TestTriggerSyncAutomationDownIsPartialSuccess(t *testing.T) {
	repo := &memoryRepository{rows: []model.SheetSync{{SheetID: "a", SyncStatus: model.SyncStatusSynced}}}
	svc := NewWithRepository(repo, &fakeTrigger{err: errors.New("status 502")}, nil, fixedNow)

	res, err := svc.TriggerSync(context.Background(), "", false)
	if err != nil {
		t.Fatalf("automation failure must not be an error: %v", err)
	}
	if res.Warning == "" || res.AutomationError == "" || res.Triggered != "all sheets" {
		t.Fatalf("expected warning, got %+v", res)
	}
	if repo.rows[0].SyncStatus != model.SyncStatusSynced {
		t.Fatal("rows must not be marked pending when the trigger failed")
	}
}

func TestRecordRow(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewWithRepository(repo, nil, nil, fixedNow)
	row := 7

	if err := svc.RecordRow(context.Background(), RowInput{SheetID: "s", RowNumber: &row, Err: errors.New("invalid email")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RecordRow(context.Background(), RowInput{SheetID: "s", RowNumber: &row, CustomerID: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("same row should be replaced, got %d rows", len(repo.rows))
	}
	got := repo.rows[0]
	if got.SyncStatus != model.SyncStatusSynced || got.SyncError != nil || got.CustomerID == nil || *got.CustomerID != "c1" {
		t.Fatalf("unexpected row %+v", got)
	}
}
