package dto

import (
	"encoding/json"
	"time"
)

type SheetCustomerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type SheetRowResponse struct {
	SheetSyncResponse
	CustomerID *string               `json:"customerId"`
	Customer   *SheetCustomerSummary `json:"customer,omitempty"`
}

type SheetDataResponse struct {
	Success bool               `json:"success"`
	Data    []SheetRowResponse `json:"data"`
	Count   int                `json:"count"`
}

type SyncStatusResponse struct {
	Success       bool      `json:"success"`
	LastSync      time.Time `json:"lastSync"`
	TotalRecords  int64     `json:"totalRecords"`
	SyncedRecords int64     `json:"syncedRecords"`
	ErrorRecords  int64     `json:"errorRecords"`
	IsRunning     bool      `json:"isRunning"`
}

type TriggerSyncRequest struct {
	SheetID string `json:"sheetId,omitempty"`
	Force   bool   `json:"force,omitempty"`
}

type TriggerSyncResponse struct {
	Success            bool            `json:"success"`
	Triggered          string          `json:"triggered"`
	MarkedPending      int64           `json:"markedPending"`
	AutomationResponse json.RawMessage `json:"automationResponse,omitempty"`
	Warning            string          `json:"warning,omitempty"`
	Error              string          `json:"error,omitempty"`
}
