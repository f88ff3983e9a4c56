package dto

import "time"

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status,omitempty"`
	Source  string `json:"source,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// UpdateCustomerRequest is partial: absent fields are left unchanged.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type CustomerCounts struct {
	Conversations int64 `json:"conversations"`
	SheetSyncs    int64 `json:"sheetSyncs"`
}

type CustomerResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     *string        `json:"phone"`
	Company   string         `json:"company"`
	Status    string         `json:"status"`
	Source    string         `json:"source"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Count     CustomerCounts `json:"_count"`
}

type SheetSyncResponse struct {
	ID           string    `json:"id"`
	SheetID      string    `json:"sheetId"`
	RowNumber    *int      `json:"rowNumber"`
	SyncStatus   string    `json:"syncStatus"`
	SyncError    *string   `json:"syncError"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

type CustomerDetailResponse struct {
	CustomerResponse
	Conversations []ConversationResponse `json:"conversations"`
	SheetSyncs    []SheetSyncResponse    `json:"sheetSyncs"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type CustomerListResponse struct {
	Success    bool               `json:"success"`
	Customers  []CustomerResponse `json:"customers"`
	Pagination Pagination         `json:"pagination"`
}

type CustomerEnvelope struct {
	Success  bool             `json:"success"`
	Customer CustomerResponse `json:"customer"`
}

type CustomerDetailEnvelope struct {
	Success  bool                   `json:"success"`
	Customer CustomerDetailResponse `json:"customer"`
}

type DeletedCustomer struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	ConversationsCount int64  `json:"conversationsCount"`
	SheetSyncsCount    int64  `json:"sheetSyncsCount"`
}

type DeletedCustomerResponse struct {
	Success         bool            `json:"success"`
	DeletedCustomer DeletedCustomer `json:"deletedCustomer"`
}
