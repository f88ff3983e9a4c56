package dto

import "time"

type StatsResponse struct {
	Success              bool  `json:"success"`
	TotalCustomers       int64 `json:"totalCustomers"`
	NewCustomersToday    int64 `json:"newCustomersToday"`
	ActiveConversations  int64 `json:"activeConversations"`
	ConversionRate       int   `json:"conversionRate"`
	NewCustomersInPeriod int64 `json:"newCustomersInPeriod"`
	PeriodDays           int   `json:"periodDays"`
}

type ActivityItem struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata"`
}

type ActivityResponse struct {
	Success    bool           `json:"success"`
	Activities []ActivityItem `json:"activities"`
	Count      int            `json:"count"`
}

type WebhookLogResponse struct {
	ID         string `json:"id"`
	Endpoint   string `json:"endpoint"`
	Method     string `json:"method"`
	Payload    string `json:"payload,omitempty"`
	StatusCode int    `json:"statusCode"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

type WebhookLogsResponse struct {
	Success    bool                 `json:"success"`
	Logs       []WebhookLogResponse `json:"logs"`
	NextCursor string               `json:"nextCursor,omitempty"`
}
