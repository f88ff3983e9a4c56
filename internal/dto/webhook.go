package dto

// WebhookSuccess and WebhookFailure are the envelopes every webhook route
// answers with, so the automation service can branch on success alone.
type WebhookSuccess struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

type WebhookFailure struct {
	Success bool         `json:"success"`
	Error   WebhookError `json:"error"`
}

type WebhookError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}
