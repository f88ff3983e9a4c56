package dto

import "time"

// SessionMetadata lists the visitor fields a widget may send. Unknown keys
// are dropped when decoding.
type SessionMetadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	IP        string `json:"ip,omitempty"`
	Language  string `json:"language,omitempty"`
}

type CreateSessionRequest struct {
	Metadata *SessionMetadata `json:"metadata,omitempty"`
}

type CreateSessionResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"sessionToken"`
}

// SendMessageRequest accepts sessionId as an alias for sessionToken; older
// widget builds send the token under that name.
type SendMessageRequest struct {
	SessionToken string `json:"sessionToken"`
	SessionID    string `json:"sessionId,omitempty"`
	Message      string `json:"message"`
}

func (r SendMessageRequest) Token() string {
	if r.SessionToken != "" {
		return r.SessionToken
	}
	return r.SessionID
}

type SendMessageResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	AIResponse     string `json:"aiResponse"`
	Intent         string `json:"intent"`
}

type ConversationResponse struct {
	ID          string    `json:"id"`
	UserMessage string    `json:"userMessage"`
	AIResponse  *string   `json:"aiResponse"`
	Intent      string    `json:"intent"`
	Platform    string    `json:"platform"`
	CustomerID  *string   `json:"customerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SessionInfo struct {
	SessionToken  string    `json:"sessionToken"`
	IsActive      bool      `json:"isActive"`
	CustomerID    *string   `json:"customerId"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

type HistoryPagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"hasMore"`
}

type HistoryResponse struct {
	Success       bool                   `json:"success"`
	Conversations []ConversationResponse `json:"conversations"`
	SessionInfo   SessionInfo            `json:"sessionInfo"`
	Pagination    HistoryPagination      `json:"pagination"`
}
