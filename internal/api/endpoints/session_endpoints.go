package endpoints

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/chat"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"
	"github.com/makebyjordan/chatbot-crm/utils"
)

type SessionEndpoints interface {
	New(http.ResponseWriter, *http.Request) error
	Send(http.ResponseWriter, *http.Request) error
	History(http.ResponseWriter, *http.Request) error
}

type sessionEndpoints struct {
	sessions *session.Service
	chat     *chat.Service
}

func NewSessionEndpoints(sessions *session.Service, chatService *chat.Service) SessionEndpoints {
	return &sessionEndpoints{
		sessions: sessions,
		chat:     chatService,
	}
}

func (h *sessionEndpoints) New(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleNew,
	})
}

func (h *sessionEndpoints) Send(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleSend,
	})
}

func (h *sessionEndpoints) History(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleHistory,
	})
}

func (h *sessionEndpoints) handleNew(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		return err
	}

	var metadata session.Metadata
	if req.Metadata != nil {
		metadata = session.Metadata{
			UserAgent: req.Metadata.UserAgent,
			IP:        req.Metadata.IP,
			Language:  req.Metadata.Language,
		}
	}
	if strings.TrimSpace(metadata.UserAgent) == "" {
		metadata.UserAgent = truncate(r.UserAgent(), session.MaxUserAgentLength)
	}
	if strings.TrimSpace(metadata.IP) == "" {
		metadata.IP = truncate(utils.RealClientIP(r), session.MaxIPLength)
	}

	created, err := h.sessions.CreateSession(r.Context(), metadata)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.CreateSessionResponse{
		Success:      true,
		SessionToken: created.SessionToken,
	})
}

func (h *sessionEndpoints) handleSend(w http.ResponseWriter, r *http.Request) error {
	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		return err
	}
	if strings.TrimSpace(req.Token()) == "" {
		return badRequest("sessionToken is required", errors.New("send: missing session token"))
	}

	result, err := h.chat.Relay(r.Context(), req.Token(), req.Message)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.SendMessageResponse{
		Success:        true,
		ConversationID: result.Conversation.ID,
		AIResponse:     result.AIResponse,
		Intent:         result.Intent,
	})
}

func (h *sessionEndpoints) handleHistory(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	token := strings.TrimSpace(query.Get("sessionToken"))
	if token == "" {
		token = strings.TrimSpace(query.Get("sessionId"))
	}
	if token == "" {
		return badRequest("sessionToken is required", errors.New("history: missing session token"))
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return err
	}

	result, err := h.chat.History(r.Context(), token, limit, offset)
	if err != nil {
		return h.serviceError(err)
	}

	conversations := make([]dto.ConversationResponse, 0, len(result.Conversations))
	for _, c := range result.Conversations {
		conversations = append(conversations, toConversationResponse(c))
	}

	return WriteJSON(w, http.StatusOK, dto.HistoryResponse{
		Success:       true,
		Conversations: conversations,
		SessionInfo: dto.SessionInfo{
			SessionToken:  result.Session.SessionToken,
			IsActive:      result.Session.IsActive,
			CustomerID:    result.Session.CustomerID,
			CreatedAt:     result.Session.CreatedAt,
			LastMessageAt: result.Session.LastMessageAt,
		},
		Pagination: dto.HistoryPagination{
			Limit:   result.Limit,
			Offset:  result.Offset,
			Count:   len(conversations),
			HasMore: result.HasMore,
		},
	})
}

func (h *sessionEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		return mapServiceError("chat service", string(chatErr.Code), chatErr.Message, chatErr.Err)
	}

	var sessErr *session.Error
	if errors.As(err, &sessErr) {
		code := string(sessErr.Code)
		// A token collision is our failure, not the caller's.
		if sessErr.Code == session.ErrorCodeConflict {
			code = string(session.ErrorCodeInternal)
		}
		return mapServiceError("session service", code, sessErr.Message, sessErr.Err)
	}

	return internalError(err)
}

func toConversationResponse(c model.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		ID:          c.ID,
		UserMessage: c.UserMessage,
		AIResponse:  c.AIResponse,
		Intent:      c.Intent,
		Platform:    c.Platform,
		CustomerID:  c.CustomerID,
		CreatedAt:   c.CreatedAt,
	}
}

// truncate caps header-derived values so an oversized User-Agent never turns
// into a validation error the client did not cause.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
