package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"
	"github.com/makebyjordan/chatbot-crm/utils"

	"github.com/google/uuid"
)

const maxMessageLength = 1000

type chatResponsePayload struct {
	SessionToken string        `json:"sessionToken"`
	SessionID    string        `json:"sessionId"`
	UserMessage  *string       `json:"userMessage"`
	AIResponse   *string       `json:"aiResponse"`
	Intent       string        `json:"intent"`
	CustomerData *customerData `json:"customerData"`
}

type customerData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// token prefers sessionToken and accepts sessionId from older workflows.
func (p chatResponsePayload) token() string {
	if t := strings.TrimSpace(p.SessionToken); t != "" {
		return t
	}
	return strings.TrimSpace(p.SessionID)
}

type ChatResult struct {
	ConversationID string  `json:"conversationId"`
	CustomerID     *string `json:"customerId"`
	SessionUpdated bool    `json:"sessionUpdated"`
}

// Reconcile records a reply the automation service produced out of band.
// Checks run in order: signature, payload, session. Customer resolution
// failures are logged and never fail the callback.
func (s *Service) Reconcile(ctx context.Context, req Request) (result ChatResult, err error) {
	defer func() {
		if err != nil {
			s.finish(ctx, ChatResponseEndpoint, req, nil, err)
			return
		}
		s.finish(ctx, ChatResponseEndpoint, req, result, nil)
	}()

	if err := s.verify(req.Signature); err != nil {
		return ChatResult{}, err
	}

	payload, err := decodeChatResponse(req.Body)
	if err != nil {
		return ChatResult{}, err
	}

	chatSession, err := s.sessions.FindActiveByToken(ctx, payload.token())
	if err != nil {
		var sessErr *session.Error
		if errors.Is(err, session.ErrNotFound) || (errors.As(err, &sessErr) && sessErr.Code == session.ErrorCodeNotFound) {
			return ChatResult{}, newError(ErrorCodeSessionNotFound, "session not found", err)
		}
		return ChatResult{}, newError(ErrorCodeInternal, "failed to load session", err)
	}

	intent := strings.TrimSpace(payload.Intent)
	if intent == "" {
		intent = model.IntentGeneral
	}

	customerID := chatSession.CustomerID
	if resolved := s.resolveCustomer(ctx, chatSession, payload.CustomerData, intent); resolved != "" {
		customerID = &resolved
	}

	sessionID := chatSession.ID
	conversation := model.Conversation{
		ID:          uuid.NewString(),
		SessionID:   &sessionID,
		CustomerID:  customerID,
		UserMessage: *payload.UserMessage,
		AIResponse:  payload.AIResponse,
		Intent:      intent,
		Platform:    model.PlatformWebchat,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.conversations.CreateConversation(ctx, &conversation); err != nil {
		return ChatResult{}, newError(ErrorCodeInternal, "failed to save conversation", err)
	}

	if err := s.sessions.Touch(ctx, chatSession.ID); err != nil {
		s.logger.Warn("session touch failed after webhook", "session", chatSession.ID, "error", err)
	}

	return ChatResult{
		ConversationID: conversation.ID,
		CustomerID:     customerID,
		SessionUpdated: true,
	}, nil
}

// resolveCustomer returns the id of the customer the payload identifies, or
// "" when there is none or resolution failed.
func (s *Service) resolveCustomer(ctx context.Context, chatSession model.ChatSession, data *customerData, intent string) string {
	if data == nil || strings.TrimSpace(data.Email) == "" || s.customers == nil {
		return ""
	}

	resolved, _, err := s.customers.Upsert(ctx, customer.UpsertInput{
		Name:        data.Name,
		Email:       data.Email,
		Phone:       data.Phone,
		Company:     data.Company,
		Status:      model.CustomerStatusContact,
		Source:      model.SourceChat,
		Notes:       fmt.Sprintf("Registrado automáticamente desde chat con intención: %s", intent),
		PromoteLead: true,
	})
	if err != nil {
		s.logger.Warn("customer resolution failed", "session", chatSession.ID, "error", err)
		return ""
	}

	if chatSession.CustomerID == nil {
		if _, err := s.sessions.LinkCustomer(ctx, chatSession.ID, resolved.ID); err != nil {
			s.logger.Warn("session link failed", "session", chatSession.ID, "customer", resolved.ID, "error", err)
		}
	}
	return resolved.ID
}

func decodeChatResponse(body []byte) (chatResponsePayload, error) {
	var payload chatResponsePayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&payload); err != nil {
		return chatResponsePayload{}, newError(ErrorCodeValidation, "invalid webhook payload", err)
	}

	switch {
	case !utils.IsToken(payload.token()):
		return chatResponsePayload{}, newError(ErrorCodeValidation, "sessionToken is missing or malformed", nil)
	case payload.UserMessage == nil:
		return chatResponsePayload{}, newError(ErrorCodeValidation, "userMessage is required", nil)
	case payload.AIResponse == nil:
		return chatResponsePayload{}, newError(ErrorCodeValidation, "aiResponse is required", nil)
	case utf8.RuneCountInString(*payload.UserMessage) > maxMessageLength:
		return chatResponsePayload{}, newError(ErrorCodeValidation, "userMessage must be at most 1000 characters", nil)
	}
	if payload.CustomerData != nil {
		if email := strings.TrimSpace(payload.CustomerData.Email); email != "" && !customer.ValidEmail(email) {
			return chatResponsePayload{}, newError(ErrorCodeValidation, "customerData.email is invalid", nil)
		}
	}
	return payload, nil
}
