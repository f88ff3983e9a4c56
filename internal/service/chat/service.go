package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"

	"github.com/google/uuid"
)

const (
	MaxMessageLength = 1000

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// Sessions is the part of the session store the relay needs.
type Sessions interface {
	FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error)
	Touch(ctx context.Context, sessionID string) error
}

// Relayer forwards a message to the automation service and returns its reply.
type Relayer interface {
	SendChatMessage(ctx context.Context, sessionToken, message string) (string, error)
}

type Service struct {
	repo        Repository
	sessions    Sessions
	relay       Relayer
	catalog     Localizer
	defaultLang string
	logger      *slog.Logger
	now         func() time.Time
}

type Config struct {
	Sessions        Sessions
	Relay           Relayer
	Catalog         Localizer
	DefaultLanguage string
	Logger          *slog.Logger
}

func New(db *database.Database, cfg Config) *Service {
	return NewWithRepository(NewGormRepository(db), cfg, time.Now)
}

func NewWithRepository(repo Repository, cfg Config, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		sessions:    cfg.Sessions,
		relay:       cfg.Relay,
		catalog:     cfg.Catalog,
		defaultLang: cfg.DefaultLanguage,
		logger:      logger.With("component", "chat"),
		now:         now,
	}
}

type RelayResult struct {
	Conversation model.Conversation
	AIResponse   string
	Intent       string
	Fallback     bool
}

// Relay answers a widget message. Automation failures are absorbed by the
// keyword fallback; only validation, unknown sessions and storage failures
// reach the caller. The message is stored and forwarded exactly as typed;
// a whitespace-only message counts as empty.
func (s *Service) Relay(ctx context.Context, sessionToken, message string) (RelayResult, error) {
	if strings.TrimSpace(message) == "" {
		return RelayResult{}, newError(ErrorCodeValidation, "message must not be empty", nil)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return RelayResult{}, newError(ErrorCodeValidation, "message must be at most 1000 characters", nil)
	}

	chatSession, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return RelayResult{}, err
	}

	if err := s.sessions.Touch(ctx, chatSession.ID); err != nil {
		return RelayResult{}, newError(ErrorCodeInternal, "failed to update session activity", err)
	}

	intent := ClassifyIntent(message)

	reply, relayErr := s.forward(ctx, chatSession.SessionToken, message)
	usedFallback := false
	if relayErr != nil || reply == "" {
		if relayErr != nil {
			s.logger.Warn("automation relay failed, using fallback",
				"session", chatSession.ID,
				"error", relayErr,
			)
		}
		lang := chatSession.MetadataString("language")
		if lang == "" {
			lang = s.defaultLang
		}
		reply = fallbackResponse(s.catalog, lang, message)
		usedFallback = true
	}
	relayOutcomes.WithLabelValues(outcomeLabel(usedFallback)).Inc()

	sessionID := chatSession.ID
	conversation := model.Conversation{
		ID:          uuid.NewString(),
		SessionID:   &sessionID,
		CustomerID:  chatSession.CustomerID,
		UserMessage: message,
		AIResponse:  &reply,
		Intent:      intent,
		Platform:    model.PlatformWebchat,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateConversation(ctx, &conversation); err != nil {
		return RelayResult{}, newError(ErrorCodeInternal, "failed to save conversation", err)
	}

	return RelayResult{
		Conversation: conversation,
		AIResponse:   reply,
		Intent:       intent,
		Fallback:     usedFallback,
	}, nil
}

func (s *Service) forward(ctx context.Context, token, message string) (string, error) {
	if s.relay == nil {
		return "", errors.New("automation relay not configured")
	}
	return s.relay.SendChatMessage(ctx, token, message)
}

type HistoryResult struct {
	Session       model.ChatSession
	Conversations []model.Conversation
	Limit         int
	Offset        int
	HasMore       bool
}

// History returns one chronological page of a session's conversations. HasMore
// is true whenever the page is full, so the last full page reports a
// follow-up that may be empty.
func (s *Service) History(ctx context.Context, sessionToken string, limit, offset int) (HistoryResult, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		return HistoryResult{}, newError(ErrorCodeValidation, "offset must not be negative", nil)
	}

	chatSession, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return HistoryResult{}, err
	}

	if err := s.sessions.Touch(ctx, chatSession.ID); err != nil {
		return HistoryResult{}, newError(ErrorCodeInternal, "failed to update session activity", err)
	}

	conversations, err := s.repo.ListBySession(ctx, chatSession.ID, limit, offset)
	if err != nil {
		return HistoryResult{}, newError(ErrorCodeInternal, "failed to load conversations", err)
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}

	return HistoryResult{
		Session:       chatSession,
		Conversations: conversations,
		Limit:         limit,
		Offset:        offset,
		HasMore:       len(conversations) == limit,
	}, nil
}

func (s *Service) resolveSession(ctx context.Context, token string) (model.ChatSession, error) {
	chatSession, err := s.sessions.FindActiveByToken(ctx, token)
	if err == nil {
		return chatSession, nil
	}

	var sessErr *session.Error
	if errors.As(err, &sessErr) {
		switch sessErr.Code {
		case session.ErrorCodeValidation:
			return model.ChatSession{}, newError(ErrorCodeValidation, sessErr.Message, err)
		case session.ErrorCodeNotFound:
			return model.ChatSession{}, newError(ErrorCodeNotFound, "session not found", err)
		}
	}
	if errors.Is(err, session.ErrNotFound) {
		return model.ChatSession{}, newError(ErrorCodeNotFound, "session not found", err)
	}
	return model.ChatSession{}, newError(ErrorCodeInternal, "failed to load session", err)
}
