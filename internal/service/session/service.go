package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/utils"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	now      func() time.Time
	newToken func() (string, error)
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewGormRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     repo,
		now:      now,
		newToken: utils.CreateToken,
	}
}

// CreateSession opens an active session with a fresh token. A token collision
// is reported as a conflict; it is never retried with the same token.
func (s *Service) CreateSession(ctx context.Context, metadata Metadata) (model.ChatSession, error) {
	metadata, err := metadata.normalize()
	if err != nil {
		return model.ChatSession{}, newError(ErrorCodeValidation, err.Error(), nil)
	}

	token, err := s.newToken()
	if err != nil {
		return model.ChatSession{}, newError(ErrorCodeInternal, "failed to generate session token", err)
	}

	now := s.now().UTC()
	meta := metadata.jsonMap(now.Format(time.RFC3339))

	session := model.ChatSession{
		ID:            uuid.NewString(),
		SessionToken:  token,
		IsActive:      true,
		LastMessageAt: now,
		Metadata:      meta,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, &session); err != nil {
		if errors.Is(err, ErrConflict) {
			return model.ChatSession{}, newError(ErrorCodeConflict, "session token collision", err)
		}
		return model.ChatSession{}, newError(ErrorCodeInternal, "failed to create session", err)
	}

	return session, nil
}

// FindActiveByToken never distinguishes unknown tokens from inactive sessions.
func (s *Service) FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ChatSession{}, newError(ErrorCodeValidation, "session token is required", nil)
	}
	if !utils.IsToken(token) {
		return model.ChatSession{}, newError(ErrorCodeNotFound, "session not found", ErrNotFound)
	}

	session, err := s.repo.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ChatSession{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return model.ChatSession{}, newError(ErrorCodeInternal, "failed to load session", err)
	}
	return session, nil
}

func (s *Service) Touch(ctx context.Context, sessionID string) error {
	if err := s.repo.Touch(ctx, sessionID, s.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "session not found", err)
		}
		return newError(ErrorCodeInternal, "failed to update session activity", err)
	}
	return nil
}

// LinkCustomer attaches customerID to the session if it has none yet. Calling
// it again, with any id, leaves the first link in place.
func (s *Service) LinkCustomer(ctx context.Context, sessionID, customerID string) (bool, error) {
	if strings.TrimSpace(customerID) == "" {
		return false, newError(ErrorCodeValidation, "customer id is required", nil)
	}
	linked, err := s.repo.LinkCustomer(ctx, sessionID, customerID)
	if err != nil {
		return false, newError(ErrorCodeInternal, "failed to link customer", err)
	}
	return linked, nil
}
