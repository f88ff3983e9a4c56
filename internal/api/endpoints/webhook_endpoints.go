package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/service/webhook"
)

type WebhookEndpoints interface {
	ChatResponse(http.ResponseWriter, *http.Request) error
	SheetsUpdated(http.ResponseWriter, *http.Request) error
	CustomerRegistered(http.ResponseWriter, *http.Request) error
}

type webhookEndpoints struct {
	service *webhook.Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewWebhookEndpoints(service *webhook.Service, logger *slog.Logger) WebhookEndpoints {
	if logger == nil {
		logger = slog.Default()
	}
	return &webhookEndpoints{
		service: service,
		logger:  logger.With("component", "webhook-endpoints"),
		now:     time.Now,
	}
}

func (h *webhookEndpoints) ChatResponse(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: func(w http.ResponseWriter, r *http.Request) error {
			return h.handle(w, r, func(ctx context.Context, req webhook.Request) (any, error) {
				return h.service.Reconcile(ctx, req)
			})
		},
	})
}

func (h *webhookEndpoints) SheetsUpdated(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: func(w http.ResponseWriter, r *http.Request) error {
			return h.handle(w, r, func(ctx context.Context, req webhook.Request) (any, error) {
				return h.service.SheetsUpdated(ctx, req)
			})
		},
	})
}

func (h *webhookEndpoints) CustomerRegistered(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: func(w http.ResponseWriter, r *http.Request) error {
			return h.handle(w, r, func(ctx context.Context, req webhook.Request) (any, error) {
				return h.service.CustomerRegistered(ctx, req)
			})
		},
	})
}

// handle answers with the webhook envelope on every outcome; the service
// does the auditing.
func (h *webhookEndpoints) handle(w http.ResponseWriter, r *http.Request, fn func(context.Context, webhook.Request) (any, error)) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return h.writeFailure(w, webhook.ErrorCodeValidation, "Could not read request body", fmt.Errorf("read webhook body: %w", err))
	}

	req := webhook.Request{
		Signature: r.Header.Get(webhook.SignatureHeader),
		Headers:   flattenHeaders(r.Header),
		Body:      body,
	}

	data, err := fn(r.Context(), req)
	if err != nil {
		var whErr *webhook.Error
		if errors.As(err, &whErr) {
			return h.writeFailure(w, whErr.Code, whErr.Message, whErr.Err)
		}
		return h.writeFailure(w, webhook.ErrorCodeInternal, "Internal server error", err)
	}

	return WriteJSON(w, http.StatusOK, dto.WebhookSuccess{
		Success:   true,
		Timestamp: h.timestamp(),
		Data:      data,
	})
}

func (h *webhookEndpoints) writeFailure(w http.ResponseWriter, code webhook.ErrorCode, message string, cause error) error {
	status := code.Status()
	if status >= http.StatusInternalServerError {
		h.logger.Error("webhook failed", "code", code, "error", cause)
		message = "Internal server error"
	}
	return WriteJSON(w, status, dto.WebhookFailure{
		Success: false,
		Error: dto.WebhookError{
			Message:   message,
			Code:      string(code),
			Timestamp: h.timestamp(),
		},
	})
}

func (h *webhookEndpoints) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for k, v := range header {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
