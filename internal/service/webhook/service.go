// Package webhook applies callbacks sent by the automation service: late AI
// replies for a chat session and spreadsheet imports.
package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/auditlog"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
)

const (
	ChatResponseEndpoint       = "/webhook/chat-response"
	SheetsUpdatedEndpoint      = "/webhook/sheets-updated"
	CustomerRegisteredEndpoint = "/webhook/customer-registered"

	SignatureHeader = "X-Webhook-Signature"
)

type Sessions interface {
	FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error)
	Touch(ctx context.Context, sessionID string) error
	LinkCustomer(ctx context.Context, sessionID, customerID string) (bool, error)
}

type Customers interface {
	Upsert(ctx context.Context, in customer.UpsertInput) (model.Customer, bool, error)
}

type Conversations interface {
	CreateConversation(ctx context.Context, conversation *model.Conversation) error
}

type SheetRows interface {
	RecordRow(ctx context.Context, in sheets.RowInput) error
}

type Dependencies struct {
	Secret        string
	Sessions      Sessions
	Customers     Customers
	Conversations Conversations
	SheetRows     SheetRows
	Audit         *auditlog.Recorder
	Logger        *slog.Logger
	Now           func() time.Time
}

type Service struct {
	secret        string
	sessions      Sessions
	customers     Customers
	conversations Conversations
	sheetRows     SheetRows
	audit         *auditlog.Recorder
	logger        *slog.Logger
	now           func() time.Time
}

func New(deps Dependencies) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		secret:        deps.Secret,
		sessions:      deps.Sessions,
		customers:     deps.Customers,
		conversations: deps.Conversations,
		sheetRows:     deps.SheetRows,
		audit:         deps.Audit,
		logger:        logger.With("component", "webhook"),
		now:           now,
	}
}

// Request is an inbound callback as received on the wire. Body is kept raw so
// it can be audited even when it does not decode.
type Request struct {
	Signature string
	Headers   map[string]string
	Body      []byte
}

// verify accepts every request when no secret is configured.
func (s *Service) verify(signature string) error {
	if s.secret == "" {
		return nil
	}
	if signature == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(s.secret)) != 1 {
		return newError(ErrorCodeInvalidSignature, "invalid webhook signature", nil)
	}
	return nil
}

// finish audits and counts one handled callback.
func (s *Service) finish(ctx context.Context, endpoint string, req Request, result any, err error) {
	entry := auditlog.Entry{
		Endpoint:   endpoint,
		Method:     http.MethodPost,
		Payload:    req.Body,
		Headers:    redact(req.Headers),
		StatusCode: http.StatusOK,
		Response:   result,
	}
	outcome := "success"
	if err != nil {
		code := ErrorCodeInternal
		var whErr *Error
		if errors.As(err, &whErr) {
			code = whErr.Code
		}
		entry.StatusCode = code.Status()
		entry.Error = err.Error()
		entry.Response = map[string]string{"code": string(code)}
		outcome = string(code)
	}
	outcomes.WithLabelValues(endpoint, outcome).Inc()
	s.audit.Record(ctx, entry)
}

func redact(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == SignatureHeader || http.CanonicalHeaderKey(k) == "Authorization" {
			v = "[redacted]"
		}
		out[k] = v
	}
	return out
}
