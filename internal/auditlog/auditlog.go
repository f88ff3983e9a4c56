// Package auditlog records every exchange with the automation service. Writes
// are best-effort: a failed write is reported on the local logger and never
// returned to the caller.
package auditlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/model"

	"github.com/google/uuid"
)

const writeTimeout = 3 * time.Second

// Entry describes one inbound or outbound automation call. Payload and
// Response are JSON encoded unless they are already strings or raw bytes.
type Entry struct {
	Endpoint   string
	Method     string
	Payload    any
	Headers    map[string]string
	StatusCode int
	Response   any
	Error      string
}

type Store interface {
	PutWebhookLog(ctx context.Context, item model.WebhookLogItem) error
}

type Recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder returns a recorder writing to store. A nil store keeps entries
// on the local logger only.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With("component", "auditlog"),
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil {
		return
	}

	item := model.WebhookLogItem{
		LogID:      uuid.NewString(),
		Endpoint:   e.Endpoint,
		Method:     e.Method,
		Payload:    encode(e.Payload),
		Headers:    e.Headers,
		StatusCode: e.StatusCode,
		Response:   encode(e.Response),
		Error:      e.Error,
		CreatedAt:  r.now().UTC().Format(time.RFC3339Nano),
	}

	if r.store == nil {
		r.logger.Debug("webhook exchange",
			"endpoint", item.Endpoint,
			"method", item.Method,
			"status", item.StatusCode,
			"error", item.Error,
		)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("audit write panicked", "endpoint", item.Endpoint, "panic", p)
		}
	}()

	if err := r.store.PutWebhookLog(writeCtx, item); err != nil {
		r.logger.Warn("audit write failed",
			"endpoint", item.Endpoint,
			"status", item.StatusCode,
			"error", err,
		)
	}
}

func encode(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case json.RawMessage:
		return string(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
