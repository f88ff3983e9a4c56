// Package automation talks to the external workflow engine that produces AI
// replies and drives the spreadsheet import.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/auditlog"
)

const (
	ChatMessagePath = "/chat-message"
	TriggerSyncPath = "/trigger-sync"

	// SignatureHeader carries the shared secret in both directions.
	SignatureHeader = "X-Webhook-Signature"

	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// ErrUnavailable wraps every transport failure, timeout and non-2xx answer.
var ErrUnavailable = errors.New("automation service unavailable")

// ErrMalformedReply is returned when a 2xx answer cannot be decoded.
var ErrMalformedReply = errors.New("automation service returned a malformed reply")

type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	audit      *auditlog.Recorder
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func New(baseURL, secret string, timeout time.Duration, audit *auditlog.Recorder, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		audit:      audit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessageRequest struct {
	SessionToken string `json:"sessionToken"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

type chatMessageReply struct {
	Response string `json:"response"`
}

// SendChatMessage forwards a widget message and returns the reply text, which
// may be empty when the workflow produced nothing.
func (c *Client) SendChatMessage(ctx context.Context, sessionToken, message string) (string, error) {
	payload := chatMessageRequest{
		SessionToken: sessionToken,
		Message:      message,
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
	}

	body, err := c.post(ctx, ChatMessagePath, payload)
	if err != nil {
		return "", err
	}

	var reply chatMessageReply
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return strings.TrimSpace(reply.Response), nil
}

type triggerSyncRequest struct {
	SheetID   string `json:"sheetId,omitempty"`
	Force     bool   `json:"force"`
	Timestamp string `json:"timestamp"`
}

// TriggerSheetSync asks the workflow engine to re-import one sheet, or all of
// them when sheetID is empty. The raw JSON answer is returned as-is.
func (c *Client) TriggerSheetSync(ctx context.Context, sheetID string, force bool) (json.RawMessage, error) {
	body, err := c.post(ctx, TriggerSyncPath, triggerSyncRequest{
		SheetID:   sheetID,
		Force:     force,
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	start := time.Now()
	entry := auditlog.Entry{
		Endpoint: path,
		Method:   http.MethodPost,
		Payload:  payload,
		Headers:  map[string]string{"Content-Type": "application/json"},
	}
	if c.secret != "" {
		entry.Headers[SignatureHeader] = "[redacted]"
	}

	body, status, err := c.do(ctx, path, payload)
	entry.StatusCode = status
	if err != nil {
		entry.Error = err.Error()
		entry.Response = body
		observe(path, outcomeError, time.Since(start))
	} else {
		entry.Response = body
		observe(path, outcomeSuccess, time.Since(start))
	}
	c.audit.Record(ctx, entry)

	return body, err
}

func (c *Client) do(ctx context.Context, path string, payload any) ([]byte, int, error) {
	if c.baseURL == "" {
		return nil, 0, fmt.Errorf("%w: base url not configured", ErrUnavailable)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode automation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(SignatureHeader, c.secret)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return body, res.StatusCode, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	return body, res.StatusCode, nil
}
