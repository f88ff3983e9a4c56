// Package chatclient is the consumer side of the public widget API: it opens
// a session, sends messages and polls the conversation history.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
)

const (
	DefaultTimeout = 15 * time.Second

	// HistoryPageSize is the server's maximum history page.
	HistoryPageSize = 100

	maxResponseBytes = 4 << 20
)

// APIError is a non-2xx answer from the public server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chat api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("chat api: %d: %s", e.StatusCode, e.Message)
}

// IsSessionNotFound reports whether err means the session token is unknown
// or no longer active.
func IsSessionNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New returns a client for the public API mounted at baseURL, for example
// "http://localhost:82/api/public/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "chatbot-crm-chatclient",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) NewSession(ctx context.Context, metadata dto.SessionMetadata) (string, error) {
	var res dto.CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, "/session/new", dto.CreateSessionRequest{Metadata: &metadata}, &res); err != nil {
		return "", err
	}
	if res.SessionToken == "" {
		return "", errors.New("chat api: empty session token")
	}
	return res.SessionToken, nil
}

func (c *Client) Send(ctx context.Context, sessionToken, message string) (dto.SendMessageResponse, error) {
	var res dto.SendMessageResponse
	err := c.do(ctx, http.MethodPost, "/session/send", dto.SendMessageRequest{
		SessionToken: sessionToken,
		Message:      message,
	}, &res)
	return res, err
}

func (c *Client) History(ctx context.Context, sessionToken string, limit, offset int) (dto.HistoryResponse, error) {
	q := url.Values{}
	q.Set("sessionToken", sessionToken)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var res dto.HistoryResponse
	err := c.do(ctx, http.MethodGet, "/session/history?"+q.Encode(), nil, &res)
	return res, err
}

// FullHistory pages through the whole history in chronological order.
func (c *Client) FullHistory(ctx context.Context, sessionToken string) ([]dto.ConversationResponse, error) {
	var all []dto.ConversationResponse
	offset := 0
	for {
		page, err := c.History(ctx, sessionToken, HistoryPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Conversations...)
		if !page.Pagination.HasMore || len(page.Conversations) == 0 {
			return all, nil
		}
		offset += len(page.Conversations)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var payload struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Code = payload.Code
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
