package chatclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
)

const DefaultPollInterval = 3 * time.Second

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one line of the rendered transcript. Pending marks an
// optimistic user message whose relay call has not resolved yet.
type Message struct {
	ID             string
	ConversationID string
	Role           Role
	Text           string
	Intent         string
	CreatedAt      time.Time
	Pending        bool
}

type Config struct {
	// SessionToken resumes an existing session; empty creates a new one.
	SessionToken string
	Metadata     dto.SessionMetadata
	Interval     time.Duration
	// OnUpdate receives a fresh transcript copy after every state change. It
	// runs on the goroutine that changed the state and must not block.
	OnUpdate func([]Message)
	// OnError receives poll failures. Polling keeps going afterwards.
	OnError func(error)
	Logger  *slog.Logger
	Now     func() time.Time
}

type pendingMessage struct {
	id        string
	text      string
	createdAt time.Time
}

// Chat keeps the client-side transcript of one session in sync with the
// server by polling.
type Chat struct {
	client   *Client
	interval time.Duration
	metadata dto.SessionMetadata
	onUpdate func([]Message)
	onError  func(error)
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	token     string
	history   []dto.ConversationResponse
	confirmed []dto.ConversationResponse
	pending   []pendingMessage
	issued    uint64
	applied   uint64

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

var ErrNotStarted = errors.New("chatclient: chat not started")

func NewChat(client *Client, cfg Config) *Chat {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "chatclient")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Chat{
		client:   client,
		interval: cfg.Interval,
		metadata: cfg.Metadata,
		onUpdate: cfg.OnUpdate,
		onError:  cfg.OnError,
		logger:   cfg.Logger,
		now:      cfg.Now,
		token:    cfg.SessionToken,
	}
}

// Start creates the session when needed, fetches the history once and then
// polls every interval until ctx is cancelled or Stop is called.
func (c *Chat) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.done != nil {
		return errors.New("chatclient: chat already started")
	}

	if c.SessionToken() == "" {
		token, err := c.client.NewSession(ctx, c.metadata)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.token = token
		c.mu.Unlock()
	}

	pollCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.poll(pollCtx, c.done)
	return nil
}

// Stop ends polling and waits for the loop to exit. It is safe to call more
// than once.
func (c *Chat) Stop() {
	c.lifecycle.Lock()
	cancel, done := c.cancel, c.done
	c.lifecycle.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed once polling has stopped.
func (c *Chat) Done() <-chan struct{} {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.done
}

func (c *Chat) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Chat) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.refreshAndReport(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshAndReport(ctx)
		}
	}
}

func (c *Chat) refreshAndReport(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
		c.logger.Warn("history fetch failed", "error", err)
		if c.onError != nil {
			c.onError(err)
		}
	}
}

// Refresh fetches the full history once. When fetches overlap, only the
// most recently issued one is applied; older responses are dropped.
func (c *Chat) Refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.issued++
	seq := c.issued
	c.mu.Unlock()
	if token == "" {
		return ErrNotStarted
	}

	conversations, err := c.client.FullHistory(ctx, token)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		return nil
	}
	c.applied = seq
	c.history = conversations
	c.confirmed = pruneConfirmed(c.confirmed, conversations)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Send shows the message immediately and relays it. A failed relay removes
// the optimistic entry again and returns the error.
func (c *Chat) Send(ctx context.Context, text string) (dto.SendMessageResponse, error) {
	entry := pendingMessage{id: "pending-" + uuid.NewString(), text: text, createdAt: c.now()}

	c.mu.Lock()
	token := c.token
	if token == "" {
		c.mu.Unlock()
		return dto.SendMessageResponse{}, ErrNotStarted
	}
	c.pending = append(c.pending, entry)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	res, err := c.client.Send(ctx, token, text)

	c.mu.Lock()
	c.pending = removePending(c.pending, entry.id)
	if err == nil && !containsConversation(c.history, res.ConversationID) {
		reply := res.AIResponse
		c.confirmed = append(c.confirmed, dto.ConversationResponse{
			ID:          res.ConversationID,
			UserMessage: text,
			AIResponse:  &reply,
			Intent:      res.Intent,
			CreatedAt:   entry.createdAt,
		})
	}
	snapshot = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	if err != nil {
		return dto.SendMessageResponse{}, err
	}
	return res, nil
}

// Messages returns the current transcript.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Chat) snapshotLocked() []Message {
	out := make([]Message, 0, 2*(len(c.history)+len(c.confirmed))+len(c.pending))
	for _, conv := range c.history {
		out = appendConversation(out, conv)
	}
	for _, conv := range c.confirmed {
		out = appendConversation(out, conv)
	}
	for _, p := range c.pending {
		out = append(out, Message{ID: p.id, Role: RoleUser, Text: p.text, CreatedAt: p.createdAt, Pending: true})
	}
	return out
}

func (c *Chat) notify(snapshot []Message) {
	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}

func appendConversation(out []Message, conv dto.ConversationResponse) []Message {
	out = append(out, Message{
		ID:             conv.ID + ":user",
		ConversationID: conv.ID,
		Role:           RoleUser,
		Text:           conv.UserMessage,
		Intent:         conv.Intent,
		CreatedAt:      conv.CreatedAt,
	})
	if conv.AIResponse != nil && *conv.AIResponse != "" {
		out = append(out, Message{
			ID:             conv.ID + ":assistant",
			ConversationID: conv.ID,
			Role:           RoleAssistant,
			Text:           *conv.AIResponse,
			Intent:         conv.Intent,
			CreatedAt:      conv.CreatedAt,
		})
	}
	return out
}

func removePending(pending []pendingMessage, id string) []pendingMessage {
	out := pending[:0]
	for _, p := range pending {
		if p.id != id {
			out = append(out, p)
		}
	}
	return out
}

func pruneConfirmed(confirmed, history []dto.ConversationResponse) []dto.ConversationResponse {
	if len(confirmed) == 0 {
		return confirmed
	}
	out := make([]dto.ConversationResponse, 0, len(confirmed))
	for _, conv := range confirmed {
		if !containsConversation(history, conv.ID) {
			out = append(out, conv)
		}
	}
	return out
}

func containsConversation(list []dto.ConversationResponse, id string) bool {
	for _, conv := range list {
		if conv.ID == id {
			return true
		}
	}
	return false
}
