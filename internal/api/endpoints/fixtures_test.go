package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/queue"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.ChatSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]model.ChatSession)}
}

func (m *sessionStore) Create(ctx context.Context, s *model.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.SessionToken == s.SessionToken {
			return session.ErrConflict
		}
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *sessionStore) FindActiveByToken(ctx context.Context, token string) (model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.SessionToken == token && s.IsActive {
			return s, nil
		}
	}
	return model.ChatSession{}, session.ErrNotFound
}

func (m *sessionStore) Touch(ctx context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return session.ErrNotFound
	}
	s.LastMessageAt = at
	m.sessions[sessionID] = s
	return nil
}

func (m *sessionStore) LinkCustomer(ctx context.Context, sessionID, customerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.CustomerID != nil {
		return false, nil
	}
	s.CustomerID = &customerID
	m.sessions[sessionID] = s
	return true, nil
}

func (m *sessionStore) only(t *testing.T) model.ChatSession {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(m.sessions))
	}
	for _, s := range m.sessions {
		return s
	}
	return model.ChatSession{}
}

type conversationStore struct {
	mu    sync.Mutex
	items []model.Conversation
}

func (m *conversationStore) CreateConversation(ctx context.Context, c *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *c)
	return nil
}

func (m *conversationStore) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Conversation, 0)
	for _, c := range m.items {
		if c.SessionID != nil && *c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []model.Conversation{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *conversationStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type customerStore struct {
	mu        sync.Mutex
	customers map[string]model.Customer
}

func newCustomerStore() *customerStore {
	return &customerStore{customers: make(map[string]model.Customer)}
}

func (m *customerStore) List(ctx context.Context, filter customer.Filter) ([]model.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Customer, 0)
	search := strings.ToLower(filter.Search)
	for _, c := range m.customers {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Source != "" && c.Source != filter.Source {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email+" "+c.Company+" "+c.PhoneValue()), search) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return []model.Customer{}, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *customerStore) CountRelations(ctx context.Context, ids []string) (map[string]customer.Counts, error) {
	return map[string]customer.Counts{}, nil
}

func (m *customerStore) FindByID(ctx context.Context, id string) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return model.Customer{}, customer.ErrNotFound
	}
	return c, nil
}

func (m *customerStore) FindByEmail(ctx context.Context, email string) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return model.Customer{}, customer.ErrNotFound
}

func (m *customerStore) FindByPhone(ctx context.Context, phone string) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.PhoneValue() == phone {
			return c, nil
		}
	}
	return model.Customer{}, customer.ErrNotFound
}

func (m *customerStore) Create(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.Email == c.Email {
			return customer.ErrConflict
		}
	}
	m.customers[c.ID] = *c
	return nil
}

func (m *customerStore) Update(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return customer.ErrNotFound
	}
	m.customers[c.ID] = *c
	return nil
}

func (m *customerStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return customer.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *customerStore) RecentConversations(ctx context.Context, id string, limit int) ([]model.Conversation, error) {
	return nil, nil
}

func (m *customerStore) SheetSyncs(ctx context.Context, id string) ([]model.SheetSync, error) {
	return nil, nil
}

func (m *customerStore) put(c model.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
}

func (m *customerStore) byEmail(email string) (model.Customer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Email == email {
			return c, true
		}
	}
	return model.Customer{}, false
}

func newTestServer(t *testing.T, registrars ...api.RouteRegistrar) http.Handler {
	t.Helper()
	queueManager := queue.NewRequestQueueManager(10, 2)
	t.Cleanup(queueManager.Shutdown)
	server := api.NewAPIServer(":0", queueManager, nil, api.Options{Logger: quietLogger()}, registrars...)
	return server.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}
