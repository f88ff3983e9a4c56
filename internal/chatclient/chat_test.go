package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
)

type fakeServer struct {
	mu            sync.Mutex
	token         string
	conversations []dto.ConversationResponse
	failSend      bool
	sendGate      chan struct{}
	historyCalls  atomic.Int32
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/public/v1/session/new", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, dto.CreateSessionResponse{Success: true, SessionToken: f.token})
	})
	mux.HandleFunc("/api/public/v1/session/send", func(w http.ResponseWriter, r *http.Request) {
		var req dto.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json", "code": "VALIDATION_ERROR"})
			return
		}
		if f.sendGate != nil {
			<-f.sendGate
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failSend {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "down", "code": "INTERNAL_ERROR"})
			return
		}
		if req.SessionToken != f.token {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "session not found", "code": "NOT_FOUND"})
			return
		}
		reply := "echo: " + req.Message
		conv := dto.ConversationResponse{
			ID:          "conv-" + strconv.Itoa(len(f.conversations)+1),
			UserMessage: req.Message,
			AIResponse:  &reply,
			Intent:      "general_inquiry",
			Platform:    "webchat",
		}
		f.conversations = append(f.conversations, conv)
		writeJSON(w, http.StatusOK, dto.SendMessageResponse{Success: true, ConversationID: conv.ID, AIResponse: reply, Intent: conv.Intent})
	})
	mux.HandleFunc("/api/public/v1/session/history", func(w http.ResponseWriter, r *http.Request) {
		f.historyCalls.Add(1)
		if r.URL.Query().Get("sessionToken") != f.token {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "session not found", "code": "NOT_FOUND"})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		f.mu.Lock()
		page := []dto.ConversationResponse{}
		if offset < len(f.conversations) {
			page = append(page, f.conversations[offset:]...)
		}
		f.mu.Unlock()
		if len(page) > limit {
			page = page[:limit]
		}
		writeJSON(w, http.StatusOK, dto.HistoryResponse{
			Success:       true,
			Conversations: page,
			Pagination:    dto.HistoryPagination{Limit: limit, Offset: offset, Count: len(page), HasMore: len(page) == limit},
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFake(t *testing.T) (*fakeServer, *Client) {
	t.Helper()
	fake := &fakeServer{token: "tok-1"}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return fake, New(srv.URL + "/api/public/v1")
}

func TestClientErrorsCarryServerCode(t *testing.T) {
	_, client := newFake(t)

	_, err := client.Send(context.Background(), "nope", "hola")
	require.Error(t, err)
	assert.True(t, IsSessionNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "session not found", apiErr.Message)
}

func TestFullHistoryPagesThroughEverything(t *testing.T) {
	fake, client := newFake(t)
	for i := 0; i < HistoryPageSize+5; i++ {
		fake.conversations = append(fake.conversations, dto.ConversationResponse{ID: "c" + strconv.Itoa(i), UserMessage: "m"})
	}

	all, err := client.FullHistory(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, all, HistoryPageSize+5)
	assert.Equal(t, "c0", all[0].ID)
	assert.Equal(t, "c104", all[len(all)-1].ID)
}

func TestChatStartFetchesImmediatelyAndStopEndsPolling(t *testing.T) {
	fake, client := newFake(t)
	reply := "hi"
	fake.conversations = []dto.ConversationResponse{{ID: "c1", UserMessage: "hola", AIResponse: &reply}}

	updates := make(chan []Message, 16)
	chat := NewChat(client, Config{
		Interval: 20 * time.Millisecond,
		OnUpdate: func(m []Message) {
			select {
			case updates <- m:
			default:
			}
		},
	})
	require.NoError(t, chat.Start(context.Background()))
	assert.Equal(t, "tok-1", chat.SessionToken())

	select {
	case msgs := <-updates:
		require.Len(t, msgs, 2)
		assert.Equal(t, RoleUser, msgs[0].Role)
		assert.Equal(t, "hola", msgs[0].Text)
		assert.Equal(t, RoleAssistant, msgs[1].Role)
	case <-time.After(time.Second):
		t.Fatal("no initial history fetch")
	}

	require.Eventually(t, func() bool { return fake.historyCalls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	chat.Stop()
	select {
	case <-chat.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
	calls := fake.historyCalls.Load()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, calls, fake.historyCalls.Load(), "polling continued after Stop")

	chat.Stop()
}

func TestChatStopsWhenContextCancelled(t *testing.T) {
	_, client := newFake(t)

	ctx, cancel := context.WithCancel(context.Background())
	chat := NewChat(client, Config{Interval: 10 * time.Millisecond})
	require.NoError(t, chat.Start(ctx))

	cancel()
	select {
	case <-chat.Done():
	case <-time.After(time.Second):
		t.Fatal("polling did not stop after cancel")
	}
}

func TestSendIsOptimistic(t *testing.T) {
	fake, client := newFake(t)
	fake.sendGate = make(chan struct{})

	chat := NewChat(client, Config{SessionToken: "tok-1"})

	done := make(chan error, 1)
	go func() {
		_, err := chat.Send(context.Background(), "precio?")
		done <- err
	}()

	require.Eventually(t, func() bool {
		msgs := chat.Messages()
		return len(msgs) == 1 && msgs[0].Pending && msgs[0].Text == "precio?"
	}, time.Second, 5*time.Millisecond)

	close(fake.sendGate)
	require.NoError(t, <-done)

	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.False(t, msgs[0].Pending)
	assert.Equal(t, "echo: precio?", msgs[1].Text)

	require.NoError(t, chat.Refresh(context.Background()))
	assert.Len(t, chat.Messages(), 2, "confirmed entry must not be duplicated once history has it")
}

func TestFailedSendRemovesOptimisticEntry(t *testing.T) {
	fake, client := newFake(t)
	fake.failSend = true

	var seen [][]Message
	var mu sync.Mutex
	chat := NewChat(client, Config{
		SessionToken: "tok-1",
		OnUpdate: func(m []Message) {
			mu.Lock()
			seen = append(seen, m)
			mu.Unlock()
		},
	})

	_, err := chat.Send(context.Background(), "hola")
	require.Error(t, err)
	assert.Empty(t, chat.Messages())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	require.Len(t, seen[0], 1)
	assert.True(t, seen[0][0].Pending)
	assert.Empty(t, seen[1])
}

func TestStaleRefreshIsDropped(t *testing.T) {
	chat := NewChat(New("http://unused"), Config{SessionToken: "tok-1"})

	chat.mu.Lock()
	chat.issued = 2
	chat.applied = 2
	chat.history = []dto.ConversationResponse{{ID: "new"}}
	chat.mu.Unlock()

	slow := &fakeServer{token: "tok-1", conversations: []dto.ConversationResponse{{ID: "old"}}}
	srv := httptest.NewServer(slow.handler())
	defer srv.Close()
	chat.client = New(srv.URL + "/api/public/v1")

	// simulate a response whose request was issued before the applied one
	chat.mu.Lock()
	chat.issued = 0
	chat.mu.Unlock()
	require.NoError(t, chat.Refresh(context.Background()))

	msgs := chat.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].ConversationID)
}

func TestSendBeforeStartFails(t *testing.T) {
	chat := NewChat(New("http://unused"), Config{})
	_, err := chat.Send(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, chat.Refresh(context.Background()), ErrNotStarted)
}
