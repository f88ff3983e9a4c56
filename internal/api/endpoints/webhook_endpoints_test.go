package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/model"
)

const testWebhookSecret = "s3cret"

type envelope struct {
	Success   bool             `json:"success"`
	Timestamp string           `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
	Error     dto.WebhookError `json:"error"`
}

func signed() map[string]string {
	return map[string]string{"X-Webhook-Signature": testWebhookSecret}
}

func TestChatResponseWebhookRejectsBadSignature(t *testing.T) {
	f := setupPublicFixture(t, testWebhookSecret)
	token := f.newSession(t)

	rec := doJSON(t, f.handler, http.MethodPost, publicPrefix+"/webhook/chat-response", map[string]any{
		"sessionToken": token,
		"userMessage":  "hola",
		"aiResponse":   "buenas",
	}, map[string]string{"X-Webhook-Signature": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	decodeBody(t, rec, &env)
	if env.Success || env.Error.Code != "INVALID_SIGNATURE" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if _, err := time.Parse(time.RFC3339, env.Error.Timestamp); err != nil {
		t.Fatalf("error timestamp should be RFC3339: %q", env.Error.Timestamp)
	}
	if f.conversations.count() != 0 {
		t.Fatal("rejected callback must not store a conversation")
	}
}

func TestChatResponseWebhookReconciles(t *testing.T) {
	f := setupPublicFixture(t, testWebhookSecret)
	token := f.newSession(t)

	rec := doJSON(t, f.handler, http.MethodPost, publicPrefix+"/webhook/chat-response", map[string]any{
		"sessionToken": token,
		"userMessage":  "quiero hablar con alguien",
		"aiResponse":   "Te contactamos pronto",
		"intent":       "contact_request",
		"customerData": map[string]string{
			"name":  "Ana Pérez",
			"email": "Ana@Example.com",
		},
	}, signed())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	decodeBody(t, rec, &env)
	if !env.Success || env.Timestamp == "" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var data struct {
		ConversationID string  `json:"conversationId"`
		CustomerID     *string `json:"customerId"`
		SessionUpdated bool    `json:"sessionUpdated"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.ConversationID == "" || data.CustomerID == nil || !data.SessionUpdated {
		t.Fatalf("unexpected data %+v", data)
	}

	created, ok := f.customers.byEmail("ana@example.com")
	if !ok {
		t.Fatal("expected customer to be created")
	}
	if created.Status != model.CustomerStatusContact || created.Source != model.SourceChat {
		t.Fatalf("unexpected customer %+v", created)
	}
	if linked := f.sessions.only(t); linked.CustomerID == nil || *linked.CustomerID != created.ID {
		t.Fatalf("expected session to be linked to %s, got %v", created.ID, linked.CustomerID)
	}

	rec = doJSON(t, f.handler, http.MethodGet, publicPrefix+"/session/history?sessionToken="+token, nil, nil)
	var page dto.HistoryResponse
	decodeBody(t, rec, &page)
	if len(page.Conversations) != 1 || page.Conversations[0].Intent != "contact_request" {
		t.Fatalf("webhook conversation missing from history: %+v", page.Conversations)
	}
}

func TestChatResponseWebhookFailures(t *testing.T) {
	f := setupPublicFixture(t, testWebhookSecret)
	token := f.newSession(t)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", "{", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing reply", map[string]any{"sessionToken": token, "userMessage": "hola"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad email", map[string]any{
			"sessionToken": token, "userMessage": "hola", "aiResponse": "hey",
			"customerData": map[string]string{"email": "nope"},
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown session", map[string]any{
			"sessionToken": strings.Repeat("d", 64), "userMessage": "hola", "aiResponse": "hey",
		}, http.StatusNotFound, "SESSION_NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, f.handler, http.MethodPost, publicPrefix+"/webhook/chat-response", tc.body, signed())
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var env envelope
			decodeBody(t, rec, &env)
			if env.Success || env.Error.Code != tc.code {
				t.Fatalf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestCustomerRegisteredWebhook(t *testing.T) {
	f := setupPublicFixture(t)

	rec := doJSON(t, f.handler, http.MethodPost, publicPrefix+"/webhook/customer-registered", map[string]string{
		"name":  "Luis Gómez",
		"email": "luis@example.com",
		"phone": "+34600000000",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	decodeBody(t, rec, &env)
	var data struct {
		CustomerID string `json:"customerId"`
		Created    bool   `json:"created"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Created || data.CustomerID == "" {
		t.Fatalf("unexpected data %+v", data)
	}

	stored, ok := f.customers.byEmail("luis@example.com")
	if !ok || stored.Source != model.SourceSheets || stored.PhoneValue() != "+34600000000" {
		t.Fatalf("unexpected stored customer %+v", stored)
	}
}
