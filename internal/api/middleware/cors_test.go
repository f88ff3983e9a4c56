package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(config CORSConfig) (http.HandlerFunc, *int) {
	calls := 0
	return CORS(config)(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}), &calls
}

func TestCORSPreflight(t *testing.T) {
	config := CORSConfig{
		AllowedOrigins:   []string{"https://shop.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}

	cases := []struct {
		name       string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin", "https://shop.example.com", http.StatusOK, "https://shop.example.com"},
		{"other origin", "https://evil.example.com", http.StatusForbidden, ""},
		{"no origin", "", http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, calls := corsHandler(config)
			req := httptest.NewRequest(http.MethodOptions, "/api/public/v1/session/new", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("unexpected allow-origin %q", got)
			}
			if *calls != 0 {
				t.Fatal("preflight must not reach the handler")
			}
		})
	}
}

func TestCORSSimpleRequests(t *testing.T) {
	handler, calls := corsHandler(CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowCredentials: true,
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://widget.example.org")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNoContent || *calls != 1 {
		t.Fatalf("request should reach the handler, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://widget.example.org" {
		t.Fatalf("wildcard with credentials should reflect the origin, got %q", got)
	}
	if rec.Header().Get("Vary") != "Origin" || rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("unexpected headers %v", rec.Header())
	}

	// Same-origin and server-to-server calls carry no Origin and still pass.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected response without origin: %d %v", rec.Code, rec.Header())
	}

	open, _ := corsHandler(CORSConfig{AllowedOrigins: []string{"*"}})
	rec = httptest.NewRecorder()
	open(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("wildcard without credentials should answer *, got %q", got)
	}
}
