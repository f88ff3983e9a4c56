package utils

import (
	"net/http/httptest"
	"testing"
)

func TestCreateTokenShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		token, err := CreateToken()
		if err != nil {
			t.Fatalf("CreateToken error: %v", err)
		}
		if !IsToken(token) {
			t.Fatalf("token %q does not look like a token", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestIsTokenRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"ZZZZ0000000000000000000000000000000000000000000000000000000000000",
		"0123456789ABCDEF0123456789abcdef0123456789abcdef0123456789abcdef",
	}
	for _, c := range cases {
		if IsToken(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestRealClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := RealClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := RealClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hola", 10); got != "hola" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("¿qué tal?", 4); got != "¿qué..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("   ") != nil {
		t.Fatal("blank input should give nil")
	}
	if got := StringPtr(" +34 600 "); got == nil || *got != "+34 600" {
		t.Fatalf("unexpected %v", got)
	}
}
