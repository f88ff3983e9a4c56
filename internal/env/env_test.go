package env

import (
	"strings"
	"testing"
	"time"
)

func TestRequireListsEveryMissingKey(t *testing.T) {
	t.Setenv("ENV_TEST_PRESENT", "value")
	t.Setenv("ENV_TEST_MISSING_A", "")
	t.Setenv("ENV_TEST_MISSING_B", "  ")

	err := Require("ENV_TEST_PRESENT", "ENV_TEST_MISSING_A", "ENV_TEST_MISSING_B")
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	if !strings.Contains(err.Error(), "ENV_TEST_MISSING_A") || !strings.Contains(err.Error(), "ENV_TEST_MISSING_B") {
		t.Fatalf("error should name both keys: %v", err)
	}
	if strings.Contains(err.Error(), "ENV_TEST_PRESENT") {
		t.Fatalf("error should not name present key: %v", err)
	}

	if err := Require("ENV_TEST_PRESENT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("ENV_TEST_DURATION", "250ms")
	if got := GetDuration("ENV_TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", got)
	}

	t.Setenv("ENV_TEST_DURATION", "7")
	if got := GetDuration("ENV_TEST_DURATION", time.Second); got != 7*time.Second {
		t.Fatalf("expected 7s, got %s", got)
	}

	t.Setenv("ENV_TEST_DURATION", "soon")
	if got := GetDuration("ENV_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected default, got %s", got)
	}
}

func TestGetIntAndList(t *testing.T) {
	t.Setenv("ENV_TEST_INT", "42")
	if got := GetInt("ENV_TEST_INT", 1); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("ENV_TEST_INT", "x")
	if got := GetInt("ENV_TEST_INT", 1); got != 1 {
		t.Fatalf("expected default 1, got %d", got)
	}

	t.Setenv("ENV_TEST_LIST", "http://a.test, ,http://b.test")
	got := GetList("ENV_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected list %v", got)
	}
}
