package env

import (
	"testing"
	"time"
)

func TestGetString(t *testing.T) {
	t.Setenv("MATPLAN_TEST_STRING", "hello")

	if got := GetString("MATPLAN_TEST_STRING", "fallback"); got != "hello" {
		t.Errorf("Expected 'hello', got '%s'", got)
	}
	if got := GetString("MATPLAN_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got '%s'", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("MATPLAN_TEST_INT", "42")
	t.Setenv("MATPLAN_TEST_INT_BAD", "not-a-number")

	if got := GetInt("MATPLAN_TEST_INT", 7); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := GetInt("MATPLAN_TEST_INT_BAD", 7); got != 7 {
		t.Errorf("Expected fallback 7 for unparsable value, got %d", got)
	}
	if got := GetInt("MATPLAN_TEST_MISSING", 7); got != 7 {
		t.Errorf("Expected fallback 7 for missing value, got %d", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("MATPLAN_TEST_BOOL", "true")

	if got := GetBool("MATPLAN_TEST_BOOL", false); !got {
		t.Error("Expected true, got false")
	}
	if got := GetBool("MATPLAN_TEST_MISSING", true); !got {
		t.Error("Expected fallback true, got false")
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("MATPLAN_TEST_DURATION", "30s")

	if got := GetDuration("MATPLAN_TEST_DURATION", time.Minute); got != 30*time.Second {
		t.Errorf("Expected 30s, got %v", got)
	}
	if got := GetDuration("MATPLAN_TEST_MISSING", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback 1m, got %v", got)
	}
}
