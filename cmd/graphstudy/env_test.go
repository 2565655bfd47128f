package main

import (
	"os"
	"testing"
)

func TestGetEnvReturnsSetValue(t *testing.T) {
	t.Setenv("GRAPHSTUDY_TEST_VAR", "configured")
	if got := getEnv("GRAPHSTUDY_TEST_VAR", "fallback"); got != "configured" {
		t.Errorf("getEnv = %q, want %q", got, "configured")
	}
}

func TestGetEnvFallsBackWhenUnset(t *testing.T) {
	os.Unsetenv("GRAPHSTUDY_TEST_VAR_UNSET")
	if got := getEnv("GRAPHSTUDY_TEST_VAR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want %q", got, "fallback")
	}
}

func TestGetEnvFallsBackWhenEmpty(t *testing.T) {
	t.Setenv("GRAPHSTUDY_TEST_VAR_EMPTY", "")
	if got := getEnv("GRAPHSTUDY_TEST_VAR_EMPTY", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want %q for an explicitly empty value", got, "fallback")
	}
}
