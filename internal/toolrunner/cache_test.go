package toolrunner

import (
	"context"
	"os"
	"testing"
)

func TestNewResultCacheFromEnvReturnsNilNilWhenUnconfigured(t *testing.T) {
	os.Unsetenv("MSC_TOOLCACHE_REDIS_ADDR")
	c, err := NewResultCacheFromEnv(nil)
	if err != nil || c != nil {
		t.Errorf("NewResultCacheFromEnv() = (%v, %v), want (nil, nil) when MSC_TOOLCACHE_REDIS_ADDR is unset", c, err)
	}
}

func TestNewResultCacheFromEnvRejectsUnreachableHost(t *testing.T) {
	t.Setenv("MSC_TOOLCACHE_REDIS_ADDR", "127.0.0.1:1")
	_, err := NewResultCacheFromEnv(nil)
	if err == nil {
		t.Errorf("NewResultCacheFromEnv should fail to ping an unreachable redis host")
	}
}

func TestNilResultCacheDoCallsFnDirectly(t *testing.T) {
	var c *ResultCache
	calls := 0
	result, err := c.Do(context.Background(), Options{Args: []string{"prog"}}, func() (Result, error) {
		calls++
		return Result{ElapsedSeconds: 1.5}, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if result.ElapsedSeconds != 1.5 {
		t.Errorf("result.ElapsedSeconds = %v, want 1.5", result.ElapsedSeconds)
	}
}

func TestCacheKeyIsStableAndDistinguishesArgsAndMeta(t *testing.T) {
	a := cacheKey(Options{Args: []string{"prog", "x"}, Meta: MetaStdout})
	b := cacheKey(Options{Args: []string{"prog", "x"}, Meta: MetaStdout})
	if a != b {
		t.Errorf("cacheKey is not stable for identical options: %q != %q", a, b)
	}
	c := cacheKey(Options{Args: []string{"prog", "y"}, Meta: MetaStdout})
	if a == c {
		t.Errorf("cacheKey must differ when Args differ")
	}
	d := cacheKey(Options{Args: []string{"prog", "x"}, Meta: MetaStderr})
	if a == d {
		t.Errorf("cacheKey must differ when Meta differs")
	}
}
