package logger

import "testing"

func TestIsRedactKeyMatchesKnownSuffixes(t *testing.T) {
	for _, key := range []string{"password", "DB_PASSWORD", "api_key", "Authorization"} {
		if !isRedactKey(key) {
			t.Errorf("isRedactKey(%q) = false, want true", key)
		}
	}
	if isRedactKey("graph_id") {
		t.Errorf("isRedactKey(\"graph_id\") = true, want false")
	}
}

func TestIsHashKeyMatchesKnownSuffixes(t *testing.T) {
	for _, key := range []string{"file_path", "config_url", "filename"} {
		if !isHashKey(key) {
			t.Errorf("isHashKey(%q) = false, want true", key)
		}
	}
	if isHashKey("message") {
		t.Errorf("isHashKey(\"message\") = true, want false")
	}
}

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	l := NewNop()
	l.redactEnabled = true
	l.hashSalt = "pepper"
	kvs := l.sanitizeKVs([]interface{}{"password", "hunter2", "graph_path", "/data/g1.xml", "count", 3})
	if kvs[1] != "[REDACTED]" {
		t.Errorf("sanitizeKVs should redact password, got %v", kvs[1])
	}
	hashed, ok := kvs[3].(string)
	if !ok || hashed == "/data/g1.xml" || len(hashed) < 3 || hashed[:2] != "h:" {
		t.Errorf("sanitizeKVs should hash graph_path to an h:-prefixed token, got %v", kvs[3])
	}
	if kvs[5] != 3 {
		t.Errorf("sanitizeKVs should leave unrelated values untouched, got %v", kvs[5])
	}
}

func TestSanitizeKVsNoopWhenRedactionDisabled(t *testing.T) {
	l := NewNop()
	l.redactEnabled = false
	in := []interface{}{"password", "hunter2"}
	out := l.sanitizeKVs(in)
	if out[1] != "hunter2" {
		t.Errorf("sanitizeKVs with redaction disabled should pass values through unchanged, got %v", out[1])
	}
}

func TestSanitizeKVsHandlesOddLength(t *testing.T) {
	l := NewNop()
	l.redactEnabled = true
	in := []interface{}{"password"}
	out := l.sanitizeKVs(in)
	if len(out) != 1 || out[0] != "password" {
		t.Errorf("sanitizeKVs with an odd-length slice should pass it through unchanged, got %v", out)
	}
}

func TestHashValueIsDeterministicAndSaltDependent(t *testing.T) {
	l1 := NewNop()
	l1.hashSalt = "a"
	l2 := NewNop()
	l2.hashSalt = "b"
	h1a := l1.hashValue("/data/x")
	h1b := l1.hashValue("/data/x")
	if h1a != h1b {
		t.Errorf("hashValue should be deterministic for the same input, got %q and %q", h1a, h1b)
	}
	if h1a == l2.hashValue("/data/x") {
		t.Errorf("hashValue should depend on the salt")
	}
}

func TestFnv1aProducesSixteenHexDigits(t *testing.T) {
	got := fnv1a("hello")
	if len(got) != 16 {
		t.Errorf("fnv1a output length = %d, want 16", len(got))
	}
	for _, c := range got {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("fnv1a output %q contains a non-hex character %q", got, c)
			break
		}
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Info("hello")
	l.With("k", "v").Warn("careful")
	if err := l.Sync(); err != nil {
		// zap's Nop sync on some platforms returns an error for stdout
		// sync; either outcome is acceptable here, just don't panic.
		_ = err
	}
}
