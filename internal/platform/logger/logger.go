// Package logger wraps zap with the key/value redaction pipeline and
// extended severities the pipeline's ambient logging needs: tool stderr,
// bad-log entries, and store queries all carry structured fields that may
// include file paths or configuration values worth hashing rather than
// printing verbatim.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// Mode selects the base zap configuration.
type Mode int

const (
	// Production emits JSON to stderr at Info and above.
	Production Mode = iota
	// Development emits human-readable console output at Debug and
	// above, with stack traces on Warn.
	Development
)

// Logger is the shared structured logger handed to every component.
type Logger struct {
	sugar           *zap.SugaredLogger
	redactEnabled   bool
	hashSalt        string
}

// New builds a Logger for the given mode. The minimum level can be
// overridden by the MSC_LOG_LEVEL environment variable (parsed via
// ParseLevel); redaction is controlled by MSC_LOG_REDACT (default on) and
// salted by MSC_LOG_HASH_SALT.
func New(mode Mode) *Logger {
	var cfg zap.Config
	switch mode {
	case Development:
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	if name := os.Getenv("MSC_LOG_LEVEL"); name != "" {
		if lvl, err := ParseLevel(name); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl.ZapLevel())
		}
	}
	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Building the configured logger should never fail for the two
		// fixed configs above; fall back to a bare logger rather than
		// panic on a logging concern.
		base = zap.NewNop()
	}
	redact := true
	if v := os.Getenv("MSC_LOG_REDACT"); v != "" {
		redact = v != "0" && !strings.EqualFold(v, "false")
	}
	return &Logger{
		sugar:         base.Sugar(),
		redactEnabled: redact,
		hashSalt:      os.Getenv("MSC_LOG_HASH_SALT"),
	}
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger annotated with the given key/value pairs on
// every subsequent call.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sugar:         l.sugar.With(l.sanitizeKVs(keysAndValues)...),
		redactEnabled: l.redactEnabled,
		hashSalt:      l.hashSalt,
	}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, l.sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, l.sanitizeKVs(keysAndValues)...)
}

// Notice logs at Info under zap but is tagged with the syslog-style
// "notice" severity field so log search can still distinguish it.
func (l *Logger) Notice(msg string, keysAndValues ...interface{}) {
	kvs := append([]interface{}{"severity", LevelNotice.String()}, l.sanitizeKVs(keysAndValues)...)
	l.sugar.Infow(msg, kvs...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, l.sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, l.sanitizeKVs(keysAndValues)...)
}

// Alert logs at zap's DPanic level: in production it records and
// continues, in development it panics so the condition is noticed
// immediately.
func (l *Logger) Alert(msg string, keysAndValues ...interface{}) {
	kvs := append([]interface{}{"severity", LevelAlert.String()}, l.sanitizeKVs(keysAndValues)...)
	l.sugar.DPanicw(msg, kvs...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, l.sanitizeKVs(keysAndValues)...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

var redactKeySuffixes = []string{"password", "secret", "token", "apikey", "api_key", "dsn", "authorization"}
var hashKeySuffixes = []string{"path", "filename", "url"}

func isRedactKey(key string) bool {
	lower := strings.ToLower(key)
	for _, suf := range redactKeySuffixes {
		if strings.Contains(lower, suf) {
			return true
		}
	}
	return false
}

func isHashKey(key string) bool {
	lower := strings.ToLower(key)
	for _, suf := range hashKeySuffixes {
		if strings.Contains(lower, suf) {
			return true
		}
	}
	return false
}

// sanitizeKVs walks a flat key/value slice and redacts or hashes values
// whose key suggests they're sensitive. In a malformed (odd-length) slice
// the complete pairs are still sanitized and the trailing unpaired key is
// left as is; zap already rejects that with its own "ignored key-value
// pair" marker.
func (l *Logger) sanitizeKVs(kvs []interface{}) []interface{} {
	if !l.redactEnabled || len(kvs) == 0 {
		return kvs
	}
	out := make([]interface{}, len(kvs))
	copy(out, kvs)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if isRedactKey(key) {
			out[i+1] = "[REDACTED]"
		} else if isHashKey(key) {
			if s, ok := out[i+1].(string); ok {
				out[i+1] = l.hashValue(s)
			}
		}
	}
	return out
}

func (l *Logger) hashValue(s string) string {
	return "h:" + fnv1a(l.hashSalt+s)
}

// fnv1a is a tiny dependency-free hash used only to give log readers a
// stable, non-reversible token for otherwise-redacted path-like values.
func fnv1a(s string) string {
	const (
		offset uint64 = 14695981039346656037
		prime  uint64 = 1099511628211
	)
	h := offset
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hex = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hex[h&0xf]
		h >>= 4
	}
	return string(buf)
}
