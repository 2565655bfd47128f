package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level extends zapcore's level set with the syslog-style severities the
// original driver exposed (NOTICE sits between INFO and WARN; ALERT and
// EMERGENCY sit above CRITICAL/DPanic/Fatal). zap has no native slots for
// these, so they are mapped to the nearest zap level for routing purposes
// while keeping their own name for display.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelAlert
	LevelEmergency
)

var levelNames = map[Level]string{
	LevelDebug:     "debug",
	LevelInfo:      "info",
	LevelNotice:    "notice",
	LevelWarning:   "warning",
	LevelError:     "error",
	LevelAlert:     "alert",
	LevelEmergency: "emergency",
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return "unknown"
}

// ZapLevel maps this level onto the nearest zapcore.Level so the
// underlying core filters consistently.
func (l Level) ZapLevel() zapcore.Level {
	switch {
	case l <= LevelDebug:
		return zapcore.DebugLevel
	case l <= LevelNotice:
		return zapcore.InfoLevel
	case l <= LevelWarning:
		return zapcore.WarnLevel
	case l <= LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DPanicLevel
	}
}

// ParseLevel resolves a level name by unambiguous case-insensitive
// prefix, the way the original driver's command-line parser did. An
// empty or fully ambiguous prefix is an error.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, fmt.Errorf("logger: empty level name")
	}
	var matches []Level
	for lvl, n := range levelNames {
		if strings.HasPrefix(n, name) {
			matches = append(matches, lvl)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("logger: unrecognized level %q", name)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("logger: ambiguous level prefix %q", name)
	}
}
