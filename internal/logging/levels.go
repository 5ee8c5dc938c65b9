// internal/logging/levels.go
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug. The HTTP clients log request
// and response bodies at this level.
const TraceLevel = zapcore.Level(-2)

// LevelNames lists the accepted --log-level values.
var LevelNames = []string{"trace", "debug", "info", "warn", "error"}

// LevelFromString parses a string into a zapcore.Level, supporting "trace".
// Matching is case-insensitive.
func LevelFromString(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.WarnLevel, fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(LevelNames, ", "))
	}
	return l, nil
}
