// internal/logging/levels.go
package logging

import (
	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug for ultra-verbose logging.
// Value: -2 (Debug is -1, Info is 0)
//
// Trace output is almost always filtered by the configured level and turned
// on for one scope at a time with a level map.
const TraceLevel = levelmap.TraceLevel

// OffLevel disables ordinary output. Only forced entries are written.
const OffLevel = levelmap.Disabled

// LevelFromString parses a level name. In addition to the zap names it
// accepts "trace" and "off", case-insensitively.
func LevelFromString(level string) (zapcore.Level, error) {
	return levelmap.ParseLevel(level)
}

// LevelString renders a level, naming TraceLevel and OffLevel.
func LevelString(l zapcore.Level) string {
	return levelmap.LevelName(l)
}
