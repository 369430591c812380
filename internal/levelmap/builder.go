// internal/levelmap/builder.go
package levelmap

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Builder accumulates rules for a LevelMap.
type Builder struct {
	rules        map[string]zapcore.Level
	defaultLevel zapcore.Level
	set          bool
}

// NewBuilder returns a builder with no rules and a Disabled default.
func NewBuilder() *Builder {
	return &Builder{rules: make(map[string]zapcore.Level)}
}

// Add sets level for each logger name or name prefix.
// It panics on an empty name.
func (b *Builder) Add(level zapcore.Level, names ...string) *Builder {
	for _, n := range names {
		n = strings.TrimRight(n, "./")
		if n == "" {
			panic("levelmap: name cannot be empty")
		}
		b.rules[n] = level
	}
	return b
}

// AddType sets level for the types of the given values (see TypeName).
func (b *Builder) AddType(level zapcore.Level, values ...any) *Builder {
	for _, v := range values {
		b.Add(level, TypeName(v))
	}
	return b
}

// AddPackage sets level for every logger under the given package paths.
func (b *Builder) AddPackage(level zapcore.Level, pkgPaths ...string) *Builder {
	return b.Add(level, pkgPaths...)
}

// SetDefault sets the level for names no rule covers.
func (b *Builder) SetDefault(level zapcore.Level) *Builder {
	b.defaultLevel = level
	b.set = true
	return b
}

// Build returns the LevelMap. The builder may be reused afterwards.
func (b *Builder) Build() LevelMap {
	if len(b.rules) == 0 && !b.set {
		return Empty()
	}
	rules := make(map[string]zapcore.Level, len(b.rules))
	for n, l := range b.rules {
		rules[n] = l
	}
	def := b.defaultLevel
	if !b.set {
		def = Disabled
	}
	return LevelMap{rules: rules, defaultLevel: def, set: true}
}

// ParseLevel parses a level name, accepting "trace" and "off" in addition
// to the zap level names.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "trace":
		return TraceLevel, nil
	case "off", "none":
		return Disabled, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// Parse builds a LevelMap from name/level pairs as read from configuration.
// An empty defaultLevel leaves the default Disabled.
func Parse(rules map[string]string, defaultLevel string) (LevelMap, error) {
	b := NewBuilder()
	names := make([]string, 0, len(rules))
	for n := range rules {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if strings.TrimRight(n, "./") == "" {
			return LevelMap{}, fmt.Errorf("level rule name cannot be empty")
		}
		lvl, err := ParseLevel(rules[n])
		if err != nil {
			return LevelMap{}, fmt.Errorf("invalid level for %q: %w", n, err)
		}
		b.Add(lvl, n)
	}
	if defaultLevel != "" {
		lvl, err := ParseLevel(defaultLevel)
		if err != nil {
			return LevelMap{}, fmt.Errorf("invalid default level: %w", err)
		}
		b.SetDefault(lvl)
	}
	return b.Build(), nil
}
