// Package levelmap maps logger names to minimum log levels.
//
// A LevelMap is a set of rules keyed by name prefix plus a default level.
// Logger names are hierarchical, separated by "." or "/", so a rule for
// "github.com/acme/db" also covers "github.com/acme/db.Conn" and
// "github.com/acme/db/pool" but not "github.com/acme/dbx".
//
// Level maps are immutable once built and safe for concurrent use.
package levelmap

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is the custom level below Debug used across logscope.
const TraceLevel = zapcore.Level(-2)

// Disabled is a level above every real level. A map whose default is
// Disabled enables nothing outside its rules.
const Disabled = zapcore.FatalLevel + 1

// Rule is a single name-prefix rule.
type Rule struct {
	Name  string
	Level zapcore.Level
}

// LevelMap is an immutable mapping from logger-name prefix to minimum level.
type LevelMap struct {
	rules        map[string]zapcore.Level
	defaultLevel zapcore.Level
	set          bool
}

// Empty returns a map with no rules that enables nothing.
func Empty() LevelMap { return LevelMap{} }

// Default returns the level applied to names no rule covers.
func (m LevelMap) Default() zapcore.Level {
	if !m.set {
		return Disabled
	}
	return m.defaultLevel
}

// IsEmpty reports whether the map has no rules and no explicit default.
func (m LevelMap) IsEmpty() bool {
	return len(m.rules) == 0 && (!m.set || m.defaultLevel == Disabled)
}

// Level returns the minimum level for name: the level of the longest rule
// equal to name or an ancestor of it, otherwise the default.
func (m LevelMap) Level(name string) zapcore.Level {
	for n := name; n != ""; n = parent(n) {
		if lvl, ok := m.rules[n]; ok {
			return lvl
		}
	}
	return m.Default()
}

// Enabled reports whether a record at level from logger name passes the map.
func (m LevelMap) Enabled(name string, level zapcore.Level) bool {
	return level >= m.Level(name)
}

// Merge returns the union of both maps' rules. Rules in other win on equal
// names, and the more verbose of the two defaults is kept.
func (m LevelMap) Merge(other LevelMap) LevelMap {
	if other.IsEmpty() {
		return m
	}
	if m.IsEmpty() {
		return other
	}
	rules := make(map[string]zapcore.Level, len(m.rules)+len(other.rules))
	for n, l := range m.rules {
		rules[n] = l
	}
	for n, l := range other.rules {
		rules[n] = l
	}
	def := m.Default()
	if od := other.Default(); od < def {
		def = od
	}
	return LevelMap{rules: rules, defaultLevel: def, set: true}
}

// Rules returns the rules sorted by name.
func (m LevelMap) Rules() []Rule {
	out := make([]Rule, 0, len(m.rules))
	for n, l := range m.rules {
		out = append(out, Rule{Name: n, Level: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Equal reports whether both maps have the same rules and default.
func (m LevelMap) Equal(other LevelMap) bool {
	if m.Default() != other.Default() || len(m.rules) != len(other.rules) {
		return false
	}
	for n, l := range m.rules {
		if ol, ok := other.rules[n]; !ok || ol != l {
			return false
		}
	}
	return true
}

func (m LevelMap) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, r := range m.Rules() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", r.Name, LevelName(r.Level))
	}
	if len(m.rules) > 0 {
		sb.WriteString(", ")
	}
	sb.WriteString("default: ")
	sb.WriteString(LevelName(m.Default()))
	sb.WriteByte('}')
	return sb.String()
}

// TypeName returns the logger name used for values of v's type:
// "<package path>.<type name>", or the bare name for predeclared types.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// LevelName renders a level, naming TraceLevel and Disabled.
func LevelName(l zapcore.Level) string {
	switch l {
	case TraceLevel:
		return "trace"
	case Disabled:
		return "off"
	}
	return l.String()
}

// parent strips the last "." or "/" separated segment of name.
func parent(name string) string {
	i := strings.LastIndexAny(name, "./")
	if i <= 0 {
		return ""
	}
	return name[:i]
}
