package levelmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type widget struct{}

func TestEmpty(t *testing.T) {
	m := Empty()
	assert.True(t, m.IsEmpty())
	assert.Equal(t, Disabled, m.Level("anything"))
	assert.False(t, m.Enabled("anything", zapcore.FatalLevel))
	assert.True(t, NewBuilder().Build().Equal(m))
}

func TestLevel_PrefixMatching(t *testing.T) {
	m := NewBuilder().
		Add(zapcore.DebugLevel, "github.com/acme/db").
		Add(TraceLevel, "github.com/acme/db/pool").
		Add(zapcore.WarnLevel, "app").
		Build()

	tests := []struct {
		name string
		want zapcore.Level
	}{
		{"github.com/acme/db", zapcore.DebugLevel},
		{"github.com/acme/db.Conn", zapcore.DebugLevel},
		{"github.com/acme/db/pool", TraceLevel},
		{"github.com/acme/db/pool.Worker", TraceLevel},
		{"github.com/acme/dbx", Disabled},
		{"app.http.server", zapcore.WarnLevel},
		{"application", Disabled},
		{"", Disabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Level(tt.name))
		})
	}
}

func TestEnabled(t *testing.T) {
	m := NewBuilder().Add(zapcore.DebugLevel, "svc").SetDefault(zapcore.ErrorLevel).Build()

	assert.True(t, m.Enabled("svc.handler", zapcore.DebugLevel))
	assert.False(t, m.Enabled("svc.handler", TraceLevel))
	assert.False(t, m.Enabled("other", zapcore.WarnLevel))
	assert.True(t, m.Enabled("other", zapcore.ErrorLevel))
}

func TestAddType(t *testing.T) {
	m := NewBuilder().AddType(TraceLevel, widget{}, "").Build()

	assert.Equal(t, TraceLevel, m.Level(TypeName(&widget{})))
	assert.Equal(t, TraceLevel, m.Level("string"))
	assert.True(t, strings.HasSuffix(TypeName(widget{}), "levelmap.widget"))
}

func TestBuilder_TrimsSeparators(t *testing.T) {
	m := NewBuilder().AddPackage(zapcore.DebugLevel, "github.com/acme/").Build()
	assert.Equal(t, zapcore.DebugLevel, m.Level("github.com/acme/x"))

	assert.PanicsWithValue(t, "levelmap: name cannot be empty", func() {
		NewBuilder().Add(zapcore.InfoLevel, "./")
	})
}

func TestMerge(t *testing.T) {
	outer := NewBuilder().
		Add(zapcore.InfoLevel, "a").
		Add(zapcore.WarnLevel, "b").
		SetDefault(zapcore.ErrorLevel).
		Build()
	inner := NewBuilder().
		Add(zapcore.DebugLevel, "a").
		Add(TraceLevel, "c").
		Build()

	merged := outer.Merge(inner)

	assert.Equal(t, zapcore.DebugLevel, merged.Level("a"))
	assert.Equal(t, zapcore.WarnLevel, merged.Level("b"))
	assert.Equal(t, TraceLevel, merged.Level("c"))
	// inner has a Disabled default, the more verbose one wins
	assert.Equal(t, zapcore.ErrorLevel, merged.Level("z"))

	assert.True(t, outer.Merge(Empty()).Equal(outer))
	assert.True(t, Empty().Merge(inner).Equal(inner))
}

func TestParse(t *testing.T) {
	m, err := Parse(map[string]string{
		"github.com/acme": "debug",
		"noisy":           "error",
		"wire":            "trace",
	}, "warn")
	require.NoError(t, err)

	assert.Equal(t, zapcore.DebugLevel, m.Level("github.com/acme/x"))
	assert.Equal(t, zapcore.ErrorLevel, m.Level("noisy"))
	assert.Equal(t, TraceLevel, m.Level("wire.frames"))
	assert.Equal(t, zapcore.WarnLevel, m.Level("unknown"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(map[string]string{"a": "loud"}, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid level for "a"`)

	_, err = Parse(nil, "sometimes")
	assert.Error(t, err)

	_, err = Parse(map[string]string{".": "info"}, "")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"trace", TraceLevel},
		{"TRACE", TraceLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"off", Disabled},
		{" debug", zapcore.DebugLevel},
		{"warn\n", zapcore.WarnLevel},
		{" trace ", TraceLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestString(t *testing.T) {
	m := NewBuilder().Add(zapcore.DebugLevel, "b").Add(TraceLevel, "a").Build()
	assert.Equal(t, "{a: trace, b: debug, default: off}", m.String())
	assert.Equal(t, "{default: off}", Empty().String())
}
