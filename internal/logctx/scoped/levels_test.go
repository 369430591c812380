package scoped

import (
	"context"
	"testing"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestShouldForceLogging_FollowsScopeLevelMap(t *testing.T) {
	p := New()
	api := p.ContextAPI()
	debugDB := levelmap.NewBuilder().Add(zapcore.DebugLevel, "app.db").Build()

	err := logctx.Run(context.Background(), api, func(ctx context.Context) error {
		assert.False(t, p.ShouldForceLogging(ctx, "app.db.pool", zapcore.DebugLevel, false))

		require.True(t, api.ApplyLogLevelMap(ctx, debugDB))

		assert.True(t, p.ShouldForceLogging(ctx, "app.db.pool", zapcore.DebugLevel, false))
		assert.True(t, p.ShouldForceLogging(ctx, "app.db.pool", zapcore.DebugLevel, true))
		assert.False(t, p.ShouldForceLogging(ctx, "app.db.pool", levelmap.TraceLevel, false))
		assert.False(t, p.ShouldForceLogging(ctx, "app.http", zapcore.ErrorLevel, false))
		return nil
	})
	require.NoError(t, err)
}

func TestShouldForceLogging_BaseLevelMap(t *testing.T) {
	base := levelmap.NewBuilder().Add(zapcore.DebugLevel, "wire").Build()
	p := New(WithBaseLevelMap(base))

	assert.True(t, p.ShouldForceLogging(context.Background(), "wire.codec", zapcore.DebugLevel, false))
	assert.False(t, p.ShouldForceLogging(context.Background(), "other", zapcore.DebugLevel, false))
}

func TestMergePolicy_NestedScopes(t *testing.T) {
	p := New()
	api := p.ContextAPI()

	outer, outerScope := api.WithNewScope(context.Background())
	defer outerScope.Close()
	api.ApplyLogLevelMap(outer, levelmap.NewBuilder().
		Add(zapcore.DebugLevel, "a").
		Add(zapcore.InfoLevel, "b").
		Build())

	inner, innerScope := api.WithNewScope(outer)
	api.ApplyLogLevelMap(inner, levelmap.NewBuilder().Add(levelmap.TraceLevel, "b").Build())

	m := p.LevelMap(inner)
	assert.Equal(t, zapcore.DebugLevel, m.Level("a"))
	assert.Equal(t, levelmap.TraceLevel, m.Level("b"))

	require.NoError(t, innerScope.Close())
	assert.Equal(t, zapcore.InfoLevel, p.LevelMap(inner).Level("b"))
}

func TestOverridePolicy_NestedScopes(t *testing.T) {
	p := New(WithPolicy(OverridePolicy{}))
	api := p.ContextAPI()

	outer, outerScope := api.WithNewScope(context.Background())
	defer outerScope.Close()
	api.ApplyLogLevelMap(outer, levelmap.NewBuilder().Add(zapcore.DebugLevel, "a").Build())

	inner, innerScope := api.WithNewScope(outer)
	defer innerScope.Close()

	// no map on the inner scope yet: the outer one applies
	assert.Equal(t, zapcore.DebugLevel, p.LevelMap(inner).Level("a"))

	api.ApplyLogLevelMap(inner, levelmap.NewBuilder().Add(zapcore.WarnLevel, "b").Build())
	assert.Equal(t, levelmap.Disabled, p.LevelMap(inner).Level("a"))
	assert.Equal(t, zapcore.WarnLevel, p.LevelMap(inner).Level("b"))
}

func TestApplyLogLevelMap_TwiceOnSameScopeMerges(t *testing.T) {
	p := New(WithPolicy(OverridePolicy{}))
	api := p.ContextAPI()

	ctx, scope := api.WithNewScope(context.Background())
	defer scope.Close()

	api.ApplyLogLevelMap(ctx, levelmap.NewBuilder().Add(zapcore.DebugLevel, "a").Build())
	api.ApplyLogLevelMap(ctx, levelmap.NewBuilder().Add(zapcore.DebugLevel, "b").Build())

	m := p.LevelMap(ctx)
	assert.Equal(t, zapcore.DebugLevel, m.Level("a"))
	assert.Equal(t, zapcore.DebugLevel, m.Level("b"))
}

func TestPolicyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    LevelMapPolicy
		wantErr bool
	}{
		{"", MergePolicy{}, false},
		{"merge", MergePolicy{}, false},
		{"Override", OverridePolicy{}, false},
		{"random", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PolicyByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithPolicy_NilKeepsDefault(t *testing.T) {
	p := New(WithPolicy(nil))
	assert.Equal(t, MergePolicy{}, p.policy)
}
