package logctx

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var (
	testTags = tags.NewBuilder().AddTag("foo", "bar").Build()
	testMap  = levelmap.NewBuilder().AddType(levelmap.TraceLevel, "").Build()
)

// failingAPI opens scopes whose release always fails.
type failingAPI struct{}

func (failingAPI) WithNewScope(ctx context.Context) (context.Context, Scope) {
	return ctx, closerFunc(func() error { return errors.New("BAD CONTEXT") })
}

func (failingAPI) AddTags(context.Context, tags.Tags) bool { return false }

func (failingAPI) ApplyLogLevelMap(context.Context, levelmap.LevelMap) bool { return false }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestNoOp_Provider(t *testing.T) {
	p := NoOp()
	ctx := context.Background()

	assert.True(t, p.Tags(ctx).Equal(tags.Empty()))
	assert.False(t, p.ShouldForceLogging(ctx, "string", zapcore.DebugLevel, true))

	api := p.ContextAPI()
	assert.False(t, api.AddTags(ctx, testTags))
	assert.False(t, api.ApplyLogLevelMap(ctx, testMap))

	// no observable change afterwards
	assert.True(t, p.Tags(ctx).Equal(tags.Empty()))
	assert.False(t, p.ShouldForceLogging(ctx, "string", levelmap.TraceLevel, false))
}

func TestNoOp_ContextAPIIsStable(t *testing.T) {
	p := NoOp()
	assert.Equal(t, p.ContextAPI(), p.ContextAPI())
}

func TestNoOp_ScopesHaveNoEffect(t *testing.T) {
	p := NoOp()
	api := p.ContextAPI()

	didTest, err := Call(context.Background(), api, func(ctx context.Context) (bool, error) {
		assert.False(t, api.AddTags(ctx, testTags))
		assert.False(t, api.ApplyLogLevelMap(ctx, testMap))

		assert.True(t, p.Tags(ctx).Equal(tags.Empty()))
		assert.False(t, p.ShouldForceLogging(ctx, "string", zapcore.DebugLevel, true))
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, didTest)
}

func TestNoOp_RunUsesCallerContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	calls := 0
	err := Run(ctx, NoOp().ContextAPI(), func(got context.Context) error {
		calls++
		assert.Equal(t, ctx, got)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNoOp_RunPropagatesBodyError(t *testing.T) {
	bodyErr := errors.New("body")
	err := Run(context.Background(), NoOp().ContextAPI(), func(context.Context) error {
		return bodyErr
	})
	assert.Same(t, bodyErr, err)
}

func TestNoOp_ScopeCloseIsRepeatable(t *testing.T) {
	ctx := context.Background()
	got, scope := NoOp().ContextAPI().WithNewScope(ctx)
	assert.Equal(t, ctx, got)
	assert.NoError(t, scope.Close())
	assert.NoError(t, scope.Close())
}

func TestRun_ErrorWithoutUserError(t *testing.T) {
	err := Run(context.Background(), failingAPI{}, func(context.Context) error { return nil })

	var stateErr *InvalidScopeStateError
	require.ErrorAs(t, err, &stateErr)
	assert.EqualError(t, stateErr.Err, "BAD CONTEXT")
	assert.ErrorIs(t, err, ErrInvalidScopeState)
	assert.EqualError(t, errors.Unwrap(err), "BAD CONTEXT")
	assert.Equal(t, "invalid logging scope state: BAD CONTEXT", err.Error())
}

func TestRun_ErrorWithUserError(t *testing.T) {
	userErr := errors.New("User error")
	err := Run(context.Background(), failingAPI{}, func(context.Context) error { return userErr })

	assert.Same(t, userErr, err)
	assert.NotErrorIs(t, err, ErrInvalidScopeState)
}

func TestRun_PanicReleasesScope(t *testing.T) {
	rec := &recordingAPI{}

	assert.PanicsWithValue(t, "boom", func() {
		_ = Run(context.Background(), rec, func(context.Context) error {
			panic("boom")
		})
	})
	assert.Equal(t, 1, rec.opened)
	assert.Equal(t, 1, rec.closed)
}

func TestRun_PanicWinsOverReleaseFailure(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_ = Run(context.Background(), failingAPI{}, func(context.Context) error {
			panic("boom")
		})
	})
}

func TestRun_NilAPI(t *testing.T) {
	ran := false
	err := Run(context.Background(), nil, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestCall_ReturnsValue(t *testing.T) {
	rec := &recordingAPI{}
	got, err := Call(context.Background(), rec, func(ctx context.Context) (string, error) {
		assert.Equal(t, 1, rec.depth(ctx))
		return "result", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "result", got)
	assert.Equal(t, 1, rec.closed)
}

func TestCall_ValueKeptWithReleaseFailure(t *testing.T) {
	got, err := Call(context.Background(), failingAPI{}, func(context.Context) (int, error) {
		return 42, nil
	})
	assert.ErrorIs(t, err, ErrInvalidScopeState)
	assert.Equal(t, 42, got)
}

func TestErrors_Discipline(t *testing.T) {
	assert.ErrorIs(t, ErrScopeClosed, ErrScopeDiscipline)

	orderErr := &ScopeOrderError{Scope: "a", Innermost: "b", Depth: 1}
	assert.ErrorIs(t, orderErr, ErrScopeDiscipline)
	assert.NotErrorIs(t, orderErr, ErrInvalidScopeState)
	assert.Contains(t, orderErr.Error(), "closed out of order")
}
