package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_SeesNestedResolutions(t *testing.T) {
	var before, after []string

	c := New(WithMiddleware(&FuncMiddleware{
		BeforeResolveFunc: func(key Key) error {
			before = append(before, key.String())
			return nil
		},
		AfterResolveFunc: func(key Key, instance any, err error) {
			after = append(after, key.String())
		},
	}))

	require.NoError(t, c.Register(
		Define[*Database](Class[*Database]()),
		Define[*Logger](Class[*Logger]()),
		Define[*UserService](Autowire(NewUserService)),
	))

	_ = MustResolve[*UserService](c)

	assert.Equal(t, []string{
		KeyOf[*UserService]().String(),
		KeyOf[*Database]().String(),
		KeyOf[*Logger]().String(),
	}, before)
	assert.Equal(t, []string{
		KeyOf[*Database]().String(),
		KeyOf[*Logger]().String(),
		KeyOf[*UserService]().String(),
	}, after)
}

func TestMiddleware_BeforeResolveAborts(t *testing.T) {
	c := New()

	expectedErr := errors.New("denied")
	c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(key Key) error {
			if key == KeyOf[*Database]() {
				return expectedErr
			}
			return nil
		},
	})

	calls := 0
	require.NoError(t, c.Register(Define[*Database](Constructor(func(Resolver) (*Database, error) {
		calls++
		return &Database{}, nil
	}))))

	_, err := Lookup[*Database](c)
	assert.ErrorIs(t, err, expectedErr)
	assert.Zero(t, calls)
}

func TestMiddleware_AfterResolveSeesFailures(t *testing.T) {
	c := New()

	var seen error
	c.Use(&FuncMiddleware{
		AfterResolveFunc: func(key Key, instance any, err error) {
			seen = err
		},
	})

	_, ok := Resolve[*Database](c)
	assert.False(t, ok)
	assert.ErrorIs(t, seen, ErrNotRegisteredSentinel)
}

func TestMiddleware_NilIgnored(t *testing.T) {
	c := New(WithMiddleware(nil))
	c.Use(nil)

	require.NoError(t, c.Register(Define[*Cat](Class[*Cat]())))

	_, ok := Resolve[*Cat](c)
	assert.True(t, ok)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(WithMiddleware(LoggingMiddleware(zap.New(core))))

	require.NoError(t, c.Register(Define[*Cat](Class[*Cat]())))

	_ = MustResolve[*Cat](c)
	_, _ = Resolve[*Dog](c)

	entries := logs.FilterMessage("resolve").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "*github.com/xraph/depot.Cat", entries[0].ContextMap()["type"])
	assert.Contains(t, entries[1].ContextMap(), "error")
}
