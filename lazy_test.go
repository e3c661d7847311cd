package depot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazy_ResolvesOnce(t *testing.T) {
	c := New()

	calls := 0
	require.NoError(t, c.Register(Define[*Database](Constructor(func(Resolver) (*Database, error) {
		calls++
		return &Database{}, nil
	}))))

	lazy := NewLazy[*Database](c)
	assert.False(t, lazy.IsResolved())
	assert.Zero(t, calls)

	first, err := lazy.Get()
	require.NoError(t, err)
	second := lazy.MustGet()

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, lazy.IsResolved())
	assert.Equal(t, KeyOf[*Database](), lazy.Key())
}

func TestLazy_ConcurrentGetAndIsResolved(t *testing.T) {
	c := New(WithDefaultScope(Singleton))

	require.NoError(t, c.Register(Define[*Database](Class[*Database]())))

	lazy := NewLazy[*Database](c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = lazy.Get()
		}()
		go func() {
			defer wg.Done()
			_ = lazy.IsResolved()
		}()
	}
	wg.Wait()

	assert.True(t, lazy.IsResolved())
}

func TestLazy_Error(t *testing.T) {
	c := New()

	lazy := NewLazy[*Database](c, Name("missing"))

	_, err := lazy.Get()
	assert.ErrorIs(t, err, ErrNotRegisteredSentinel)
	assert.False(t, lazy.IsResolved())
	assert.Panics(t, func() { lazy.MustGet() })
}

func TestProvider_ResolvesEachTime(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(Define[*Database](Class[*Database]())))

	provider := NewProvider[*Database](c)

	a := provider.MustProvide()
	b, err := provider.Provide()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, KeyOf[*Database](), provider.Key())
}

func TestProvider_Error(t *testing.T) {
	provider := NewProvider[*Database](New())

	_, err := provider.Provide()
	assert.Error(t, err)
	assert.Panics(t, func() { provider.MustProvide() })
}
