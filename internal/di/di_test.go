package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func TestContainer_LazySingleton(t *testing.T) {
	c := NewContainer()
	token := NewToken[*counter]("test.counter")

	builds := 0
	RegisterToken(c, token, func(ServiceRegistry) *counter {
		builds++
		return &counter{n: builds}
	})

	assert.Equal(t, 0, builds)

	first := GetToken(c, token)
	second := GetToken(c, token)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestContainer_FactoryResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("principal", 3)

	token := NewToken[int]("test.double")
	RegisterToken(c, token, func(sr ServiceRegistry) int {
		return sr.Get("principal").(int) * 2
	})

	require.True(t, c.Has("test.double"))
	assert.Equal(t, 6, GetToken(c, token))
}

func TestContainer_UnknownServicePanics(t *testing.T) {
	c := NewContainer()
	assert.Panics(t, func() { c.Get("missing") })
}
