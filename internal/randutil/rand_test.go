package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(99)
	b := New(99)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestResolve(t *testing.T) {
	seed := int64(12345)
	rng, used := Resolve(&seed)
	assert.Equal(t, seed, used)
	assert.Equal(t, New(seed).Uint64(), rng.Uint64())

	_, picked := Resolve(nil)
	assert.NotZero(t, picked)
}
