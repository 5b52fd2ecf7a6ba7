package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	for _, x := range v[0] {
		assert.GreaterOrEqual(t, x, float32(-1))
		assert.Less(t, x, float32(1))
	}
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	for _, vec := range rng.UnitVectors(8, 32) {
		var sum float32
		for _, val := range vec {
			sum += val * val
		}
		assert.InDelta(t, float32(1.0), sum, 1e-5)
	}
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UnitVector(10)
	rng.Reset()
	v2 := rng.UnitVector(10)
	assert.Equal(t, v1, v2)
}

func TestExactTopK(t *testing.T) {
	data := [][]float32{{0, 1}, {1, 0}, {0.7, 0.7}}
	assert.Equal(t, []int{1, 2, 0}, ExactTopK([]float32{1, 0}, data, 3))
	assert.Equal(t, []int{1}, ExactTopK([]float32{1, 0}, data, 1))
}

func TestRecall(t *testing.T) {
	assert.Equal(t, 1.0, Recall([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 0.5, Recall([]int{1, 2}, []int{1, 3}))
	assert.Equal(t, 1.0, Recall[int](nil, nil))
	assert.Equal(t, 0.0, Recall([]int{1}, nil))
}
