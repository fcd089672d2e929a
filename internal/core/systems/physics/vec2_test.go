package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sampleVectors = []Vec2{
	V(1, 0), V(0, 1), V(3, 4), V(-2.5, 7), V(1e-3, -1e3), V(-6, -8),
}

func TestVec2_AddCommutes(t *testing.T) {
	for _, a := range sampleVectors {
		for _, b := range sampleVectors {
			assert.Equal(t, a.Add(b), b.Add(a))
		}
	}
}

func TestVec2_NormalizeIsUnit(t *testing.T) {
	for _, a := range sampleVectors {
		assert.InDelta(t, 1.0, a.Normalize().Magnitude(), 1e-12, "vector %v", a)
	}
}

func TestVec2_NormalIsPerpendicular(t *testing.T) {
	for _, a := range sampleVectors {
		assert.Equal(t, 0.0, a.Dot(a.Normal()), "vector %v", a)
	}
	assert.Equal(t, V(-4, 3), V(3, 4).Normal())
}

func TestVec2_NormalizeZeroIsNaN(t *testing.T) {
	n := Zero.Normalize()
	assert.True(t, math.IsNaN(n.X))
	assert.True(t, math.IsNaN(n.Y))
	assert.False(t, n.IsFinite())
}

func TestVec2_Arithmetic(t *testing.T) {
	a := V(3, 4)
	assert.Equal(t, V(1, 2), a.Sub(V(2, 2)))
	assert.Equal(t, V(6, 8), a.Mul(2))
	assert.Equal(t, V(1.5, 2), a.Div(2))
	assert.Equal(t, 5.0, a.Magnitude())
	assert.Equal(t, 5.0, Zero.Distance(a))
	assert.Equal(t, 11.0, a.Dot(V(1, 2)))
	assert.Equal(t, 2.0, a.Cross(V(1, 2)))
}

func TestVec2_AngleBetween(t *testing.T) {
	assert.InDelta(t, 0, V(1, 0).AngleBetween(V(5, 0)), 1e-12)
	assert.InDelta(t, math.Pi/2, V(1, 0).AngleBetween(V(0, 3)), 1e-12)
	assert.InDelta(t, math.Pi/2, V(0, 3).AngleBetween(V(1, 0)), 1e-12)
	assert.InDelta(t, math.Pi, V(0, 1).AngleBetween(V(0, -1)), 1e-12)
	assert.InDelta(t, math.Pi/4, V(2, 0).AngleBetween(V(1, 1)), 1e-12)
}
