package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got Vec2, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x of %v", got)
	assert.InDelta(t, want.Y, got.Y, delta, "y of %v", got)
}

func TestPlaneFrame_GroundIsIdentity(t *testing.T) {
	f := NewPlaneFrame(Zero, V(0, 1))
	assertVecInDelta(t, V(3, 7), f.ToLocal(V(3, 7)), 1e-12)
}

func TestPlaneFrame_NormalMapsToUp(t *testing.T) {
	cases := []struct {
		name   string
		origin Vec2
		normal Vec2
	}{
		{"ceiling", V(0, 10), V(0, -1)},
		{"left wall", V(-5, 0), V(1, 0)},
		{"right wall", V(5, 0), V(-1, 0)},
		{"slope", V(2, 3), V(1, 1).Normalize()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewPlaneFrame(tc.origin, tc.normal)
			assertVecInDelta(t, Zero, f.ToLocal(tc.origin), 1e-9)
			// one unit along the normal is one unit above the plane
			assertVecInDelta(t, V(0, 1), f.ToLocal(tc.origin.Add(tc.normal.Normalize())), 1e-9)
		})
	}
}

func TestPlaneFrame_RoundTrip(t *testing.T) {
	f := NewPlaneFrame(V(2, -1), V(-0.6, 0.8))
	for _, p := range []Vec2{V(0, 0), V(10, 3), V(-4, 7.5)} {
		assertVecInDelta(t, p, f.ToWorld(f.ToLocal(p)), 1e-9)
	}
}
