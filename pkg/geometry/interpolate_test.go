package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt3(x, y, z float64) *Point3 {
	return &Point3{X: x, Y: y, Z: z}
}

func TestLerpIsNotClamped(t *testing.T) {
	assert.InDelta(t, 15, Lerp(10, 20, 0.5), 1e-12)
	assert.InDelta(t, 25, Lerp(10, 20, 1.5), 1e-12)
	assert.InDelta(t, 5, Lerp(10, 20, -0.5), 1e-12)
}

func TestInterpolatePositionLiesOnSegment(t *testing.T) {
	samples := []*Point3{pt3(0, 0, 0), pt3(2, 4, 6)}

	for _, tc := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		p, ok := InterpolatePosition(samples, tc)
		require.True(t, ok)
		//on the straight segment: each component is the same fraction along its span
		assert.InDelta(t, 2*tc, p.X, 1e-12)
		assert.InDelta(t, 4*tc, p.Y, 1e-12)
		assert.InDelta(t, 6*tc, p.Z, 1e-12)
	}
}

func TestInterpolatePositionExactAtIntegerFrame(t *testing.T) {
	samples := []*Point3{pt3(1, 2, 3), pt3(7, 8, 9), pt3(4, 5, 6)}

	p, ok := InterpolatePosition(samples, 1)
	require.True(t, ok)
	assert.Equal(t, *samples[1], p)
}

func TestInterpolatePositionHoldsCurrentWhenNextMissing(t *testing.T) {
	samples := []*Point3{pt3(1, 2, 3), nil}

	p, ok := InterpolatePosition(samples, 0.7)
	require.True(t, ok)
	assert.Equal(t, *samples[0], p)

	//last sample of the sequence behaves the same way
	p, ok = InterpolatePosition([]*Point3{pt3(5, 5, 5)}, 0.4)
	require.True(t, ok)
	assert.Equal(t, Point3{X: 5, Y: 5, Z: 5}, p)
}

func TestInterpolatePositionAbsentWhenCurrentMissing(t *testing.T) {
	samples := []*Point3{nil, pt3(1, 1, 1)}

	//a valid next neighbor alone must not produce a value
	_, ok := InterpolatePosition(samples, 0.5)
	assert.False(t, ok)
}

func TestInterpolatePositionOutOfRangeIsNoData(t *testing.T) {
	samples := []*Point3{pt3(1, 1, 1)}

	_, ok := InterpolatePosition(samples, 12.3)
	assert.False(t, ok)
	_, ok = InterpolatePosition(samples, -0.5)
	assert.False(t, ok)
	_, ok = InterpolatePosition(nil, 0)
	assert.False(t, ok)
}
