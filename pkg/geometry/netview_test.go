package geometry

import (
	"testing"

	"github.com/idanlevi/volleyvision/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetViewLayoutRejectsZeroSize(t *testing.T) {
	_, ok := NewNetViewLayout(0)
	assert.False(t, ok)
	_, ok = NewNetViewLayout(-10)
	assert.False(t, ok)
}

func TestNetViewProjectGroundAndHeight(t *testing.T) {
	l, ok := NewNetViewLayout(300)
	require.True(t, ok)

	//a ball on the ground at court-left sits exactly at the origin marks
	p, _ := l.Project(Point3{X: 0, Y: 0, Z: 0})
	assert.InDelta(t, l.OriginX, p.X, 1e-9)
	assert.InDelta(t, l.GroundY, p.Y, 1e-9)

	//net-height ball at the far sideline
	p, _ = l.Project(Point3{X: utils.CourtWidthMeters, Y: 0, Z: utils.NetHeightMeters})
	assert.InDelta(t, l.OriginX+utils.CourtWidthMeters*l.Scale, p.X, 1e-9)
	assert.InDelta(t, l.NetTopY(), p.Y, 1e-9)
}

func TestNetViewRadiusShrinksWithDepth(t *testing.T) {
	l, _ := NewNetViewLayout(300)

	_, near := l.Project(Point3{Y: 0})
	_, mid := l.Project(Point3{Y: utils.MaxBallDepthMeters / 2})
	_, far := l.Project(Point3{Y: utils.MaxBallDepthMeters})

	assert.Greater(t, near, mid)
	assert.Greater(t, mid, far)
	//linear in depth: mid is exactly halfway
	assert.InDelta(t, (near+far)/2, mid, 1e-9)

	//depth is clamped, beyond the cap nothing shrinks further
	_, beyond := l.Project(Point3{Y: 100})
	assert.InDelta(t, far, beyond, 1e-9)
	_, negative := l.Project(Point3{Y: -3})
	assert.InDelta(t, near, negative, 1e-9)
}

func TestNetViewScaleTracksWindowSize(t *testing.T) {
	small, _ := NewNetViewLayout(200)
	large, _ := NewNetViewLayout(400)

	//window size affects scale only - the same position projects proportionally
	ps, _ := small.Project(Point3{X: 4.5, Z: 1})
	pl, _ := large.Project(Point3{X: 4.5, Z: 1})
	assert.InDelta(t, 2*ps.X, pl.X, 1e-9)
	assert.InDelta(t, 2*ps.Y, pl.Y, 1e-9)
}
