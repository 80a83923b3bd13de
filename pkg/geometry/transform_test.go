package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRenderSpaceScalesAxesIndependently(t *testing.T) {
	p, ok := ToRenderSpace(Point{X: 960, Y: 540}, Dims{W: 1920, H: 1080}, Dims{W: 640, H: 360})
	require.True(t, ok)
	assert.InDelta(t, 320, p.X, 1e-9)
	assert.InDelta(t, 180, p.Y, 1e-9)

	//non-uniform target space still maps per axis
	p, ok = ToRenderSpace(Point{X: 1920, Y: 0}, Dims{W: 1920, H: 1080}, Dims{W: 100, H: 900})
	require.True(t, ok)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestToRenderSpaceFailsClosedOnZeroDims(t *testing.T) {
	for _, dims := range []Dims{{W: 0, H: 100}, {W: 100, H: 0}, {}} {
		if _, ok := ToRenderSpace(Point{X: 1, Y: 1}, dims, Dims{W: 10, H: 10}); ok {
			t.Fatalf("expected failure for source dims %+v", dims)
		}
		if _, ok := ToRenderSpace(Point{X: 1, Y: 1}, Dims{W: 10, H: 10}, dims); ok {
			t.Fatalf("expected failure for render dims %+v", dims)
		}
	}
}

func TestNormalizeDenormalizeRoundtrip(t *testing.T) {
	dims := Dims{W: 1283, H: 719}
	points := []Point{
		{X: 0, Y: 0},
		{X: 0.1, Y: 0.9},
		{X: 0.5, Y: 0.5},
		{X: 1, Y: 1},
		{X: 0.333333, Y: 0.666667},
	}

	for _, p := range points {
		abs, ok := Denormalize(p, dims)
		require.True(t, ok)
		back, ok := Normalize(abs, dims)
		require.True(t, ok)
		assert.InDelta(t, p.X, back.X, 1e-12)
		assert.InDelta(t, p.Y, back.Y, 1e-12)
	}
}

func TestNormalizeFailsClosedOnZeroDims(t *testing.T) {
	_, ok := Normalize(Point{X: 5, Y: 5}, Dims{})
	assert.False(t, ok)
	_, ok = Denormalize(Point{X: 0.5, Y: 0.5}, Dims{W: 0, H: 10})
	assert.False(t, ok)
}

func TestLetterboxFitWideSourceInTallContainer(t *testing.T) {
	//16:9 source into a tall container: width-limited, vertical centering
	r, ok := LetterboxFit(Dims{W: 1920, H: 1080}, Dims{W: 800, H: 1000})
	require.True(t, ok)
	assert.InDelta(t, 800, r.W, 1e-9)
	assert.InDelta(t, 450, r.H, 1e-9)
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, 275, r.Y, 1e-9)
}

func TestLetterboxFitTallSourceInWideContainer(t *testing.T) {
	r, ok := LetterboxFit(Dims{W: 1080, H: 1920}, Dims{W: 1000, H: 600})
	require.True(t, ok)
	assert.InDelta(t, 600, r.H, 1e-9)
	assert.InDelta(t, 337.5, r.W, 1e-9)
	assert.InDelta(t, 331.25, r.X, 1e-9)
	assert.InDelta(t, 0, r.Y, 1e-9)
}

func TestLetterboxFitFailsClosed(t *testing.T) {
	_, ok := LetterboxFit(Dims{}, Dims{W: 100, H: 100})
	assert.False(t, ok)
	_, ok = LetterboxFit(Dims{W: 1920, H: 1080}, Dims{W: 0, H: 100})
	assert.False(t, ok)
}

func TestPointerToNormalizedClampsToUnitSquare(t *testing.T) {
	layer := Rect{X: 100, Y: 50, W: 640, H: 360}

	p, ok := PointerToNormalized(Point{X: 420, Y: 230}, layer)
	require.True(t, ok)
	assert.InDelta(t, 0.5, p.X, 1e-12)
	assert.InDelta(t, 0.5, p.Y, 1e-12)

	//pointer left the surface mid-drag: clamp each axis
	p, ok = PointerToNormalized(Point{X: -50, Y: 9999}, layer)
	require.True(t, ok)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 1.0, p.Y)
}
