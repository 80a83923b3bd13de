package calibration

import (
	"math"

	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/idanlevi/volleyvision/pkg/utils"
)

//HandleController turns pointer gestures into corner updates. It is a small state
//machine: Idle until a press lands on a handle, Dragging(i) until release. Releases are
//accepted from anywhere, matching a window-scoped listener - a drag that ends off the
//render surface still ends.
type HandleController struct {
	model *CourtModel

	dragging       int //index of the dragged handle, -1 when idle
	dragNormalized bool
}

//NewHandleController wires a controller to the shared court model
func NewHandleController(model *CourtModel) *HandleController {
	return &HandleController{model: model, dragging: -1}
}

//HandlePositions returns the handle centers in container pixels, one per corner.
//Returns false when handles must not be shown: malformed boundary, confirmed boundary,
//or a degenerate layer.
func (c *HandleController) HandlePositions(layer geometry.Rect, videoDims geometry.Dims) ([]geometry.Point, bool) {
	if c.model.Confirmed() || layer.W <= 0 || layer.H <= 0 {
		return nil, false
	}

	corners, valid := c.model.Corners()
	if !valid {
		return nil, false
	}

	normalized := c.model.IsNormalized()
	out := make([]geometry.Point, len(corners))
	for i, corner := range corners {
		norm := geometry.Point{X: corner[0], Y: corner[1]}
		if !normalized {
			var ok bool
			if norm, ok = geometry.Normalize(norm, videoDims); !ok {
				return nil, false
			}
		}
		out[i] = geometry.Point{X: layer.X + norm.X*layer.W, Y: layer.Y + norm.Y*layer.H}
	}

	return out, true
}

//PointerDown starts a drag when the press lands within the hit radius of a handle and
//the boundary is not confirmed yet. Returns the grabbed handle index.
func (c *HandleController) PointerDown(p geometry.Point, layer geometry.Rect, videoDims geometry.Dims) (int, bool) {
	if c.dragging >= 0 {
		return -1, false
	}

	positions, ok := c.HandlePositions(layer, videoDims)
	if !ok {
		return -1, false
	}

	for i, pos := range positions {
		if math.Hypot(p.X-pos.X, p.Y-pos.Y) <= utils.HandleHitRadiusPx {
			c.dragging = i
			//capture the representation once per drag so a corner transiently crossing
			//the heuristic threshold mid-drag cannot flip the whole boundary's space
			c.dragNormalized = c.model.IsNormalized()
			return i, true
		}
	}

	return -1, false
}

//PointerMove updates the dragged corner from the current pointer position. The pointer
//is clamped into [0,1] per axis, then written back in the representation captured at
//drag start. The other three corners are untouched.
func (c *HandleController) PointerMove(p geometry.Point, layer geometry.Rect, videoDims geometry.Dims) {
	if c.dragging < 0 {
		return
	}

	norm, ok := geometry.PointerToNormalized(p, layer)
	if !ok {
		return
	}

	corner := [2]float64{norm.X, norm.Y}
	if !c.dragNormalized {
		abs, ok := geometry.Denormalize(norm, videoDims)
		if !ok {
			return
		}
		corner = [2]float64{abs.X, abs.Y}
	}

	c.model.SetCorner(c.dragging, corner)
}

//PointerUp ends the drag regardless of where the pointer is
func (c *HandleController) PointerUp() {
	c.dragging = -1
}

//Dragging returns the active handle index, or false when idle
func (c *HandleController) Dragging() (int, bool) {
	return c.dragging, c.dragging >= 0
}
