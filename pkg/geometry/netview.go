package geometry

import "github.com/idanlevi/volleyvision/pkg/utils"

//netViewSpanMeters is the horizontal extent of the schematic: the court plus a post and
//some breathing room on each side
const netViewSpanMeters = utils.CourtWidthMeters + 2*(utils.PostOffsetMeters+0.5)

//NetViewLayout maps court-relative meters onto the fixed net-front schematic. Everything
//here derives from the window size - the projection math itself never changes.
type NetViewLayout struct {
	Size    float64 //schematic window size in pixels (square)
	Scale   float64 //pixels per meter
	OriginX float64 //screen x of the court-left edge (lateral x = 0)
	GroundY float64 //screen y of the ground plane
}

//NewNetViewLayout builds the schematic layout for given window size in pixels.
//Returns false for a non-positive size - nothing should be drawn then.
func NewNetViewLayout(sizePx float64) (NetViewLayout, bool) {
	if sizePx <= 0 {
		return NetViewLayout{}, false
	}

	scale := sizePx / netViewSpanMeters
	return NetViewLayout{
		Size:    sizePx,
		Scale:   scale,
		OriginX: (sizePx - utils.CourtWidthMeters*scale) / 2,
		GroundY: sizePx - 0.5*scale,
	}, true
}

//Project maps a 3D ball position into schematic pixels and a marker radius.
//Lateral x runs along the net, height z up from the ground. Depth y only shrinks the
//marker linearly (clamped to [0,MaxBallDepthMeters]) as a small perspective cue.
func (l NetViewLayout) Project(p Point3) (Point, float64) {
	screen := Point{
		X: l.OriginX + p.X*l.Scale,
		Y: l.GroundY - p.Z*l.Scale,
	}

	depth := p.Y
	if depth < 0 {
		depth = 0
	}
	if depth > utils.MaxBallDepthMeters {
		depth = utils.MaxBallDepthMeters
	}

	maxR := 0.030 * l.Size
	minR := 0.012 * l.Size
	radius := Lerp(maxR, minR, depth/utils.MaxBallDepthMeters)

	return screen, radius
}

//NetTopY is the screen y of the top of the net band
func (l NetViewLayout) NetTopY() float64 {
	return l.GroundY - utils.NetHeightMeters*l.Scale
}

//AntennaTopY is the screen y of the antenna tips
func (l NetViewLayout) AntennaTopY() float64 {
	return l.NetTopY() - utils.AntennaHeightMeters*l.Scale
}

//BandBottomY is the screen y of the bottom edge of the white tape band
func (l NetViewLayout) BandBottomY() float64 {
	return l.NetTopY() + utils.NetBandHeightMeters*l.Scale
}

//PostXs returns the screen x positions of the left and right posts
func (l NetViewLayout) PostXs() (float64, float64) {
	offset := utils.PostOffsetMeters * l.Scale
	return l.OriginX - offset, l.OriginX + utils.CourtWidthMeters*l.Scale + offset
}
