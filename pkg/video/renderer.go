package video

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/calibration"
	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/idanlevi/volleyvision/pkg/utils"
	"gocv.io/x/gocv"
)

var ballColor = color.RGBA{255, 128, 0, 0}
var courtColor = color.RGBA{0, 255, 255, 0}
var playerColor = color.RGBA{0, 255, 0, 0}
var actionColor = color.RGBA{255, 0, 0, 0}
var handleColor = color.RGBA{255, 255, 0, 0}
var whiteRGB = color.RGBA{255, 255, 255, 0}
var netViewBgColor = color.RGBA{20, 20, 20, 0}
var netColor = color.RGBA{200, 200, 200, 0}

//Toggles holds the per-overlay visibility flags
type Toggles struct {
	Ball    bool `json:"ball"`
	Court   bool `json:"court"`
	Players bool `json:"players"`
	Actions bool `json:"actions"`
	NetView bool `json:"net_view"`
}

//State is everything a single redraw reads: the frame data index, the shared court
//boundary, visibility toggles and the net-view window size. The renderer never mutates
//any of it.
type State struct {
	Index       *analysis.FrameIndex
	Court       *calibration.CourtModel
	Handles     *calibration.HandleController
	Names       map[int]string
	Toggles     Toggles
	NetViewSize int
}

//Renderer composes one video frame plus all enabled overlays into a render buffer.
//Missing per-frame data is a valid nothing-to-draw state, never an error.
type Renderer struct{}

//NewRenderer returns a Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

//Compose letterboxes the source into the container, resizes the buffer, draws the frame
//(black when the source is undecodable) and every enabled overlay for the given media
//time. Returns the buffer's placement inside the container so pointer math and the
//overlay controls stay pixel-aligned with the drawn content, and false when the redraw
//must be skipped (degenerate container or metadata).
func (r *Renderer) Compose(buffer *gocv.Mat, frame gocv.Mat, timeSec float64, container geometry.Dims, st *State) (geometry.Rect, bool) {
	if st == nil || st.Index == nil {
		return geometry.Rect{}, false
	}

	meta := st.Index.Metadata()
	src := geometry.Dims{W: float64(meta.Width), H: float64(meta.Height)}
	if src.W <= 0 || src.H <= 0 {
		if frame.Empty() {
			return geometry.Rect{}, false
		}
		src = geometry.Dims{W: float64(frame.Cols()), H: float64(frame.Rows())}
	}

	layout, ok := geometry.LetterboxFit(src, container)
	if !ok {
		return geometry.Rect{}, false
	}

	w, h := int(math.Round(layout.W)), int(math.Round(layout.H))
	if w <= 0 || h <= 0 {
		return geometry.Rect{}, false
	}

	if buffer.Empty() || buffer.Cols() != w || buffer.Rows() != h {
		buffer.Close()
		*buffer = gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	}

	if frame.Empty() {
		buffer.SetTo(gocv.NewScalar(0, 0, 0, 0)) //undecodable source: black frame, keep running
	} else {
		gocv.Resize(frame, buffer, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	}

	fps := meta.EffectiveFPS()
	exactFrame := timeSec * fps
	currentFrame := int(math.Floor(exactFrame))
	render := layout.Dims()

	if st.Toggles.Ball {
		r.drawBall(buffer, currentFrame, src, render, st)
	}

	if st.Toggles.Court {
		r.drawCourt(buffer, src, render, st)
		r.drawHandles(buffer, render, src, st)
	}

	if st.Toggles.Players {
		r.drawPlayers(buffer, currentFrame, src, render, st)
	}

	if st.Toggles.Actions {
		r.drawAction(buffer, currentFrame, src, render, st)
	}

	if st.Toggles.NetView {
		r.drawNetView(buffer, exactFrame, st)
	}

	return layout, true
}

//drawBall draws the ball bounding box at the current frame, no label
func (r *Renderer) drawBall(buffer *gocv.Mat, frame int, src, render geometry.Dims, st *State) {
	box, ok := st.Index.Ball(frame)
	if !ok {
		return
	}

	rect, ok := boxToRender(box, src, render)
	if !ok {
		return
	}

	gocv.Rectangle(buffer, rect, ballColor, 2)
}

//drawCourt draws the closed 4-point boundary polygon, outline only. A malformed
//boundary draws nothing at all.
func (r *Renderer) drawCourt(buffer *gocv.Mat, src, render geometry.Dims, st *State) {
	if st.Court == nil {
		return
	}

	corners, valid := st.Court.Corners()
	if !valid {
		return
	}

	normalized := st.Court.IsNormalized()
	points := make([]image.Point, len(corners))
	for i, corner := range corners {
		p := geometry.Point{X: corner[0], Y: corner[1]}
		var ok bool
		if normalized {
			p, ok = geometry.Denormalize(p, render)
		} else {
			p, ok = geometry.ToRenderSpace(p, src, render)
		}
		if !ok {
			return
		}
		points[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}

	for i := range points {
		gocv.Line(buffer, points[i], points[(i+1)%len(points)], courtColor, 2)
	}
}

//drawPlayers draws every player detection of the current frame with its display name
func (r *Renderer) drawPlayers(buffer *gocv.Mat, frame int, src, render geometry.Dims, st *State) {
	for _, det := range st.Index.Players(frame) {
		rect, ok := boxToRender(det.Box, src, render)
		if !ok {
			continue
		}

		gocv.Rectangle(buffer, rect, playerColor, 2)
		label := utils.PlayerName(det.PlayerID, st.Names)
		putLabel(buffer, label, image.Pt(rect.Min.X, rect.Min.Y-6), playerColor)
	}
}

//drawAction draws the single action covering the current frame: a labeled box when the
//action is spatially localized, a centered banner otherwise
func (r *Renderer) drawAction(buffer *gocv.Mat, frame int, src, render geometry.Dims, st *State) {
	action, ok := st.Index.Action(frame)
	if !ok {
		return
	}

	if action.Box != nil {
		rect, ok := boxToRender(*action.Box, src, render)
		if !ok {
			return
		}
		gocv.Rectangle(buffer, rect, actionColor, 2)
		putLabel(buffer, action.Action, image.Pt(rect.Min.X, rect.Min.Y-6), actionColor)
		return
	}

	//no spatial localization: banner centered near the top of the surface
	size := gocv.GetTextSize(action.Action, gocv.FontHersheyPlain, 2, 2)
	org := image.Pt(buffer.Cols()/2-size.X/2, buffer.Rows()/8)
	bg := image.Rect(org.X-8, org.Y-size.Y-8, org.X+size.X+8, org.Y+8)
	gocv.Rectangle(buffer, bg, actionColor, -1) //thickness -1 == filled rectangle
	gocv.PutText(buffer, action.Action, org, gocv.FontHersheyPlain, 2, whiteRGB, 2)
}

//drawHandles draws the calibration control points while the boundary is editable.
//It rides the court toggle together with the polygon.
func (r *Renderer) drawHandles(buffer *gocv.Mat, render, src geometry.Dims, st *State) {
	if st.Handles == nil {
		return
	}

	layer := geometry.Rect{W: render.W, H: render.H}
	positions, ok := st.Handles.HandlePositions(layer, src)
	if !ok {
		return
	}

	for _, pos := range positions {
		center := image.Pt(int(math.Round(pos.X)), int(math.Round(pos.Y)))
		gocv.Circle(buffer, center, int(utils.HandleHitRadiusPx)/2, handleColor, -1)
		gocv.Circle(buffer, center, int(utils.HandleHitRadiusPx)/2, whiteRGB, 1)
	}
}

//drawNetView draws the net-front schematic inset in the top-right corner, with the
//interpolated 3D ball and its floating height label. No valid position this frame
//means the marker and label are simply not drawn.
func (r *Renderer) drawNetView(buffer *gocv.Mat, exactFrame float64, st *State) {
	layout, ok := geometry.NewNetViewLayout(float64(st.NetViewSize))
	if !ok {
		return
	}

	size := st.NetViewSize
	margin := 10
	left := buffer.Cols() - size - margin
	top := margin
	if left < 0 || top+size > buffer.Rows() {
		return //surface too small for the inset
	}

	offset := func(p geometry.Point) image.Point {
		return image.Pt(left+int(math.Round(p.X)), top+int(math.Round(p.Y)))
	}

	gocv.Rectangle(buffer, image.Rect(left, top, left+size, top+size), netViewBgColor, -1)
	gocv.Rectangle(buffer, image.Rect(left, top, left+size, top+size), netColor, 1)

	groundY := layout.GroundY
	netTop := layout.NetTopY()
	bandBottom := layout.BandBottomY()
	postLeft, postRight := layout.PostXs()

	//ground, posts, net band and antennas of the fixed schematic
	gocv.Line(buffer, offset(geometry.Point{X: 0, Y: groundY}), offset(geometry.Point{X: float64(size), Y: groundY}), netColor, 1)
	gocv.Line(buffer, offset(geometry.Point{X: postLeft, Y: groundY}), offset(geometry.Point{X: postLeft, Y: netTop}), netColor, 2)
	gocv.Line(buffer, offset(geometry.Point{X: postRight, Y: groundY}), offset(geometry.Point{X: postRight, Y: netTop}), netColor, 2)
	bandRect := image.Rectangle{
		Min: offset(geometry.Point{X: postLeft, Y: netTop}),
		Max: offset(geometry.Point{X: postRight, Y: bandBottom}),
	}
	gocv.Rectangle(buffer, bandRect, whiteRGB, -1)
	gocv.Line(buffer, offset(geometry.Point{X: layout.OriginX, Y: netTop}), offset(geometry.Point{X: layout.OriginX, Y: layout.AntennaTopY()}), actionColor, 1)
	rightAntennaX := layout.OriginX + utils.CourtWidthMeters*layout.Scale
	gocv.Line(buffer, offset(geometry.Point{X: rightAntennaX, Y: netTop}), offset(geometry.Point{X: rightAntennaX, Y: layout.AntennaTopY()}), actionColor, 1)

	pos, ok := geometry.InterpolatePosition(st.Index.Positions(), exactFrame)
	if !ok {
		return
	}

	screen, radius := layout.Project(pos)
	center := offset(screen)
	gocv.Circle(buffer, center, int(math.Round(radius)), ballColor, -1)

	label := fmt.Sprintf("%.2fm", pos.Z)
	textSize := gocv.GetTextSize(label, gocv.FontHersheyPlain, 1, 1)
	org := image.Pt(center.X-textSize.X/2, center.Y-int(math.Round(radius))-4)
	gocv.PutText(buffer, label, org, gocv.FontHersheyPlain, 1, whiteRGB, 1)
}

//boxToRender maps an [x1,y1,x2,y2] source-pixel box into render-surface pixels
func boxToRender(box [4]float64, src, render geometry.Dims) (image.Rectangle, bool) {
	min, ok := geometry.ToRenderSpace(geometry.Point{X: box[0], Y: box[1]}, src, render)
	if !ok {
		return image.Rectangle{}, false
	}
	max, ok := geometry.ToRenderSpace(geometry.Point{X: box[2], Y: box[3]}, src, render)
	if !ok {
		return image.Rectangle{}, false
	}

	return image.Rect(int(math.Round(min.X)), int(math.Round(min.Y)), int(math.Round(max.X)), int(math.Round(max.Y))), true
}

//putLabel writes text over a filled background so it stays readable on any frame
func putLabel(buffer *gocv.Mat, text string, org image.Point, bg color.RGBA) {
	size := gocv.GetTextSize(text, gocv.FontHersheyPlain, 1, 2)
	back := image.Rect(org.X, org.Y-size.Y-4, org.X+size.X+6, org.Y+4)
	gocv.Rectangle(buffer, back, bg, -1)
	gocv.PutText(buffer, text, image.Pt(org.X+3, org.Y), gocv.FontHersheyPlain, 1, whiteRGB, 2)
}
