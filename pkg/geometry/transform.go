package geometry

import "github.com/idanlevi/volleyvision/pkg/utils"

//Point is a 2D point in whatever pixel or normalized space the caller works in
type Point struct {
	X float64
	Y float64
}

//Point3 is a court-relative 3D ball position in meters:
//X lateral offset from court-left, Y depth from the net, Z height above ground
type Point3 struct {
	X float64
	Y float64
	Z float64
}

//Dims holds the width and height of a coordinate space
type Dims struct {
	W float64
	H float64
}

//Rect is a placed rectangle, used for the letterboxed render surface geometry
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

//ToRenderSpace scales a point from source-media pixel space to the current render-surface
//pixel space with independent x/y factors. Returns false when either space is degenerate,
//callers should skip drawing instead of dividing by zero.
func ToRenderSpace(p Point, src, render Dims) (Point, bool) {
	if src.W <= 0 || src.H <= 0 || render.W <= 0 || render.H <= 0 {
		return Point{}, false
	}

	return Point{X: p.X * render.W / src.W, Y: p.Y * render.H / src.H}, true
}

//Normalize maps a pixel-space point into [0,1]x[0,1]. Returns false on degenerate dims.
func Normalize(p Point, dims Dims) (Point, bool) {
	if dims.W <= 0 || dims.H <= 0 {
		return Point{}, false
	}

	return Point{X: p.X / dims.W, Y: p.Y / dims.H}, true
}

//Denormalize is the inverse of Normalize
func Denormalize(p Point, dims Dims) (Point, bool) {
	if dims.W <= 0 || dims.H <= 0 {
		return Point{}, false
	}

	return Point{X: p.X * dims.W, Y: p.Y * dims.H}, true
}

//LetterboxFit computes the largest centered rectangle inside the container that preserves
//the source aspect ratio. Returns false when any dimension is not positive.
func LetterboxFit(src, container Dims) (Rect, bool) {
	if src.W <= 0 || src.H <= 0 || container.W <= 0 || container.H <= 0 {
		return Rect{}, false
	}

	scale := container.W / src.W
	if h := src.H * scale; h > container.H {
		scale = container.H / src.H
	}

	w := src.W * scale
	h := src.H * scale
	return Rect{X: (container.W - w) / 2, Y: (container.H - h) / 2, W: w, H: h}, true
}

//Dims returns the rectangle's size
func (r Rect) Dims() Dims {
	return Dims{W: r.W, H: r.H}
}

//Contains reports whether the point lies inside the rectangle (inclusive of edges)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

//PointerToNormalized converts a pointer position relative to the overlay layer's top-left
//into normalized coordinates, clamped to [0,1] on each axis so a drag that leaves the
//surface still produces a legal corner.
func PointerToNormalized(p Point, layer Rect) (Point, bool) {
	if layer.W <= 0 || layer.H <= 0 {
		return Point{}, false
	}

	return Point{
		X: utils.Clamp01((p.X - layer.X) / layer.W),
		Y: utils.Clamp01((p.Y - layer.Y) / layer.H),
	}, true
}
