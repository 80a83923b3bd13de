package geometry

import "math"

//Lerp returns a + (b-a)*t. t is deliberately not clamped: slight overshoot at clip
//boundaries matches the playback behavior we want.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

//LerpPoint3 interpolates componentwise between two 3D positions
func LerpPoint3(a, b Point3, t float64) Point3 {
	return Point3{
		X: Lerp(a.X, b.X, t),
		Y: Lerp(a.Y, b.Y, t),
		Z: Lerp(a.Z, b.Z, t),
	}
}

//InterpolatePosition resolves a fractional frame position against a sparse sequence of
//3D samples (nil == no detection at that frame). With i = floor(exactFrame):
//sample i missing => no value this frame (we never interpolate across a gap from a lone
//valid neighbor); sample i valid and sample i+1 valid => lerp between them;
//sample i valid and i+1 missing or out of range => hold sample i.
//Indexes outside the sequence are "no data", never an error.
func InterpolatePosition(samples []*Point3, exactFrame float64) (Point3, bool) {
	if exactFrame < 0 {
		return Point3{}, false
	}

	i := int(math.Floor(exactFrame))
	if i >= len(samples) || samples[i] == nil {
		return Point3{}, false
	}

	cur := *samples[i]
	if i+1 >= len(samples) || samples[i+1] == nil {
		return cur, true
	}

	return LerpPoint3(cur, *samples[i+1], exactFrame-float64(i)), true
}
