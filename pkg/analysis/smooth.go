package analysis

import "github.com/idanlevi/volleyvision/pkg/geometry"

//SmoothPositions applies a trailing moving average over the valid samples of a sparse
//3D position sequence, the same smoothing the analysis service applies on its side.
//Frames whose trailing window holds no valid sample stay nil. The input is not modified.
func SmoothPositions(samples []*geometry.Point3, window int) []*geometry.Point3 {
	if window <= 1 || len(samples) == 0 {
		out := make([]*geometry.Point3, len(samples))
		copy(out, samples)
		return out
	}

	out := make([]*geometry.Point3, len(samples))
	for i := range samples {
		start := i - window + 1
		if start < 0 {
			start = 0
		}

		var sum geometry.Point3
		count := 0
		for j := start; j <= i; j++ {
			if samples[j] == nil {
				continue
			}
			sum.X += samples[j].X
			sum.Y += samples[j].Y
			sum.Z += samples[j].Z
			count++
		}

		if count == 0 {
			continue
		}

		out[i] = &geometry.Point3{
			X: sum.X / float64(count),
			Y: sum.Y / float64(count),
			Z: sum.Z / float64(count),
		}
	}

	return out
}
