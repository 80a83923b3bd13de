package calibration

import (
	"sync"

	"github.com/idanlevi/volleyvision/pkg/utils"
)

//CourtModel is the single authoritative court boundary: exactly 4 corner points, either
//normalized [0,1] or absolute video pixels. Handle drags mutate it, the overlay renderer
//reads it on the next redraw. Confirming is one-way and freezes the corners for good.
type CourtModel struct {
	mu        sync.Mutex
	corners   [][2]float64
	confirmed bool
}

//NewCourtModel creates a model seeded from an initial court detection. The slice is
//copied - callers keep no write access to the model's state.
func NewCourtModel(corners [][2]float64) *CourtModel {
	m := &CourtModel{}
	m.Replace(corners)
	return m
}

//Replace swaps in a newly detected boundary. Ignored once the user confirmed.
func (m *CourtModel) Replace(corners [][2]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.confirmed {
		return
	}

	m.corners = make([][2]float64, len(corners))
	copy(m.corners, corners)
}

//Corners returns a copy of the boundary and whether it is well formed. A malformed
//boundary (not exactly 4 points) must suppress polygon and handle rendering.
func (m *CourtModel) Corners() ([][2]float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][2]float64, len(m.corners))
	copy(out, m.corners)
	return out, len(m.corners) == utils.CourtCornersCount
}

//SetCorner replaces a single corner, leaving the other three untouched. Refused after
//confirmation or for an out-of-range index.
func (m *CourtModel) SetCorner(i int, pt [2]float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.confirmed || i < 0 || i >= len(m.corners) {
		return false
	}

	m.corners[i] = pt
	return true
}

//Confirm freezes the boundary. There is no way back.
func (m *CourtModel) Confirm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = true
}

//Confirmed reports whether the user froze the boundary
func (m *CourtModel) Confirmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmed
}

//IsNormalized applies the representation heuristic: a first corner with x below the
//threshold means the boundary is in normalized coordinates. A pixel corner sitting in
//column 0 or 1 would be misclassified - the service never emits those in practice.
func (m *CourtModel) IsNormalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.corners) == 0 {
		return true
	}

	return m.corners[0][0] < utils.NormalizedCoordThreshold
}
