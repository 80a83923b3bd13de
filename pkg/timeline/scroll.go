package timeline

import (
	"math"

	"github.com/idanlevi/volleyvision/pkg/utils"
)

//Strip layout constants, in pixels
const (
	CardWidth    = 160.0
	CardGap      = 8.0
	DividerWidth = 56.0
)

//ScrollPhase is the interaction state of the strip
type ScrollPhase int

const (
	ScrollIdle ScrollPhase = iota
	ScrollPointerDown
	ScrollDragging
)

//Scroller is the horizontal scroll-by-drag state machine of the timeline strip.
//A press is not a drag until the pointer moved past a small threshold - that is what
//keeps clicks selecting cards instead of nudging the strip.
type Scroller struct {
	phase       ScrollPhase
	pressX      float64
	pressOffset float64
	offset      float64
	maxOffset   float64
	viewport    float64
	selected    string
}

//SetBounds tells the scroller the strip content width and the visible viewport width.
//The current offset is re-clamped, resizes must not leave the strip over-scrolled.
func (s *Scroller) SetBounds(contentW, viewportW float64) {
	s.viewport = viewportW
	s.maxOffset = contentW - viewportW
	if s.maxOffset < 0 {
		s.maxOffset = 0
	}
	s.offset = s.clamp(s.offset)
}

//SetContentWidth updates the strip content width, keeping the current viewport. Called
//whenever the item list changes so the max offset tracks the layout.
func (s *Scroller) SetContentWidth(contentW float64) {
	s.SetBounds(contentW, s.viewport)
}

//PointerDown arms the state machine
func (s *Scroller) PointerDown(x float64) {
	s.phase = ScrollPointerDown
	s.pressX = x
	s.pressOffset = s.offset
}

//PointerMove promotes the press to a drag past the threshold and, while dragging,
//scrolls the strip opposite to the pointer motion
func (s *Scroller) PointerMove(x float64) {
	if s.phase == ScrollPointerDown && math.Abs(x-s.pressX) > utils.DragThresholdPx {
		s.phase = ScrollDragging
	}
	if s.phase != ScrollDragging {
		return
	}

	s.offset = s.clamp(s.pressOffset - (x - s.pressX))
}

//PointerUp returns to idle. The return value reports whether the gesture stayed a
//click - the caller uses it to select the card under the pointer.
func (s *Scroller) PointerUp() bool {
	wasClick := s.phase == ScrollPointerDown
	s.phase = ScrollIdle
	return wasClick
}

//Wheel scrolls horizontally no matter which wheel axis produced the input
func (s *Scroller) Wheel(dx, dy float64) {
	delta := dx
	if delta == 0 {
		delta = dy
	}
	s.offset = s.clamp(s.offset + delta)
}

//Dragging reports whether the user is actively dragging the strip
func (s *Scroller) Dragging() bool {
	return s.phase == ScrollDragging
}

//Offset returns the current horizontal scroll offset
func (s *Scroller) Offset() float64 {
	return s.offset
}

//Select marks a card as selected, opening its detail popup. An empty id clears the
//selection - that is the outside click.
func (s *Scroller) Select(id string) {
	s.selected = id
}

//Selected returns the selected card id, if any
func (s *Scroller) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

//ItemOffsets lays the strip out: the left edge x of every item in content pixels
func ItemOffsets(items []Item) []float64 {
	out := make([]float64, len(items))
	x := 0.0
	for i, item := range items {
		out[i] = x
		if item.Kind == KindPoint {
			x += DividerWidth + CardGap
		} else {
			x += CardWidth + CardGap
		}
	}

	return out
}

//ContentWidth returns the laid-out width of the whole strip in content pixels
func ContentWidth(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}

	w := 0.0
	for _, item := range items {
		if item.Kind == KindPoint {
			w += DividerWidth + CardGap
		} else {
			w += CardWidth + CardGap
		}
	}

	return w - CardGap //no gap after the last item
}

//ItemAt returns the index of the item under the given content-space x. Gaps between
//items match nothing.
func ItemAt(items []Item, x float64) (int, bool) {
	offsets := ItemOffsets(items)
	for i, item := range items {
		w := CardWidth
		if item.Kind == KindPoint {
			w = DividerWidth
		}
		if x >= offsets[i] && x < offsets[i]+w {
			return i, true
		}
	}

	return 0, false
}

//AutoScrollTarget computes the offset that horizontally centers the card containing the
//current frame. Returns false while the user drags the strip (auto-scroll is suppressed)
//or when no card covers the frame; the transport animates toward the returned offset.
func (s *Scroller) AutoScrollTarget(items []Item, frame int) (float64, bool) {
	if s.Dragging() {
		return 0, false
	}

	i, ok := CurrentCard(items, frame)
	if !ok {
		return 0, false
	}

	center := ItemOffsets(items)[i] + CardWidth/2
	return s.clamp(center - s.viewport/2), true
}

//PopupAnchor returns the x position (content pixels) a detail popup should anchor to:
//the center of the selected card. False when nothing is selected.
func (s *Scroller) PopupAnchor(items []Item) (float64, bool) {
	id, ok := s.Selected()
	if !ok {
		return 0, false
	}

	offsets := ItemOffsets(items)
	for i, item := range items {
		if item.Kind == KindEvent && item.Event != nil && item.Event.ID == id {
			return offsets[i] + CardWidth/2, true
		}
	}

	return 0, false
}

func (s *Scroller) clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > s.maxOffset {
		return s.maxOffset
	}
	return v
}
