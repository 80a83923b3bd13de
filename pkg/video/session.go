package video

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/calibration"
	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/idanlevi/volleyvision/pkg/timeline"
	"github.com/idanlevi/volleyvision/pkg/utils"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"
)

//redrawInterval drives the continuous loop. Playback advances continuously between the
//discrete notifications, so the loop alone keeps the overlay glued to the frame.
const redrawInterval = 33 * time.Millisecond

//Session owns one video's playback state: the media clock, the frame data index, the
//shared court boundary and the composed overlay output. All mutation and all reads go
//through one mutex - the Go shape of the original single-logic-thread model.
type Session struct {
	mu sync.Mutex

	capture  *gocv.VideoCapture
	frame    gocv.Mat
	blank    gocv.Mat //stays empty, stands in for an undecodable frame
	buffer   gocv.Mat
	decoded  int //frame number currently sitting in `frame`, -1 before the first read
	frameOK  bool
	renderer *Renderer

	meta      analysis.VideoMetadata
	payload   *analysis.Payload
	index     *analysis.FrameIndex
	court     *calibration.CourtModel
	handles   *calibration.HandleController
	scroller  *timeline.Scroller
	points    []analysis.ScorePoint
	names     map[int]string
	toggles   Toggles
	netView   int
	container geometry.Dims
	layout    geometry.Rect

	playing  bool
	position float64   //media position in seconds at `anchor`
	anchor   time.Time //wall time the position was anchored at
	duration float64

	jpeg     []byte
	notified int //last frame number pushed through onTime

	redrawC chan struct{} //capacity 1: at most one pending redraw, extras coalesce

	onTime      func(frame int, t float64)
	onPlayState func(playing bool)
}

//NewSession opens the video and prepares an idle session. Metadata read from the
//container is provisional - the analysis payload corrects it on delivery.
func NewSession(videoPath string) (*Session, error) {
	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("NewSession: Error opening '%s', got '%v'", videoPath, err)
	}

	meta := analysis.VideoMetadata{
		FPS:         capture.Get(gocv.VideoCaptureFPS),
		Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
		TotalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}

	s := &Session{
		capture:  capture,
		frame:    gocv.NewMat(),
		blank:    gocv.NewMat(),
		buffer:   gocv.NewMat(),
		decoded:  -1,
		notified: -1,
		renderer: NewRenderer(),
		meta:     meta,
		index:    analysis.NewFrameIndex(&analysis.Payload{VideoMetadata: meta}),
		court:    calibration.NewCourtModel(nil),
		scroller: &timeline.Scroller{},
		names:    make(map[int]string),
		netView:  viper.GetInt("overlay.netview_size"),
		toggles:  Toggles{Ball: true, Court: true, Players: true, Actions: true, NetView: true},
		container: geometry.Dims{
			W: float64(meta.Width),
			H: float64(meta.Height),
		},
		redrawC: make(chan struct{}, 1),
	}
	s.handles = calibration.NewHandleController(s.court)
	s.duration = s.durationSeconds()

	return s, nil
}

//SetCallbacks registers the outbound notifications: current frame on every time change
//and the play/pause flips. Callbacks run outside the session lock.
func (s *Session) SetCallbacks(onTime func(frame int, t float64), onPlayState func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTime = onTime
	s.onPlayState = onPlayState
}

//SetPayload delivers the analysis results: rebuilds the frame index, corrects the
//provisional metadata with the service's authoritative values and seeds the court
//boundary from the first court detection unless the user already calibrated one.
func (s *Session) SetPayload(p *analysis.Payload) {
	s.mu.Lock()

	if p.VideoMetadata.FPS > 0 {
		s.meta = p.VideoMetadata
	} else {
		p.VideoMetadata = s.meta
	}

	if window := viper.GetInt("overlay.smooth_window"); window > 1 && len(p.Ball3DPositions) > 0 {
		smoothed := analysis.SmoothPositions(frameIndexPositions(p), window)
		for i, pos := range smoothed {
			if pos == nil {
				p.Ball3DPositions[i] = nil
			} else {
				p.Ball3DPositions[i] = &[3]float64{pos.X, pos.Y, pos.Z}
			}
		}
	}

	s.payload = p
	s.index = analysis.NewFrameIndex(p)
	s.duration = s.durationSeconds()
	s.scroller.SetContentWidth(timeline.ContentWidth(s.timelineItemsLocked()))

	if corners, valid := s.court.Corners(); !valid || len(corners) == 0 {
		if len(p.CourtDetections) > 0 && len(p.CourtDetections[0]) == utils.CourtCornersCount {
			s.court.Replace(p.CourtDetections[0])
		}
	}

	s.mu.Unlock()
	s.RequestRedraw()
}

//Payload returns the delivered analysis payload, nil before delivery
func (s *Session) Payload() *analysis.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

//Court returns the session's shared court boundary model
func (s *Session) Court() *calibration.CourtModel {
	return s.court
}

//SetNames replaces the player display-name mapping
func (s *Session) SetNames(names map[int]string) {
	s.mu.Lock()
	s.names = names
	s.mu.Unlock()
	s.RequestRedraw()
}

//SetToggles replaces the overlay visibility flags
func (s *Session) SetToggles(t Toggles) {
	s.mu.Lock()
	s.toggles = t
	s.mu.Unlock()
	s.RequestRedraw()
}

//SetNetViewSize sets the schematic window size in pixels. Scale only - the projection
//math never changes.
func (s *Session) SetNetViewSize(px int) {
	s.mu.Lock()
	s.netView = px
	s.mu.Unlock()
	s.RequestRedraw()
}

//SetContainer reports the current container size. The render geometry is derived fresh
//from it on every redraw, so resizing never accumulates drift.
func (s *Session) SetContainer(dims geometry.Dims) {
	s.mu.Lock()
	s.container = dims
	s.mu.Unlock()
	s.RequestRedraw()
}

//AddScorePoint appends a score marker for the timeline
func (s *Session) AddScorePoint(p analysis.ScorePoint) {
	s.mu.Lock()
	s.points = append(s.points, p)
	s.scroller.SetContentWidth(timeline.ContentWidth(s.timelineItemsLocked()))
	s.mu.Unlock()
}

//Timeline builds the merged event/score timeline for the current payload
func (s *Session) Timeline() []timeline.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timelineItemsLocked()
}

//TimelineView is the drawable state of the timeline strip: the merged items plus the
//scroll offset, the selected card with its popup anchor, and the offset the transport
//should animate toward to keep the current card centered.
type TimelineView struct {
	Items      []timeline.Item `json:"items"`
	Offset     float64         `json:"offset"`
	Selected   string          `json:"selected,omitempty"`
	PopupX     *float64        `json:"popup_x,omitempty"`
	AutoScroll *float64        `json:"auto_scroll,omitempty"`
}

//TimelineView builds the strip state for the current payload, scroll position and
//media time
func (s *Session) TimelineView() TimelineView {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.timelineItemsLocked()
	view := TimelineView{Items: items, Offset: s.scroller.Offset()}

	if id, ok := s.scroller.Selected(); ok {
		view.Selected = id
		if x, ok := s.scroller.PopupAnchor(items); ok {
			view.PopupX = &x
		}
	}

	frame := int(math.Floor(s.currentTimeLocked() * s.meta.EffectiveFPS()))
	if target, ok := s.scroller.AutoScrollTarget(items, frame); ok {
		view.AutoScroll = &target
	}

	return view
}

//SetTimelineViewport reports the visible strip width. The scroll bounds derive from it
//and from the laid-out content width, and the current offset is re-clamped.
func (s *Session) SetTimelineViewport(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.SetBounds(timeline.ContentWidth(s.timelineItemsLocked()), w)
}

//TimelinePointerDown arms the strip's drag state machine
func (s *Session) TimelinePointerDown(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.PointerDown(x)
}

//TimelinePointerMove feeds a pointer move into the strip
func (s *Session) TimelinePointerMove(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.PointerMove(x)
}

//TimelinePointerUp releases the strip. A gesture that stayed a click selects the card
//under the pointer; a click on empty strip is the outside click and clears the popup.
func (s *Session) TimelinePointerUp(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scroller.PointerUp() {
		return
	}

	items := s.timelineItemsLocked()
	if i, ok := timeline.ItemAt(items, s.scroller.Offset()+x); ok && items[i].Kind == timeline.KindEvent {
		s.scroller.Select(items[i].Event.ID)
		return
	}
	s.scroller.Select("")
}

//TimelineWheel scrolls the strip by a wheel delta on either axis
func (s *Session) TimelineWheel(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.Wheel(dx, dy)
}

func (s *Session) timelineItemsLocked() []timeline.Item {
	var events []analysis.VolleyballEvent
	if s.payload != nil {
		events = s.payload.VolleyballEvents
	}
	return timeline.Build(events, s.points, s.meta.EffectiveFPS(), s.names)
}

//SetQuality mutates one event's user rating in place, keyed by the synthetic event id
func (s *Session) SetQuality(id string, quality *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payload == nil {
		return fmt.Errorf("SetQuality: no analysis payload delivered yet")
	}
	return timeline.SetQuality(s.payload.VolleyballEvents, id, quality)
}

//Play starts the media clock
func (s *Session) Play() {
	s.mu.Lock()
	if !s.playing {
		s.position = s.currentTimeLocked()
		s.anchor = time.Now()
		s.playing = true
	}
	cb := s.onPlayState
	s.mu.Unlock()

	if cb != nil {
		cb(true)
	}
	s.RequestRedraw()
}

//Pause freezes the media clock at the current position
func (s *Session) Pause() {
	s.mu.Lock()
	if s.playing {
		s.position = s.currentTimeLocked()
		s.playing = false
	}
	cb := s.onPlayState
	s.mu.Unlock()

	if cb != nil {
		cb(false)
	}
	s.RequestRedraw()
}

//Playing reports whether the clock advances
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

//SeekTo moves the media position, but only when the request differs from the current
//position by more than a small epsilon - natural time-advance notifications echoing
//back must not cause a feedback loop of micro-seeks.
func (s *Session) SeekTo(t float64) {
	s.mu.Lock()
	current := s.currentTimeLocked()
	if math.Abs(t-current) <= utils.SeekEpsilonSeconds {
		s.mu.Unlock()
		return
	}

	if t < 0 {
		t = 0
	}
	if s.duration > 0 && t > s.duration {
		t = s.duration
	}
	s.position = t
	s.anchor = time.Now()
	s.mu.Unlock()

	s.RequestRedraw()
}

//CurrentTime returns the media position in seconds
func (s *Session) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTimeLocked()
}

//JPEG returns the latest composed overlay frame, encoded
func (s *Session) JPEG() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jpeg
}

//Layout returns the letterboxed placement of the render surface in the container
func (s *Session) Layout() geometry.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

//PointerDown feeds a press on the render container into the calibration controller.
//The session lock is held across the call: the controller's drag state has no lock of
//its own and concurrent gestures must serialize.
func (s *Session) PointerDown(x, y float64) bool {
	s.mu.Lock()
	_, ok := s.handles.PointerDown(geometry.Point{X: x, Y: y}, s.layout, s.sourceDimsLocked())
	s.mu.Unlock()

	if ok {
		s.RequestRedraw()
	}
	return ok
}

//PointerMove feeds a pointer move; only an active drag reacts
func (s *Session) PointerMove(x, y float64) {
	s.mu.Lock()
	s.handles.PointerMove(geometry.Point{X: x, Y: y}, s.layout, s.sourceDimsLocked())
	s.mu.Unlock()

	s.RequestRedraw()
}

//PointerUp ends a drag no matter where the pointer is
func (s *Session) PointerUp() {
	s.mu.Lock()
	s.handles.PointerUp()
	s.mu.Unlock()

	s.RequestRedraw()
}

//RequestRedraw queues an immediate redraw. A redraw already pending absorbs the request.
func (s *Session) RequestRedraw() {
	select {
	case s.redrawC <- struct{}{}:
	default:
	}
}

//Run is the continuous redraw loop: one tick per interval plus an immediate pass for
//every queued notification redraw. It returns when the context is cancelled and
//processes no frame afterwards.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.redrawC:
		}

		if ctx.Err() != nil {
			return
		}
		s.redraw()
	}
}

//Close releases the capture and the mats. Call after Run returned.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil {
		if err := s.capture.Close(); err != nil {
			log.Printf("Session: Error closing capture, got '%v'", err)
		}
		s.capture = nil
	}
	s.frame.Close()
	s.blank.Close()
	s.buffer.Close()
}

//redraw decodes the frame the clock landed on (seeking the capture only on
//discontinuities), composes the overlay and notifies the frame change
func (s *Session) redraw() {
	s.mu.Lock()

	if s.capture == nil {
		s.mu.Unlock()
		return
	}

	t := s.currentTimeLocked()
	fps := s.meta.EffectiveFPS()
	frameInt := int(math.Floor(t * fps))

	if frameInt != s.decoded {
		if frameInt != s.decoded+1 {
			s.capture.Set(gocv.VideoCapturePosFrames, float64(frameInt))
		}
		s.frameOK = s.capture.Read(&s.frame) && !s.frame.Empty()
		s.decoded = frameInt
	}

	frame := s.frame
	if !s.frameOK {
		frame = s.blank //renderer treats an empty mat as "draw black"
	}

	st := &State{
		Index:       s.index,
		Court:       s.court,
		Handles:     s.handles,
		Names:       s.names,
		Toggles:     s.toggles,
		NetViewSize: s.netView,
	}

	layout, ok := s.renderer.Compose(&s.buffer, frame, t, s.container, st)
	if ok {
		s.layout = layout
		if encoded, err := gocv.IMEncode(gocv.JPEGFileExt, s.buffer); err == nil {
			s.jpeg = append(s.jpeg[:0], encoded.GetBytes()...)
			encoded.Close()
		} else {
			log.Printf("Session: Error encoding frame, got '%v'", err)
		}
	}

	changed := frameInt != s.notified
	s.notified = frameInt
	cb := s.onTime
	s.mu.Unlock()

	if changed && cb != nil {
		cb(frameInt, t)
	}
}

func (s *Session) currentTimeLocked() float64 {
	t := s.position
	if s.playing {
		t += time.Since(s.anchor).Seconds()
	}
	if s.duration > 0 && t > s.duration {
		t = s.duration
	}
	if t < 0 {
		t = 0
	}
	return t
}

func (s *Session) durationSeconds() float64 {
	if s.meta.TotalFrames <= 0 {
		return 0
	}
	return float64(s.meta.TotalFrames) / s.meta.EffectiveFPS()
}

func (s *Session) sourceDimsLocked() geometry.Dims {
	return geometry.Dims{W: float64(s.meta.Width), H: float64(s.meta.Height)}
}

func frameIndexPositions(p *analysis.Payload) []*geometry.Point3 {
	out := make([]*geometry.Point3, len(p.Ball3DPositions))
	for i, pos := range p.Ball3DPositions {
		if pos != nil {
			out[i] = &geometry.Point3{X: pos[0], Y: pos[1], Z: pos[2]}
		}
	}
	return out
}
