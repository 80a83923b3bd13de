package analysis

import (
	"strconv"

	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/idanlevi/volleyvision/pkg/utils"
)

//FrameIndex holds constant-time frame-number lookups over the sparse arrays of a
//Payload. Build it once per payload delivery and reuse it for every redraw - lookups
//are O(1), absence is a value and not an error.
type FrameIndex struct {
	meta      VideoMetadata
	balls     map[int][4]float64
	players   map[int][]PlayerDetection
	actions   map[int]ActionDetection
	positions []*geometry.Point3
}

//NewFrameIndex builds the lookup structures from a delivered payload. Action intervals
//are expanded to one entry per covered frame, trading memory for per-redraw speed.
//When two intervals overlap, the later one in the payload wins the shared frames.
func NewFrameIndex(p *Payload) *FrameIndex {
	ix := &FrameIndex{
		meta:    p.VideoMetadata,
		balls:   make(map[int][4]float64),
		players: make(map[int][]PlayerDetection),
		actions: make(map[int]ActionDetection),
	}

	for frame, box := range p.BallDetections {
		if box != nil {
			ix.balls[frame] = *box
		}
	}

	for frameStr, detections := range p.PlayerTracks {
		frame, err := strconv.Atoi(frameStr)
		if err != nil {
			continue //the service keys frames as strings, anything else is junk
		}
		ix.players[frame] = detections
	}

	for _, action := range p.ActionDetections {
		for f := action.StartFrame; f <= action.EndFrame; f++ {
			ix.actions[f] = action
		}
	}

	//serve events come from a dedicated recognizer and win frames they share with the
	//general classifier. It emits bare intervals at times, so unlabeled ones get "serve".
	for _, serve := range p.ServeEvents {
		if !utils.InSlice(serve.Action, utils.KnownActions) {
			serve.Action = "serve"
		}
		for f := serve.StartFrame; f <= serve.EndFrame; f++ {
			ix.actions[f] = serve
		}
	}

	ix.positions = make([]*geometry.Point3, len(p.Ball3DPositions))
	for i, pos := range p.Ball3DPositions {
		if pos != nil {
			ix.positions[i] = &geometry.Point3{X: pos[0], Y: pos[1], Z: pos[2]}
		}
	}

	return ix
}

//Metadata returns the video metadata the payload carried
func (ix *FrameIndex) Metadata() VideoMetadata {
	return ix.meta
}

//Ball returns the ball bounding box at given frame, if any
func (ix *FrameIndex) Ball(frame int) ([4]float64, bool) {
	box, ok := ix.balls[frame]
	return box, ok
}

//Players returns the player detections at given frame. Empty slice means nothing to draw.
func (ix *FrameIndex) Players(frame int) []PlayerDetection {
	return ix.players[frame]
}

//Action returns the action covering given frame, if any
func (ix *FrameIndex) Action(frame int) (ActionDetection, bool) {
	action, ok := ix.actions[frame]
	return action, ok
}

//Positions returns the frame-indexed 3D ball positions (nil entries at frames with no
//detection) for interpolation at fractional frame positions
func (ix *FrameIndex) Positions() []*geometry.Point3 {
	return ix.positions
}
