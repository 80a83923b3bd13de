package analysis

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/idanlevi/volleyvision/pkg/utils"
)

//VideoMetadata describes the analyzed video. Immutable once known.
type VideoMetadata struct {
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalFrames int     `json:"total_frames,omitempty"`
}

//EffectiveFPS returns the reported frame rate, or the default until the analysis
//service reports an authoritative one
func (m VideoMetadata) EffectiveFPS() float64 {
	if m.FPS > 0 {
		return m.FPS
	}

	return utils.DefaultFPS
}

//ActionDetection is a classified action covering the inclusive frame interval
//[StartFrame, EndFrame]. Box is absent for actions without spatial localization.
type ActionDetection struct {
	Action     string      `json:"action"`
	StartFrame int         `json:"start_frame"`
	EndFrame   int         `json:"end_frame"`
	Box        *[4]float64 `json:"box,omitempty"`
}

//PlayerDetection is one tracked player box on a single frame
type PlayerDetection struct {
	PlayerID   int        `json:"player_id"`
	Box        [4]float64 `json:"box"`
	Confidence float64    `json:"confidence,omitempty"`
}

//VolleyballEvent is an action enriched with the player and ball context the analysis
//service linked to it. Quality is the only field a user mutates after delivery.
type VolleyballEvent struct {
	Action       string      `json:"action"`
	StartFrame   int         `json:"start_frame"`
	EndFrame     int         `json:"end_frame"`
	PlayerID     *int        `json:"player_id,omitempty"`
	BallHeightM  *float64    `json:"ball_height_m,omitempty"`
	BlockHeightM *float64    `json:"block_height_m,omitempty"`
	SetPosition  *float64    `json:"set_position,omitempty"`
	Quality      *int        `json:"quality,omitempty"`
	Box          *[4]float64 `json:"box,omitempty"`
}

//ScorePoint marks a scored point for one of the two teams at a playback time in seconds
type ScorePoint struct {
	Team int     `json:"team"`
	Time float64 `json:"time"`
}

//Payload is the full per-video response of the analysis service's process-video
//endpoint. BallDetections and Ball3DPositions are dense frame-indexed arrays with nil
//at frames without a detection.
type Payload struct {
	VideoMetadata    VideoMetadata                `json:"video_metadata"`
	CourtDetections  [][][2]float64               `json:"court_detections"`
	BallDetections   []*[4]float64                `json:"ball_detections"`
	ActionDetections []ActionDetection            `json:"action_detections"`
	ServeEvents      []ActionDetection            `json:"serve_events"`
	PlayerTracks     map[string][]PlayerDetection `json:"player_tracks"`
	Ball3DPositions  []*[3]float64                `json:"ball_3d_positions"`
	VolleyballEvents []VolleyballEvent            `json:"volleyball_events"`
}

//CourtLines is the response of the process-court-lines endpoint: the initial boundary
//estimate that seeds calibration
type CourtLines struct {
	CourtCorners  [][2]float64  `json:"court_corners"`
	VideoMetadata VideoMetadata `json:"video_metadata"`
}

//DecodePayload reads a full analysis payload. The per-frame arrays get large for long
//videos, which is why this goes through goccy instead of encoding/json.
func DecodePayload(r io.Reader) (*Payload, error) {
	p := &Payload{}
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return nil, err
	}

	return p, nil
}
