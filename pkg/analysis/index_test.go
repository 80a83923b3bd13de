package analysis

import (
	"strings"
	"testing"

	"github.com/idanlevi/volleyvision/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x1, y1, x2, y2 float64) *[4]float64 {
	return &[4]float64{x1, y1, x2, y2}
}

func TestActionIntervalCoversEveryFrameInclusive(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		ActionDetections: []ActionDetection{
			{Action: "spike", StartFrame: 60, EndFrame: 90},
		},
	})

	for f := 60; f <= 90; f++ {
		action, ok := ix.Action(f)
		require.True(t, ok, "frame %d", f)
		assert.Equal(t, "spike", action.Action)
	}

	_, ok := ix.Action(59)
	assert.False(t, ok)
	_, ok = ix.Action(91)
	assert.False(t, ok)
}

func TestOverlappingActionsLaterOneWins(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		ActionDetections: []ActionDetection{
			{Action: "set", StartFrame: 10, EndFrame: 30},
			{Action: "spike", StartFrame: 25, EndFrame: 40},
		},
	})

	action, ok := ix.Action(20)
	require.True(t, ok)
	assert.Equal(t, "set", action.Action)

	//shared frames belong to the interval delivered later
	action, ok = ix.Action(27)
	require.True(t, ok)
	assert.Equal(t, "spike", action.Action)
}

func TestServeEventsFoldedIntoActionIndex(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		ServeEvents: []ActionDetection{
			{Action: "serve", StartFrame: 100, EndFrame: 130},
		},
	})

	action, ok := ix.Action(115)
	require.True(t, ok)
	assert.Equal(t, "serve", action.Action)

	_, ok = ix.Action(131)
	assert.False(t, ok)
}

func TestServeEventWinsSharedFramesAndGetsLabeled(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		ActionDetections: []ActionDetection{
			{Action: "defense", StartFrame: 0, EndFrame: 50},
		},
		ServeEvents: []ActionDetection{
			{StartFrame: 20, EndFrame: 40}, //bare interval, no class name
		},
	})

	//the dedicated recognizer owns the shared frames
	action, ok := ix.Action(30)
	require.True(t, ok)
	assert.Equal(t, "serve", action.Action)

	action, ok = ix.Action(10)
	require.True(t, ok)
	assert.Equal(t, "defense", action.Action)
}

func TestBallLookupSparseFrames(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		BallDetections: []*[4]float64{nil, nil, box(10, 20, 30, 40)},
	})

	_, ok := ix.Ball(0)
	assert.False(t, ok)
	b, ok := ix.Ball(2)
	require.True(t, ok)
	assert.Equal(t, [4]float64{10, 20, 30, 40}, b)
	_, ok = ix.Ball(99)
	assert.False(t, ok)
}

func TestPlayerTracksKeyedByStringFrame(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		PlayerTracks: map[string][]PlayerDetection{
			"12":  {{PlayerID: 3, Box: [4]float64{1, 2, 3, 4}}},
			"bad": {{PlayerID: 9}},
		},
	})

	players := ix.Players(12)
	require.Len(t, players, 1)
	assert.Equal(t, 3, players[0].PlayerID)
	assert.Empty(t, ix.Players(13))
}

func TestPositionsConvertedWithGapsPreserved(t *testing.T) {
	ix := NewFrameIndex(&Payload{
		Ball3DPositions: []*[3]float64{{1, 2, 3}, nil, {4, 5, 6}},
	})

	positions := ix.Positions()
	require.Len(t, positions, 3)
	assert.Equal(t, geometry.Point3{X: 1, Y: 2, Z: 3}, *positions[0])
	assert.Nil(t, positions[1])
}

func TestDecodePayloadFromServiceShape(t *testing.T) {
	raw := `{
		"video_metadata": {"fps": 59.94, "width": 1920, "height": 1080, "total_frames": 4},
		"ball_detections": [null, [100, 100, 150, 150], null, null],
		"action_detections": [{"action": "serve", "start_frame": 0, "end_frame": 2, "box": [5, 5, 9, 9]}],
		"player_tracks": {"1": [{"player_id": 7, "box": [0, 0, 10, 10], "confidence": 0.91}]},
		"ball_3d_positions": [null, [4.5, 9.0, 2.1], null, null],
		"volleyball_events": [{"action": "serve", "start_frame": 0, "end_frame": 2, "player_id": 7}]
	}`

	p, err := DecodePayload(strings.NewReader(raw))
	require.NoError(t, err)
	assert.InDelta(t, 59.94, p.VideoMetadata.FPS, 1e-9)

	ix := NewFrameIndex(p)
	b, ok := ix.Ball(1)
	require.True(t, ok)
	assert.Equal(t, [4]float64{100, 100, 150, 150}, b)
	require.Len(t, ix.Players(1), 1)
	require.NotNil(t, p.VolleyballEvents[0].PlayerID)
	assert.Equal(t, 7, *p.VolleyballEvents[0].PlayerID)
}

func TestEffectiveFPSDefaultsUntilAuthoritative(t *testing.T) {
	assert.Equal(t, 30.0, VideoMetadata{}.EffectiveFPS())
	assert.Equal(t, 25.0, VideoMetadata{FPS: 25}.EffectiveFPS())
}
