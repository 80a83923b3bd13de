package timeline

import (
	"testing"

	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestBuildMergesSortedByTimestamp(t *testing.T) {
	events := []analysis.VolleyballEvent{
		{Action: "serve", StartFrame: 300, EndFrame: 330},
		{Action: "spike", StartFrame: 60, EndFrame: 90},
	}
	points := []analysis.ScorePoint{{Team: 0, Time: 5}, {Team: 1, Time: 12}}

	items := Build(events, points, 30, nil)
	require.Len(t, items, 4)

	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Time, items[i].Time)
	}

	//spike at frame 60 => 2s, first point at 5s, serve at 10s, second point at 12s
	assert.Equal(t, KindEvent, items[0].Kind)
	assert.Equal(t, "spike", items[0].Event.Action)
	assert.Equal(t, KindPoint, items[1].Kind)
	assert.Equal(t, KindEvent, items[2].Kind)
	assert.Equal(t, KindPoint, items[3].Kind)
}

func TestBuildSortIsIdempotentAndStable(t *testing.T) {
	//two events sharing a timestamp keep their source order, and rebuilding an
	//already-ordered input reproduces it exactly
	events := []analysis.VolleyballEvent{
		{Action: "set", StartFrame: 60, EndFrame: 70},
		{Action: "spike", StartFrame: 60, EndFrame: 95},
	}
	points := []analysis.ScorePoint{{Team: 0, Time: 1}}

	first := Build(events, points, 30, nil)
	second := Build(events, points, 30, nil)
	assert.Equal(t, first, second)

	assert.Equal(t, "set", first[1].Event.Action)
	assert.Equal(t, "spike", first[2].Event.Action)
}

func TestRunningScoreAccumulates(t *testing.T) {
	points := []analysis.ScorePoint{{Team: 0, Time: 5}, {Team: 1, Time: 12}}
	//interleave events around the points, the running score must not care
	events := []analysis.VolleyballEvent{
		{Action: "serve", StartFrame: 0, EndFrame: 30},
		{Action: "spike", StartFrame: 240, EndFrame: 270},
	}

	items := Build(events, points, 30, nil)

	var dividers []*PointDivider
	for _, item := range items {
		if item.Kind == KindPoint {
			dividers = append(dividers, item.Point)
		}
	}
	require.Len(t, dividers, 2)
	assert.Equal(t, 1, dividers[0].ScoreA)
	assert.Equal(t, 0, dividers[0].ScoreB)
	assert.Equal(t, 1, dividers[1].ScoreA)
	assert.Equal(t, 1, dividers[1].ScoreB)
}

func TestSecondaryMetricPriority(t *testing.T) {
	cases := []struct {
		name  string
		event analysis.VolleyballEvent
		label string
		value string
	}{
		{"spike with height", analysis.VolleyballEvent{Action: "spike", EndFrame: 30, BallHeightM: floatPtr(3.05)}, "contact height", "3.05m"},
		{"block with height", analysis.VolleyballEvent{Action: "block", EndFrame: 30, BlockHeightM: floatPtr(2.71)}, "block height", "2.71m"},
		{"set with height beats position", analysis.VolleyballEvent{Action: "set", EndFrame: 30, BallHeightM: floatPtr(2.2), SetPosition: floatPtr(3.4)}, "contact height", "2.20m"},
		{"set with position only", analysis.VolleyballEvent{Action: "set", EndFrame: 30, SetPosition: floatPtr(3.4)}, "set position", "3.4"},
		{"spike without height falls back to duration", analysis.VolleyballEvent{Action: "spike", StartFrame: 0, EndFrame: 45}, "duration", "1.5s"},
		{"defense has no metric of its own", analysis.VolleyballEvent{Action: "defense", StartFrame: 0, EndFrame: 30}, "duration", "1.0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := Build([]analysis.VolleyballEvent{tc.event}, nil, 30, nil)
			require.Len(t, items, 1)
			assert.Equal(t, tc.label, items[0].Event.MetricLabel)
			assert.Equal(t, tc.value, items[0].Event.MetricValue)
		})
	}
}

func TestCardTimingAndNames(t *testing.T) {
	events := []analysis.VolleyballEvent{
		{Action: "spike", StartFrame: 60, EndFrame: 90, PlayerID: intPtr(4)},
		{Action: "set", StartFrame: 120, EndFrame: 150, PlayerID: intPtr(9)},
	}
	names := map[int]string{4: "Dana"}

	items := Build(events, nil, 30, names)
	assert.Equal(t, "evt-60-0", items[0].Event.ID)
	assert.InDelta(t, 2.0, items[0].Event.Time, 1e-9)
	assert.InDelta(t, 1.0, items[0].Event.Duration, 1e-9)
	assert.Equal(t, "Dana", items[0].Event.PlayerName)
	assert.Equal(t, "P9", items[1].Event.PlayerName) //no mapping => fallback
}

func TestSetQualityTouchesOnlyAddressedEvent(t *testing.T) {
	events := []analysis.VolleyballEvent{
		{Action: "spike", StartFrame: 60, EndFrame: 90},
		{Action: "set", StartFrame: 120, EndFrame: 150, Quality: intPtr(1)},
	}

	require.NoError(t, SetQuality(events, "evt-60-0", intPtr(2)))
	require.NotNil(t, events[0].Quality)
	assert.Equal(t, 2, *events[0].Quality)
	require.NotNil(t, events[1].Quality)
	assert.Equal(t, 1, *events[1].Quality)

	//clearing works the same way and still leaves the neighbor alone
	require.NoError(t, SetQuality(events, "evt-60-0", nil))
	assert.Nil(t, events[0].Quality)
	assert.Equal(t, 1, *events[1].Quality)
}

func TestSetQualityRejectsBadInput(t *testing.T) {
	events := []analysis.VolleyballEvent{{Action: "spike", StartFrame: 60, EndFrame: 90}}

	assert.Error(t, SetQuality(events, "evt-60-0", intPtr(4)))
	assert.Error(t, SetQuality(events, "evt-60-0", intPtr(-1)))
	assert.Error(t, SetQuality(events, "evt-999-0", intPtr(2)))
	assert.Nil(t, events[0].Quality)
}

func TestCurrentCardMatchesFrameRange(t *testing.T) {
	items := Build([]analysis.VolleyballEvent{
		{Action: "serve", StartFrame: 0, EndFrame: 30},
		{Action: "spike", StartFrame: 60, EndFrame: 90},
	}, []analysis.ScorePoint{{Team: 0, Time: 0.5}}, 30, nil)

	i, ok := CurrentCard(items, 75)
	require.True(t, ok)
	assert.Equal(t, "spike", items[i].Event.Action)

	_, ok = CurrentCard(items, 45)
	assert.False(t, ok)
}
