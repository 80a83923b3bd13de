package timeline

import (
	"fmt"
	"sort"

	"github.com/idanlevi/volleyvision/pkg/analysis"
	"github.com/idanlevi/volleyvision/pkg/utils"
)

//Item kinds on the chronological strip
const (
	KindEvent = "event"
	KindPoint = "point"
)

//Item is one entry of the merged timeline: an event card or a running-score divider
type Item struct {
	Kind  string        `json:"kind"`
	Time  float64       `json:"time"`
	Event *EventCard    `json:"event,omitempty"`
	Point *PointDivider `json:"point,omitempty"`
}

//EventCard is a volleyball event prepared for display
type EventCard struct {
	ID          string  `json:"id"`
	Action      string  `json:"action"`
	PlayerName  string  `json:"player_name,omitempty"`
	Time        float64 `json:"time"`
	Duration    float64 `json:"duration"`
	MetricLabel string  `json:"metric_label"`
	MetricValue string  `json:"metric_value"`
	StartFrame  int     `json:"start_frame"`
	EndFrame    int     `json:"end_frame"`
	Quality     *int    `json:"quality,omitempty"`
}

//PointDivider carries the running score up to and including its point
type PointDivider struct {
	Team   int     `json:"team"`
	Time   float64 `json:"time"`
	ScoreA int     `json:"score_a"`
	ScoreB int     `json:"score_b"`
}

//EventID builds the synthetic id quality updates are keyed by
func EventID(e analysis.VolleyballEvent, index int) string {
	return fmt.Sprintf("evt-%d-%d", e.StartFrame, index)
}

//Build merges the volleyball events and the score points into one sequence sorted
//ascending by timestamp. The sort is stable: within each source stream the original
//relative order decides ties.
func Build(events []analysis.VolleyballEvent, points []analysis.ScorePoint, fps float64, names map[int]string) []Item {
	if fps <= 0 {
		fps = utils.DefaultFPS
	}

	items := make([]Item, 0, len(events)+len(points))
	for i, e := range events {
		card := buildCard(e, i, fps, names)
		items = append(items, Item{Kind: KindEvent, Time: card.Time, Event: card})
	}

	scoreA, scoreB := 0, 0
	for _, p := range points {
		if p.Team == utils.TeamA {
			scoreA++
		} else {
			scoreB++
		}
		items = append(items, Item{Kind: KindPoint, Time: p.Time, Point: &PointDivider{
			Team:   p.Team,
			Time:   p.Time,
			ScoreA: scoreA,
			ScoreB: scoreB,
		}})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time < items[j].Time
	})

	return items
}

func buildCard(e analysis.VolleyballEvent, index int, fps float64, names map[int]string) *EventCard {
	card := &EventCard{
		ID:         EventID(e, index),
		Action:     e.Action,
		Time:       float64(e.StartFrame) / fps,
		Duration:   float64(e.EndFrame-e.StartFrame) / fps,
		StartFrame: e.StartFrame,
		EndFrame:   e.EndFrame,
		Quality:    e.Quality,
	}

	if e.PlayerID != nil {
		card.PlayerName = utils.PlayerName(*e.PlayerID, names)
	}

	card.MetricLabel, card.MetricValue = secondaryMetric(e, card.Duration)
	return card
}

//secondaryMetric picks the action-specific stat for the card, in fixed priority:
//spike contact height, block height, set contact height, set position, then duration.
func secondaryMetric(e analysis.VolleyballEvent, duration float64) (string, string) {
	switch {
	case e.Action == "spike" && e.BallHeightM != nil:
		return "contact height", fmt.Sprintf("%.2fm", *e.BallHeightM)
	case e.Action == "block" && e.BlockHeightM != nil:
		return "block height", fmt.Sprintf("%.2fm", *e.BlockHeightM)
	case e.Action == "set" && e.BallHeightM != nil:
		return "contact height", fmt.Sprintf("%.2fm", *e.BallHeightM)
	case e.Action == "set" && e.SetPosition != nil:
		return "set position", fmt.Sprintf("%.1f", *e.SetPosition)
	default:
		return "duration", fmt.Sprintf("%.1fs", duration)
	}
}

//SetQuality mutates the quality rating of the event addressed by id, in place, leaving
//every other event untouched. A nil rating clears the field. Ratings outside [0,3] and
//unknown ids are rejected.
func SetQuality(events []analysis.VolleyballEvent, id string, quality *int) error {
	if quality != nil && (*quality < 0 || *quality > utils.QualityMax) {
		return fmt.Errorf("SetQuality: rating %d out of range", *quality)
	}

	for i := range events {
		if EventID(events[i], i) == id {
			events[i].Quality = quality
			return nil
		}
	}

	return fmt.Errorf("SetQuality: no event with id '%s'", id)
}

//CurrentCard returns the index of the item whose event frame range contains the given
//frame, for the auto-scroll-to-current behavior. Score dividers never match.
func CurrentCard(items []Item, frame int) (int, bool) {
	for i, item := range items {
		if item.Kind != KindEvent || item.Event == nil {
			continue
		}
		if frame >= item.Event.StartFrame && frame <= item.Event.EndFrame {
			return i, true
		}
	}

	return 0, false
}
