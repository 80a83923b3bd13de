package utils

//DefaultFPS is the frame rate assumed until the analysis service reports an authoritative value
const DefaultFPS = 30.0

//CourtCornersCount is the number of points in a valid court boundary
const CourtCornersCount = 4

//NormalizedCoordThreshold - a corner with x below this value is treated as normalized [0,1] coordinates
const NormalizedCoordThreshold = 2.0

//CourtWidthMeters is the regulation court width (net length direction)
const CourtWidthMeters = 9.0

//NetHeightMeters is the regulation men's net height
const NetHeightMeters = 2.43

//AntennaHeightMeters is how far the antennas extend above the net band
const AntennaHeightMeters = 0.8

//NetBandHeightMeters is the height of the white tape band at the top of the net
const NetBandHeightMeters = 0.07

//PostOffsetMeters is the distance of each post outside the sideline
const PostOffsetMeters = 0.5

//MaxBallDepthMeters caps the depth used for the net-view perspective cue
const MaxBallDepthMeters = 18.0

//HandleHitRadiusPx is the pointer hit radius around a calibration handle, in render-surface pixels
const HandleHitRadiusPx = 14.0

//DragThresholdPx is the pointer displacement that turns a press into a timeline drag
const DragThresholdPx = 5.0

//SeekEpsilonSeconds - seek requests closer than this to the current position are ignored
const SeekEpsilonSeconds = 0.05

//TeamA and TeamB are the two score-point team identifiers
const (
	TeamA = 0
	TeamB = 1
)

//QualityMax is the highest event quality rating a user can assign (ordinal 0-3)
const QualityMax = 3

//KnownActions is the set of action names the classifier emits
var KnownActions = []string{"serve", "spike", "block", "set", "defense"}
