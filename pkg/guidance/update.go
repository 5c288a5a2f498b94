// Package guidance implements the real-time guidance loop: a fixed-cadence
// camera capture feeding a persistent websocket to the guidance backend, and
// an arbiter that turns server-pushed updates into at most one spoken
// instruction and haptic cue at a time.
package guidance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is where the target (or open path) lies relative to the camera.
type Direction string

// Direction values. The backend emits spaced labels ("slightly left");
// ParseDirection also accepts underscored variants.
const (
	DirectionCenter        Direction = "center"
	DirectionSlightlyLeft  Direction = "slightly left"
	DirectionLeft          Direction = "left"
	DirectionHardLeft      Direction = "hard left"
	DirectionSlightlyRight Direction = "slightly right"
	DirectionRight         Direction = "right"
	DirectionHardRight     Direction = "hard right"
	DirectionUnknown       Direction = "unknown"
)

// ParseDirection normalizes a wire label to a Direction.
// Unrecognized labels fold to DirectionUnknown.
func ParseDirection(s string) Direction {
	switch Direction(normalizeLabel(s)) {
	case DirectionCenter, DirectionSlightlyLeft, DirectionLeft, DirectionHardLeft,
		DirectionSlightlyRight, DirectionRight, DirectionHardRight:
		return Direction(normalizeLabel(s))
	default:
		return DirectionUnknown
	}
}

// Distance is a coarse range estimate to the target.
type Distance string

// Distance values.
const (
	DistanceVeryClose Distance = "very close"
	DistanceClose     Distance = "close"
	DistanceMedium    Distance = "medium"
	DistanceFar       Distance = "far"
	DistanceVeryFar   Distance = "very far"
	DistanceUnknown   Distance = "unknown"
)

// ParseDistance normalizes a wire label to a Distance.
// Unrecognized labels fold to DistanceUnknown.
func ParseDistance(s string) Distance {
	switch Distance(normalizeLabel(s)) {
	case DistanceVeryClose, DistanceClose, DistanceMedium, DistanceFar, DistanceVeryFar:
		return Distance(normalizeLabel(s))
	default:
		return DistanceUnknown
	}
}

// Threat classifies how much an obstacle blocks the walking path.
type Threat string

// Threat values.
const (
	ThreatLow    Threat = "low"
	ThreatMedium Threat = "medium"
	ThreatHigh   Threat = "high"
)

// ParseThreat normalizes a wire label to a Threat, defaulting to low.
func ParseThreat(s string) Threat {
	switch Threat(normalizeLabel(s)) {
	case ThreatMedium, ThreatHigh:
		return Threat(normalizeLabel(s))
	default:
		return ThreatLow
	}
}

// normalizeLabel lowercases and folds underscores to spaces.
func normalizeLabel(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
}

// DetectedObject is one detection in the analyzed frame, in pixel space.
type DetectedObject struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
}

// Obstacle is a detected object in the walking path.
type Obstacle struct {
	Name       string  `json:"name"`
	Distance   string  `json:"distance"`
	Position   string  `json:"position"` // "left", "center", "right"
	Threat     Threat  `json:"threat"`
	Confidence float64 `json:"confidence"`
}

// Update is one server interpretation of a single submitted frame.
// Consumed immediately by the arbiter; never persisted.
type Update struct {
	Direction        Direction
	Distance         Distance
	Instruction      string
	Target           *string
	Confidence       *float64
	Objects          []DetectedObject
	Obstacles        []Obstacle
	SceneDescription string

	// Timestamp is seconds since epoch on the server clock.
	Timestamp float64
}

// MessageKind classifies an inbound server message.
type MessageKind int

const (
	// KindUpdate carries a guidance update.
	KindUpdate MessageKind = iota

	// KindThrottled means the frame was dropped by server-side rate
	// limiting. Expected steady-state condition, not an error.
	KindThrottled

	// KindError carries a server-reported application error.
	// Treated as a single missed frame, not fatal.
	KindError
)

// Message is one decoded inbound server message.
type Message struct {
	Kind   MessageKind
	Update *Update // set when Kind == KindUpdate
	Err    string  // set when Kind == KindError
}

// wireMessage mirrors the server JSON for all three message shapes.
type wireMessage struct {
	Status string `json:"status"`
	Error  string `json:"error"`

	Direction        string           `json:"direction"`
	Distance         string           `json:"distance"`
	Instruction      string           `json:"instruction"`
	Target           *string          `json:"target"`
	Confidence       *float64         `json:"confidence"`
	Objects          []DetectedObject `json:"objects"`
	Obstacles        []wireObstacle   `json:"obstacles"`
	SceneDescription string           `json:"scene_description"`
	Timestamp        float64          `json:"ts"`
}

type wireObstacle struct {
	Name       string  `json:"name"`
	Distance   string  `json:"distance"`
	Position   string  `json:"position"`
	Threat     string  `json:"threat"`
	Confidence float64 `json:"confidence"`
}

// ParseMessage decodes one inbound server message, applying the defaulting
// rules for absent fields: direction and distance fold to unknown,
// instruction and scene description default to empty, object and obstacle
// lists to empty slices. Malformed JSON is the only error condition.
func ParseMessage(data []byte) (*Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("guidance: parse message: %w", err)
	}

	if strings.EqualFold(w.Status, "throttled") {
		return &Message{Kind: KindThrottled}, nil
	}
	if w.Error != "" {
		return &Message{Kind: KindError, Err: w.Error}, nil
	}

	u := &Update{
		Direction:        ParseDirection(w.Direction),
		Distance:         ParseDistance(w.Distance),
		Instruction:      w.Instruction,
		Target:           w.Target,
		Confidence:       w.Confidence,
		SceneDescription: w.SceneDescription,
		Timestamp:        w.Timestamp,
	}

	u.Objects = w.Objects
	if u.Objects == nil {
		u.Objects = []DetectedObject{}
	}

	u.Obstacles = make([]Obstacle, 0, len(w.Obstacles))
	for _, o := range w.Obstacles {
		u.Obstacles = append(u.Obstacles, Obstacle{
			Name:       o.Name,
			Distance:   o.Distance,
			Position:   o.Position,
			Threat:     ParseThreat(o.Threat),
			Confidence: o.Confidence,
		})
	}

	return &Message{Kind: KindUpdate, Update: u}, nil
}
