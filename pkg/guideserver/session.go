package guideserver

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/visionmate/go-guide/pkg/guidance"
)

// inboundFrame is the client-to-server message shape.
type inboundFrame struct {
	Image    string `json:"image"`
	Question string `json:"question"`
}

// Server-to-client reply shapes. A reply is exactly one of these.
type errorReply struct {
	Error string `json:"error"`
}

type throttledReply struct {
	Status string `json:"status"`
}

type updateReply struct {
	SceneDescription string                    `json:"scene_description"`
	Instruction      string                    `json:"instruction"`
	Direction        guidance.Direction        `json:"direction"`
	Distance         guidance.Distance         `json:"distance"`
	Confidence       float64                   `json:"confidence"`
	Target           string                    `json:"target"`
	Obstacles        []guidance.Obstacle       `json:"obstacles"`
	Objects          []guidance.DetectedObject `json:"objects"`
	Timestamp        float64                   `json:"ts"`
}

// session holds per-connection guidance state. Not safe for concurrent use;
// each websocket connection owns one session and feeds it from a single
// reader goroutine.
type session struct {
	id       uuid.UUID
	analyzer Analyzer

	throttleWindow    time.Duration
	instructionRepeat time.Duration
	now               func() time.Time

	lastAnalyzedAt  time.Time
	lastInstruction string
	lastSpokenAt    time.Time
}

func newSession(analyzer Analyzer, cfg Config) *session {
	return &session{
		id:                uuid.New(),
		analyzer:          analyzer,
		throttleWindow:    cfg.ThrottleWindow,
		instructionRepeat: cfg.InstructionRepeat,
		now:               time.Now,
	}
}

// handleFrame processes one inbound message and returns the reply to send.
// Malformed input produces an error reply, never a dropped connection: the
// client treats server errors as a single missed frame.
//
// The throttle window is measured from the last analyzed frame, not from
// the last frame that carried an instruction. The production backend ties
// both to one timestamp, which disables throttling entirely while the
// instruction is unchanged; here the window holds regardless.
func (s *session) handleFrame(data []byte) any {
	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		return errorReply{Error: "bad_json"}
	}
	if in.Image == "" {
		return errorReply{Error: "no_image"}
	}

	now := s.now()
	if !s.lastAnalyzedAt.IsZero() && now.Sub(s.lastAnalyzedAt) < s.throttleWindow {
		return throttledReply{Status: "throttled"}
	}

	frame, err := base64.StdEncoding.DecodeString(in.Image)
	if err != nil {
		return errorReply{Error: "frame_processing_failed"}
	}

	result, err := s.analyzer.Analyze(frame, in.Question)
	if err != nil {
		return errorReply{Error: "frame_processing_failed"}
	}
	s.lastAnalyzedAt = now

	// An unchanged instruction is blanked until the repeat interval
	// elapses, so the client does not re-speak it every frame.
	instruction := result.Instruction
	repeatDue := now.Sub(s.lastSpokenAt) > s.instructionRepeat
	if instruction != "" && (instruction != s.lastInstruction || repeatDue) {
		s.lastInstruction = instruction
		s.lastSpokenAt = now
	} else {
		instruction = ""
	}

	objects := result.Objects
	if objects == nil {
		objects = []guidance.DetectedObject{}
	}
	obstacles := result.Obstacles
	if obstacles == nil {
		obstacles = []guidance.Obstacle{}
	}

	return updateReply{
		SceneDescription: result.SceneDescription,
		Instruction:      instruction,
		Direction:        result.Direction,
		Distance:         result.Distance,
		Confidence:       result.Confidence,
		Target:           result.Target,
		Obstacles:        obstacles,
		Objects:          objects,
		Timestamp:        float64(now.UnixNano()) / float64(time.Second),
	}
}
