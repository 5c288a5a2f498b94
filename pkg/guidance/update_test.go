package guidance

import (
	"testing"
)

func TestParseMessage_FullUpdate(t *testing.T) {
	payload := `{
		"direction": "slightly left",
		"distance": "close",
		"instruction": "Move slightly left. Door is close ahead.",
		"target": "door",
		"scene_description": "1 door left",
		"objects": [{"name":"door","confidence":0.91,"x":12,"y":40,"w":120,"h":300}],
		"obstacles": [{"name":"chair","distance":"close","position":"center","threat":"medium","confidence":0.7}],
		"confidence": 0.91,
		"ts": 1.0
	}`

	msg, err := ParseMessage([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindUpdate {
		t.Fatalf("kind: got %v, want KindUpdate", msg.Kind)
	}

	u := msg.Update
	if u.Direction != DirectionSlightlyLeft {
		t.Errorf("direction: got %q", u.Direction)
	}
	if u.Distance != DistanceClose {
		t.Errorf("distance: got %q", u.Distance)
	}
	if u.Instruction != "Move slightly left. Door is close ahead." {
		t.Errorf("instruction: got %q", u.Instruction)
	}
	if u.Target == nil || *u.Target != "door" {
		t.Errorf("target: got %v", u.Target)
	}
	if u.Confidence == nil || *u.Confidence != 0.91 {
		t.Errorf("confidence: got %v", u.Confidence)
	}
	if u.Timestamp != 1.0 {
		t.Errorf("ts: got %v", u.Timestamp)
	}
	if len(u.Objects) != 1 || u.Objects[0].Name != "door" || u.Objects[0].W != 120 {
		t.Errorf("objects: got %+v", u.Objects)
	}
	if len(u.Obstacles) != 1 {
		t.Fatalf("obstacles: got %+v", u.Obstacles)
	}
	if u.Obstacles[0].Threat != ThreatMedium {
		t.Errorf("threat: got %q", u.Obstacles[0].Threat)
	}
}

func TestParseMessage_Defaults(t *testing.T) {
	msg, err := ParseMessage([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindUpdate {
		t.Fatalf("kind: got %v, want KindUpdate", msg.Kind)
	}

	u := msg.Update
	if u.Direction != DirectionUnknown {
		t.Errorf("direction default: got %q", u.Direction)
	}
	if u.Distance != DistanceUnknown {
		t.Errorf("distance default: got %q", u.Distance)
	}
	if u.Instruction != "" {
		t.Errorf("instruction default: got %q", u.Instruction)
	}
	if u.SceneDescription != "" {
		t.Errorf("scene default: got %q", u.SceneDescription)
	}
	if u.Objects == nil || len(u.Objects) != 0 {
		t.Errorf("objects default: got %v", u.Objects)
	}
	if u.Obstacles == nil || len(u.Obstacles) != 0 {
		t.Errorf("obstacles default: got %v", u.Obstacles)
	}
	if u.Target != nil {
		t.Errorf("target default: got %v", u.Target)
	}
	if u.Confidence != nil {
		t.Errorf("confidence default: got %v", u.Confidence)
	}
}

func TestParseMessage_Throttled(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"status":"throttled"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindThrottled {
		t.Errorf("kind: got %v, want KindThrottled", msg.Kind)
	}
	if msg.Update != nil {
		t.Errorf("throttled message should carry no update")
	}
}

func TestParseMessage_ServerError(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"error":"frame_processing_failed"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindError {
		t.Errorf("kind: got %v, want KindError", msg.Kind)
	}
	if msg.Err != "frame_processing_failed" {
		t.Errorf("err: got %q", msg.Err)
	}
}

func TestParseMessage_Malformed(t *testing.T) {
	if _, err := ParseMessage([]byte(`{nope`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseDirection_Variants(t *testing.T) {
	cases := map[string]Direction{
		"slightly left":  DirectionSlightlyLeft,
		"slightly_left":  DirectionSlightlyLeft,
		"HARD_RIGHT":     DirectionHardRight,
		"hard left":      DirectionHardLeft,
		"center":         DirectionCenter,
		"sharp_left":     DirectionUnknown,
		"":               DirectionUnknown,
		"turn_around":    DirectionUnknown,
		"slightly right": DirectionSlightlyRight,
	}
	for in, want := range cases {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestParseDistance_Variants(t *testing.T) {
	cases := map[string]Distance{
		"very close": DistanceVeryClose,
		"very_close": DistanceVeryClose,
		"close":      DistanceClose,
		"clear":      DistanceUnknown,
		"":           DistanceUnknown,
	}
	for in, want := range cases {
		if got := ParseDistance(in); got != want {
			t.Errorf("ParseDistance(%q): got %q, want %q", in, got, want)
		}
	}
}
