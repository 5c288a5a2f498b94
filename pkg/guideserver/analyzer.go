package guideserver

import (
	"sync"

	"github.com/visionmate/go-guide/pkg/guidance"
)

// Result is one frame analysis: what the reply to the client is built from.
type Result struct {
	Target           string
	Direction        guidance.Direction
	Distance         guidance.Distance
	Confidence       float64
	Instruction      string
	SceneDescription string
	Objects          []guidance.DetectedObject
	Obstacles        []guidance.Obstacle
}

// Analyzer turns a submitted frame plus the client's target query into a
// guidance result.
type Analyzer interface {
	Analyze(frame []byte, question string) (*Result, error)
	Name() string
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(frame []byte, question string) (*Result, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(frame []byte, question string) (*Result, error) {
	return f(frame, question)
}

// Name identifies the adapter.
func (f AnalyzerFunc) Name() string { return "func" }

// Scripted replays a fixed sequence of results, one per analyzed frame,
// cycling when exhausted. Frame content is ignored; the target query is
// echoed back in each result. Useful for demos and client testing without
// a vision model.
type Scripted struct {
	mu      sync.Mutex
	results []Result
	next    int
}

// NewScripted creates a scripted analyzer. With no results it behaves like
// an empty scene.
func NewScripted(results ...Result) *Scripted {
	return &Scripted{results: results}
}

// Analyze returns the next scripted result with the query as target.
func (s *Scripted) Analyze(frame []byte, question string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.results) == 0 {
		return &Result{
			Target:           question,
			Direction:        guidance.DirectionUnknown,
			Distance:         guidance.DistanceUnknown,
			SceneDescription: "No clear objects ahead. Path may be open.",
		}, nil
	}

	r := s.results[s.next]
	s.next = (s.next + 1) % len(s.results)
	if r.Target == "" {
		r.Target = question
	}
	return &r, nil
}

// Name identifies the analyzer.
func (s *Scripted) Name() string { return "scripted" }

// DefaultScript is a walk-toward-target sequence: the target drifts from the
// right toward center while closing distance.
func DefaultScript(target string) []Result {
	step := func(dir guidance.Direction, dist guidance.Distance, conf float64, instruction string) Result {
		return Result{
			Target:           target,
			Direction:        dir,
			Distance:         dist,
			Confidence:       conf,
			Instruction:      instruction,
			SceneDescription: "1 " + target + " ahead",
		}
	}
	return []Result{
		step(guidance.DirectionRight, guidance.DistanceFar, 0.62,
			"Turn right toward the "+target+" then walk ahead."),
		step(guidance.DirectionSlightlyRight, guidance.DistanceMedium, 0.71,
			"Nudge right and go on."),
		step(guidance.DirectionCenter, guidance.DistanceClose, 0.84,
			"Head straight, the "+target+" is just ahead."),
		step(guidance.DirectionCenter, guidance.DistanceVeryClose, 0.9,
			"Almost there, ease forward."),
	}
}

var (
	_ Analyzer = (AnalyzerFunc)(nil)
	_ Analyzer = (*Scripted)(nil)
)
