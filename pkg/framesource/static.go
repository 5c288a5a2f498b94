package framesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Static cycles through a fixed set of pre-encoded JPEG frames.
// Useful for development against the simulator without a camera.
type Static struct {
	mu     sync.Mutex
	frames [][]byte
	next   int
	closed bool
}

// NewStatic creates a source from in-memory JPEG frames.
func NewStatic(frames ...[]byte) (*Static, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("framesource: no frames given")
	}
	return &Static{frames: frames}, nil
}

// NewStaticFromDir loads all .jpg/.jpeg files from a directory, sorted by
// filename, and cycles through them.
func NewStaticFromDir(dir string) (*Static, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("framesource: read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("framesource: no jpeg files in %s", dir)
	}

	frames := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("framesource: read %s: %w", name, err)
		}
		frames = append(frames, data)
	}

	return &Static{frames: frames}, nil
}

// CaptureJPEG returns the next frame in the cycle.
func (s *Static) CaptureJPEG(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	frame := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)
	return frame, nil
}

// Close marks the source closed.
func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Source = (*Static)(nil)
