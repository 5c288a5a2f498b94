package framesource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatic_Cycles(t *testing.T) {
	src, err := NewStatic([]byte("a"), []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	ctx := context.Background()
	want := []string{"a", "b", "a"}
	for i, w := range want {
		frame, err := src.CaptureJPEG(ctx)
		if err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
		if string(frame) != w {
			t.Errorf("capture %d: got %q, want %q", i, frame, w)
		}
	}
}

func TestStatic_RequiresFrames(t *testing.T) {
	if _, err := NewStatic(); err == nil {
		t.Error("expected error for empty frame set")
	}
}

func TestStatic_Closed(t *testing.T) {
	src, err := NewStatic([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	src.Close()

	if _, err := src.CaptureJPEG(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestStatic_ContextCanceled(t *testing.T) {
	src, err := NewStatic([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.CaptureJPEG(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestStaticFromDir_SortedJPEGsOnly(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"02.jpg":    "second",
		"01.jpeg":   "first",
		"notes.txt": "ignored",
		"frame.png": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	src, err := NewStaticFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	ctx := context.Background()
	for _, want := range []string{"first", "second"} {
		frame, err := src.CaptureJPEG(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if string(frame) != want {
			t.Errorf("got %q, want %q", frame, want)
		}
	}
}

func TestStaticFromDir_Empty(t *testing.T) {
	if _, err := NewStaticFromDir(t.TempDir()); err == nil {
		t.Error("expected error for directory without jpegs")
	}
}
