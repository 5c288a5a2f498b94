package framesource

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local camera device via OpenCV.
type Webcam struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	jpegQ  int
	closed bool
}

// WebcamOptions configures the capture device.
type WebcamOptions struct {
	// DeviceID is the OS camera index (0 for the default camera).
	DeviceID int

	// Width and Height request a capture resolution. Zero keeps the
	// device default. The guidance backend downscales to 640px anyway,
	// so a modest resolution saves bandwidth.
	Width  int
	Height int

	// JPEGQuality is 1-100; zero means 80.
	JPEGQuality int
}

// OpenWebcam opens the camera device for exclusive capture.
func OpenWebcam(opts WebcamOptions) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(opts.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("framesource: open camera %d: %w", opts.DeviceID, err)
	}

	if opts.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
	}
	if opts.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = 80
	}

	return &Webcam{
		cap:   cap,
		mat:   gocv.NewMat(),
		jpegQ: quality,
	}, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (w *Webcam) CaptureJPEG(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	if ok := w.cap.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.mat,
		[]int{gocv.IMWriteJpegQuality, w.jpegQ})
	if err != nil {
		return nil, fmt.Errorf("framesource: encode jpeg: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, buf.Len())
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.mat.Close()
	return w.cap.Close()
}

var _ Source = (*Webcam)(nil)
