// guide streams camera frames to the guidance backend and voices the
// returned walking instructions, with haptic direction cues on the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/visionmate/go-guide/internal/config"
	"github.com/visionmate/go-guide/internal/httpc"
	"github.com/visionmate/go-guide/internal/log"
	"github.com/visionmate/go-guide/pkg/framesource"
	"github.com/visionmate/go-guide/pkg/guidance"
	"github.com/visionmate/go-guide/pkg/haptics"
	"github.com/visionmate/go-guide/pkg/speech"
	"github.com/visionmate/go-guide/pkg/tts"
)

func main() {
	godotenv.Load()

	backend := flag.String("backend", "", "Backend websocket URL (overrides GUIDE_BACKEND_URL)")
	target := flag.String("target", "door", "What to guide toward, e.g. door, chair, exit")
	interval := flag.Duration("interval", 0, "Capture interval (default 400ms)")
	cooldown := flag.Duration("cooldown", 0, "Minimum gap between spoken instructions (default 1.5s)")
	camera := flag.Int("camera", 0, "Camera device index")
	frames := flag.String("frames", "", "Directory of JPEG frames to send instead of the camera")
	flag.Parse()

	log.Init(config.LogLevel())

	cfg := guidance.DefaultConfig()
	cfg.Endpoint = config.BackendURL(*backend)
	cfg.Logger = log.L()
	if *interval > 0 {
		cfg.CaptureInterval = *interval
	}
	if *cooldown > 0 {
		cfg.Cooldown = *cooldown
	}

	if err := run(cfg, *target, *camera, *frames); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg guidance.Config, target string, camera int, framesDir string) error {
	checkHealth(cfg.Endpoint)

	source, err := openSource(camera, framesDir)
	if err != nil {
		return err
	}
	defer source.Close()

	queue := speech.NewQueue(newSpeaker(), log.L())
	defer queue.Close()

	loop, err := guidance.NewLoop(cfg, source, queue, &haptics.ConsolePlayer{Logger: log.L()})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	disconnected := make(chan struct{})
	loop.OnDisconnect = func(err error) {
		log.Warn("backend disconnected", "error", err)
		close(disconnected)
	}

	if err := loop.Start(ctx, target); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	log.Info("session running", "target", target, "backend", cfg.Endpoint)

	select {
	case <-ctx.Done():
		loop.Stop()
	case <-disconnected:
	}
	return nil
}

// openSource picks the frame source: a directory of JPEGs when given,
// otherwise the webcam.
func openSource(camera int, framesDir string) (framesource.Source, error) {
	if framesDir != "" {
		return framesource.NewStaticFromDir(framesDir)
	}
	return framesource.OpenWebcam(framesource.WebcamOptions{DeviceID: camera})
}

// newSpeaker voices instructions through OpenAI TTS when a key is present,
// otherwise logs them.
func newSpeaker() speech.Speaker {
	key := config.OpenAIKey()
	if key == "" {
		log.Info("OPENAI_API_KEY not set, instructions will be logged instead of voiced")
		return speech.NewLogSpeaker(log.L())
	}

	provider, err := tts.NewOpenAI(tts.WithAPIKey(key), tts.WithLogger(log.L()))
	if err != nil {
		log.Warn("tts unavailable, falling back to log speaker", "error", err)
		return speech.NewLogSpeaker(log.L())
	}
	return speech.NewSynthSpeaker(provider, nil)
}

// checkHealth probes the backend's health endpoint. Failure is logged but
// not fatal; the websocket dial gives the authoritative answer.
func checkHealth(endpoint string) {
	url, err := config.HealthURL(endpoint)
	if err != nil {
		return
	}

	client := httpc.NewClient(3 * time.Second)
	resp, err := client.Get(url)
	if err != nil {
		log.Warn("backend health probe failed", "url", url, "error", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		log.Warn("backend reports unhealthy", "status", resp.StatusCode)
	}
}
