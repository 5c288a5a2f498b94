// guide-server runs a stand-in guidance backend with scripted frame
// analysis, for developing and testing clients without a vision model.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/visionmate/go-guide/internal/config"
	"github.com/visionmate/go-guide/internal/log"
	"github.com/visionmate/go-guide/pkg/guideserver"
)

func main() {
	godotenv.Load()

	addr := flag.String("addr", "", "Listen address (overrides GUIDE_SERVER_ADDR)")
	target := flag.String("target", "door", "Target the scripted analyzer pretends to see")
	flag.Parse()

	log.Init(config.LogLevel())

	cfg := guideserver.DefaultConfig()
	cfg.Addr = config.ServerAddr()
	cfg.Logger = log.L()
	if *addr != "" {
		cfg.Addr = *addr
	}

	analyzer := guideserver.NewScripted(guideserver.DefaultScript(*target)...)
	server, err := guideserver.NewServer(analyzer, cfg)
	if err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Listen(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
