// Package guideserver is a stand-in guidance backend: it serves the same
// websocket protocol as the production vision service, with frame analysis
// delegated to a pluggable Analyzer. Useful for client development and load
// testing without GPU inference.
package guideserver

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Server serves the guidance websocket endpoint plus health routes.
type Server struct {
	app      *fiber.App
	cfg      Config
	analyzer Analyzer
	logger   *slog.Logger
}

// NewServer creates a server around the given analyzer.
func NewServer(analyzer Analyzer, cfg Config) (*Server, error) {
	if analyzer == nil {
		return nil, ErrNoAnalyzer
	}

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   cfg.logger().With("component", "guideserver"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Guide Server",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/guide", websocket.New(s.handleGuide))

	s.app = app
	return s, nil
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Guide server is running",
		"status":  "healthy",
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"analyzer": s.analyzer.Name(),
	})
}

// handleGuide runs one guidance session over one websocket connection.
func (s *Server) handleGuide(conn *websocket.Conn) {
	sess := newSession(s.analyzer, s.cfg)
	logger := s.logger.With("session", sess.id.String())
	logger.Info("session opened")
	defer logger.Info("session closed")

	if s.cfg.MaxFrameBytes > 0 {
		conn.SetReadLimit(int64(s.cfg.MaxFrameBytes))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		reply := sess.handleFrame(data)
		if e, ok := reply.(errorReply); ok {
			logger.Debug("frame rejected", "error", e.Error)
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("write failed", "error", err)
			return
		}
	}
}
