package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/CristiGvl/picoCPUInfo/cpuinfo"
	"github.com/CristiGvl/picoCPUInfo/internal/platform"
)

// Server represents the API server
type Server struct {
	app     *fiber.App
	source  cpuinfo.Source
	options cpuinfo.Options
}

// NewServer creates a new API server. A nil source selects the one
// opts describes.
func NewServer(source cpuinfo.Source, opts cpuinfo.Options) (*Server, error) {
	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		return nil, err
	}
	if source == nil {
		source = cpuinfo.NewSource(opts)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ServerHeader:          "picoCPUInfo",
		AppName:               "picoCPUInfo v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,OPTIONS",
		AllowHeaders:  "*",
		ExposeHeaders: "Content-Length,Content-Type",
		MaxAge:        86400, // 24 hours
	}))

	server := &Server{
		app:     app,
		source:  source,
		options: opts,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/cpu", s.getCPU)
	api.Get("/cpu/cores", s.getCores)

	// Health check
	api.Get("/health", s.healthCheck)
}

// Start starts the API server
func (s *Server) Start(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"platform":  platform.GetOS(),
		"arch":      platform.GetArch(),
		"timestamp": time.Now().Unix(),
	})
}
