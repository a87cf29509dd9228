package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/necfill/api/internal/config"
	"github.com/necfill/api/internal/handler"
	"github.com/necfill/api/internal/middleware"
	"github.com/necfill/api/internal/service"
	"github.com/necfill/api/internal/worker"
)

// @title          1099-NEC Batch Fill API
// @version        1.0
// @description    Fills 1099-NEC forms from an uploaded recipient workbook and packages them as a zip.
// @host           localhost:8000
// @BasePath       /
// @schemes        http https
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := os.Stat(cfg.Forms.TemplatePath); err != nil {
		log.Printf("Warning: form template not found at %s, jobs will fail until it exists", cfg.Forms.TemplatePath)
	}

	// Job registry and background worker
	jobService := service.NewJobService(time.Duration(cfg.Jobs.TTLMinutes) * time.Minute)
	generateWorker := worker.NewGenerateWorker(jobService, cfg.Forms.TemplatePath, cfg.Jobs.MaxConcurrent)

	// Handlers and middleware
	generateHandler := handler.NewGenerateHandler(jobService, generateWorker)
	templateHandler := handler.NewTemplateHandler(cfg.Forms.DefaultWorkbookPath)
	passwordAuth := middleware.NewPasswordAuth(cfg.Auth.Password)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Portal-Password",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		_, tplErr := os.Stat(cfg.Forms.TemplatePath)
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"template": tplErr == nil,
				"jobs":     jobService.Depth(),
			},
		})
	})

	// Default workbook download (no password; contains no recipient data)
	app.Get("/download-template", templateHandler.Download)

	// API routes
	api := app.Group("/api")
	gen := api.Group("/generate")
	gen.Post("/start", passwordAuth.Authenticate(), generateHandler.Start)
	gen.Get("/progress/:jobId", generateHandler.Progress)
	gen.Get("/download/:jobId", generateHandler.Download)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
