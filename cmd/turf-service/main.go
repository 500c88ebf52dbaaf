package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/turfworks/turf-platform/internal/api"
	"github.com/turfworks/turf-platform/internal/db"
	"github.com/turfworks/turf-platform/internal/logging"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)
	log.Printf("Turf Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	handler := api.NewHandler(database)
	router := setupRouter(handler, database)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler, database *db.Database) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.JSONLogger("turf-service"))
	router.Use(gin.Recovery())

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	apiGroup := router.Group("/api")
	{
		// Rebuild the typed identity context from gateway headers once
		// per request.
		apiGroup.Use(api.IdentityMiddleware())

		// Identity echo (no authorization gate)
		apiGroup.GET("/", handler.Identity)

		// Everything else re-verifies org-admin membership against the
		// store, regardless of what the gateway already checked.
		scoped := apiGroup.Group("")
		scoped.Use(api.AuthorizeMiddleware(database))
		{
			scoped.GET("/edit", handler.ListTurfs)
			scoped.POST("/edit", handler.CreateTurf)
			scoped.PUT("/edit", handler.UpdateTurf)
			scoped.DELETE("/edit", handler.DeleteTurf)

			scoped.GET("/demographics", handler.Demographics)
			scoped.POST("/demographics", handler.Demographics)

			scoped.GET("/suggestions/:record_id", handler.Suggestions)
		}
	}

	return router
}
