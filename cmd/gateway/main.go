package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/turfworks/turf-platform/internal/db"
	"github.com/turfworks/turf-platform/internal/gateway"
	"github.com/turfworks/turf-platform/internal/logging"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)
	log.Printf("Gateway starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// The gateway reads organizations and memberships for its fast-fail
	// authorization check; the turf service re-checks on its own.
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	sessions := gateway.NewSessionResolver(os.Getenv("JWT_SECRET"))
	proxy := gateway.NewProxy(getEnv("TURF_SERVICE_URL", "http://localhost:8001"), database, sessions, upstreamTimeout())

	router := setupRouter(proxy, database)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
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

func setupRouter(proxy *gateway.Proxy, database *db.Database) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.JSONLogger("gateway"))
	router.Use(gin.Recovery())

	// CORS restricted to the dashboard origin if provided
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}
	if origin := getEnv("DASHBOARD_ORIGIN", ""); origin != "" {
		corsCfg.AllowOrigins = []string{origin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	// Health endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/health", func(c *gin.Context) {
		if database != nil {
			if err := database.Health(c.Request.Context()); err != nil {
				c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Partner dashboard traffic, any method
	router.Any("/partners/:slug/turf/*rest", proxy.Handle)

	return router
}

// upstreamTimeout reads the gateway-to-backend timeout, clamped to the
// supported seconds-scale range.
func upstreamTimeout() time.Duration {
	seconds, err := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "30"))
	if err != nil || seconds < 5 || seconds > 30 {
		return gateway.DefaultUpstreamTimeout
	}
	return time.Duration(seconds) * time.Second
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
