package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"tryon-service/config"
	"tryon-service/pkg/auth"
	"tryon-service/pkg/metrics"
	"tryon-service/pkg/middleware"
	"tryon-service/pkg/repository"
	"tryon-service/pkg/storage"
	"tryon-service/routes"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
	logOutputFlags   = log.LstdFlags | log.Lshortfile
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connection established")

	store, err := storage.NewStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	log.Println("Storage client initialized")

	deps := &routes.Dependencies{
		Config:   cfg,
		Storage:  store,
		Profiles: repository.NewProfileRepository(db),
		Wardrobe: repository.NewWardrobeRepository(db),
		Verifier: auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, 0),
		Metrics:  metrics.New(),
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	routes.RegisterRoutes(e, deps)

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := e.Start(serverAddrPrefix + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
