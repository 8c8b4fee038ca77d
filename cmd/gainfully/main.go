package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gainfully/internal/api"
	"gainfully/internal/auth"
	"gainfully/internal/cache"
	"gainfully/internal/config"
	"gainfully/internal/database"
	"gainfully/internal/feed"
	"gainfully/internal/server"
)

var (
	// Version will be set during build
	Version = "dev"

	// Command line flags
	port      = flag.Int("port", 0, "Port to run the server on (default: 8090 or GAINFULLY_PORT)")
	dbPath    = flag.String("db", "", "Path to database file (default: data/gainfully.db or GAINFULLY_DB_PATH)")
	apiURL    = flag.String("api", "", "Base URL of the backend API (default: http://localhost:8080 or GAINFULLY_API_URL)")
	redisAddr = flag.String("redis", "", "Redis address for the entity cache (default: disabled or GAINFULLY_REDIS_ADDR)")
	siteURL   = flag.String("site-url", "", "External base URL used in RSS links")
	version   = flag.Bool("version", false, "Print version information")
	prodMode  = flag.Bool("prod", false, "Enable production mode (HTTPS-only features including strict CSRF)")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Gainfully version %s\n", Version)
		return
	}

	logger := log.New(os.Stdout, "gainfully: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Override with command line flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	cfg.ProductionMode = *prodMode

	logger.Printf("Starting Gainfully v%s", Version)
	logger.Printf("Port: %d", cfg.Port)
	logger.Printf("Database: %s", cfg.DBPath)
	logger.Printf("Backend API: %s", cfg.APIBaseURL)
	logger.Printf("Mode: %s", map[bool]string{true: "production", false: "development"}[cfg.ProductionMode])

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := api.NewClient(cfg.APIBaseURL, logger)

	backend := feed.Backend(apiClient)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		backend = cache.Wrap(backend, rdb, cfg.CacheTTL, logger)
		logger.Printf("Entity cache: redis at %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	}

	sessionTTL := 24 * time.Hour
	if hours, err := db.GetSettingInt(ctx, "session_hours"); err == nil && hours > 0 {
		sessionTTL = time.Duration(hours) * time.Hour
	}
	authService := auth.NewService(db.DB, sessionTTL)

	// The refresh interval can come from the settings table unless the
	// environment pins it.
	refresh := cfg.RefreshInterval
	if os.Getenv("GAINFULLY_REFRESH_INTERVAL") == "" {
		if secs, err := db.GetSettingInt(ctx, "refresh_interval"); err == nil && secs > 0 {
			refresh = time.Duration(secs) * time.Second
		}
	}

	// Warm snapshot for signed-out visitors, refreshed on a schedule.
	loader := feed.NewLoader(backend, logger)
	feedService := feed.NewService(loader, logger, refresh)
	feedService.AddMaintenance("session cleanup", authService.CleanExpiredSessions)
	if err := feedService.Start(); err != nil {
		logger.Fatalf("Failed to start feed service: %v", err)
	}
	defer feedService.Stop()

	srv, err := server.NewServer(db, logger, apiClient, backend, feedService, authService, server.Config{
		UseHTTPS: cfg.ProductionMode,
		SiteURL:  *siteURL,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize server: %v", err)
	}

	if err := srv.Start(ctx, cfg.GetAddress()); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
