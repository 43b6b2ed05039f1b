package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pong-leaderboard/config"
	"pong-leaderboard/database"
	"pong-leaderboard/handlers"
	"pong-leaderboard/services"
	"pong-leaderboard/utils"
	"pong-leaderboard/workers"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so every deferred close runs on failure.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache services.LeaderboardCache
	if cfg.CacheEnabled() {
		rdb, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = services.NewRedisLeaderboardCache(rdb, cfg.CacheTTL)
		log.Printf("✅ Leaderboard cache enabled (redis %s, ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	}

	gameService := services.NewGameService(db, cache)

	if cfg.ExportEnabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			return err
		}
		exporter := workers.NewLeaderboardExporter(gameService, r2, cfg.AppName)
		sched, err := workers.StartLeaderboardExport(ctx, exporter, cfg.ExportInterval)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Printf("[Export] Scheduler shutdown: %v", err)
			}
		}()
		log.Printf("✅ Leaderboard export every %s to bucket %s", cfg.ExportInterval, cfg.R2.Bucket)
	}

	app := handlers.NewApp(cfg, gameService)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %v", cfg.AllowedOrigins)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	return nil
}
