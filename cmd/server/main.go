package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamcal-backend/internal/config"
	"teamcal-backend/internal/database"
	"teamcal-backend/internal/handlers"
	"teamcal-backend/internal/lock"
	"teamcal-backend/internal/middleware"
	"teamcal-backend/internal/repository"
	"teamcal-backend/internal/router"
	"teamcal-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting TeamCal Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	activityRepo := repository.NewActivityRepo(pool)
	settingsRepo := repository.NewSettingsRepo(pool)

	// ──── Initialize Services ────
	syncLock := lock.NewRedisLock(redisClient)
	newAPI := func(token string) services.ActivityAPI {
		return services.NewD4HClient(cfg.D4HBaseURL, token, cfg.D4HPageSize)
	}
	syncService := services.NewSyncService(settingsRepo, activityRepo, syncLock, newAPI, cfg.LockTTL)
	calendarService := services.NewCalendarService(activityRepo, cfg.CalendarRangeDays, cfg.EventColor, cfg.ExerciseColor)
	adminAuth := middleware.NewAdminAuth(cfg.AdminJWTSecret)

	// ──── Initialize Handlers ────
	activitiesHandler := handlers.NewActivitiesHandler(calendarService)
	adminHandler := handlers.NewAdminHandler(settingsRepo, activityRepo, syncService, cfg.RetentionDays, cfg.EnablePurge)

	// ──── Step 5: Start Sync Scheduler ────
	scheduler := services.NewSyncScheduler(syncService, settingsRepo, cfg.SyncEnabled, cfg.SyncInterval)
	scheduler.Start()

	// ──── Step 6: Start HTTP Server ────
	r := router.New(adminAuth, activitiesHandler, adminHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ TeamCal Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
