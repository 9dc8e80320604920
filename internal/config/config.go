package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Admin API auth
	AdminJWTSecret string

	// D4H API
	D4HBaseURL  string
	D4HPageSize int

	// Sync
	SyncEnabled  bool
	SyncInterval time.Duration
	LockTTL      time.Duration

	// Data
	RetentionDays     int
	CalendarRangeDays int
	EnablePurge       bool

	// Calendar colors
	EventColor    string
	ExerciseColor string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		RedisURL:          mustGetEnv("REDIS_URL"),
		AdminJWTSecret:    mustGetEnv("ADMIN_JWT_SECRET"),
		D4HBaseURL:        getEnvOrDefault("D4H_BASE_URL", "https://api.team-manager.us.d4h.com"),
		D4HPageSize:       getEnvAsIntOrDefault("D4H_PAGE_SIZE", 100),
		SyncEnabled:       getEnvAsBoolOrDefault("SYNC_ENABLED", true),
		SyncInterval:      time.Duration(getEnvAsIntOrDefault("SYNC_INTERVAL_SEC", 7200)) * time.Second,
		LockTTL:           time.Duration(getEnvAsIntOrDefault("SYNC_LOCK_TTL_SEC", 900)) * time.Second,
		RetentionDays:     getEnvAsIntOrDefault("RETENTION_DAYS", 90),
		CalendarRangeDays: getEnvAsIntOrDefault("CALENDAR_RANGE_DAYS", 90),
		EnablePurge:       getEnvAsBoolOrDefault("ENABLE_PURGE", true),
		EventColor:        getEnvOrDefault("CALENDAR_EVENT_COLOR", "#3788d8"),
		ExerciseColor:     getEnvOrDefault("CALENDAR_EXERCISE_COLOR", "#6c757d"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
