package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"trivia-arena/internal/api"
	"trivia-arena/internal/config"
	"trivia-arena/internal/game"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  TRIVIA ARENA - MATCH SERVER")
	log.Println("🎮 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server

	port := strconv.Itoa(serverCfg.Port)

	log.Printf("🎮 Config: %d Hz tick, broadcast every %d ticks, world %dx%d",
		appConfig.Tick.Rate, appConfig.Tick.BroadcastDivisor,
		int(appConfig.World.Width), int(appConfig.World.Height))
	log.Printf("🛡️ Anti-cheat: enabled=%v warn=%d kick=%d",
		appConfig.AntiCheat.Enabled, appConfig.AntiCheat.WarnThreshold, appConfig.AntiCheat.KickThreshold)

	// Journal output directory
	journalDir := getEnvWithDefault("JOURNAL_DIR", "journals")
	if journalDir != "" {
		if err := os.MkdirAll(journalDir, 0755); err != nil {
			log.Printf("⚠️ Journal dir unavailable, journaling to memory only: %v", err)
			journalDir = ""
		} else {
			log.Printf("📝 Match journals: %s/", journalDir)
		}
	}

	// Match registry
	registry := game.NewRegistry(&appConfig)
	log.Printf("✅ Match registry ready (limit %d matches)", serverCfg.MaxMatches)

	// Start debug server
	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	// API server
	server := api.NewServer(registry, journalDir)

	go func() {
		addr := ":" + port
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	log.Println("👋 Goodbye!")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
