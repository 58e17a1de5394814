package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/example/drawing-game-demo/modules/api"
	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/example/drawing-game-demo/modules/game"
	"github.com/example/drawing-game-demo/modules/history"
	"github.com/example/drawing-game-demo/modules/wsserver"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Drawing Game Demo - Fiber + WebSocket + EventBus ===")

	port := getEnv("PORT", "3000")
	allowedOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")
	historyDBPath := getEnv("HISTORY_DB_PATH", "file::memory:?cache=shared")
	dbDebug := getEnv("DB_DEBUG", "false") == "true"
	wordSeed := getEnvInt64("WORD_SEED", time.Now().UnixNano())

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	broadcastModule := broadcast.NewModule(logger.WithModule("broadcast"))
	gameModule := game.NewModule(
		broadcastModule.GetHub(),
		rand.New(rand.NewSource(wordSeed)),
		logger.WithModule("game"),
	)
	historyModule := history.NewModule(historyDBPath, dbDebug, logger.WithModule("history"))
	apiModule := api.NewModule(port, allowedOrigins, logger.WithModule("api"))

	// The hub and the registry are shared in-process: live frames are too
	// frequent to go through the service container.
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetLiveHandlers(wsserver.NewHandlers(gameModule.Registry(), logger.WithModule("wsserver")))

	// Register modules with the framework.
	// - broadcast: live client hub (EventConsumerModule)
	// - game: rooms and turns (ServiceProviderModule + EventEmitterModule)
	// - history: round history (ServiceProviderModule + EventConsumerModule)
	// - api: Fiber HTTP/WebSocket server, depends on game and history
	app.Register(broadcastModule)
	app.Register(gameModule)
	app.Register(historyModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(port, historyDBPath)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 returns environment variable as int64 or default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func printStartupInfo(port, historyDBPath string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - Round history: SQLite (%s)", historyDBPath)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                      - Health check")
	log.Println("  POST   /api/v1/rooms                - Create a game room")
	log.Println("  GET    /api/v1/rooms                - List game rooms")
	log.Println("  GET    /api/v1/rooms/:id            - Get room state")
	log.Println("  POST   /api/v1/rooms/:id/join       - Check a username can join (?username=)")
	log.Println("  GET    /api/v1/rooms/:id/rounds     - Completed rounds (?limit=)")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws/rooms/:id?username=):", port)
	log.Println("  Methods: join, drawing (start|update|end|undo|redo), answer, ticker, timeout, disconnect")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
