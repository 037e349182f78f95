package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/handler"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// Server represents the AI calling agent server
type Server struct {
	config         *config.AppConfig
	router         *mux.Router
	handlerManager *handler.HandlerManager
}

// NewServer creates a new calling agent server
func NewServer(cfg *config.AppConfig) *Server {
	// Initialize zap logger and redirect stdlib log to it
	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		logger.Base().Error("Failed to initialize zap logger, falling back to std log")
	}

	// Create router
	router := mux.NewRouter()

	// Initialize handler manager - it will create all services internally
	handlerManager, err := handler.NewHandlerManager(cfg)
	if err != nil {
		logger.Base().Error("Failed to initialize handler manager", zap.Error(err))
		return nil
	}

	// Setup all routes through handler manager
	handlerManager.SetupAllRoutes(router)

	return &Server{
		config:         cfg,
		router:         router,
		handlerManager: handlerManager,
	}
}

// Start starts the calling agent server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Base().Info("Starting server", zap.String("addr", addr))
	return server.ListenAndServe()
}

// LoadConfigFromEnv loads the calling agent configuration from environment
func LoadConfigFromEnv() *config.AppConfig {
	return &config.AppConfig{
		Port: getEnvOrDefault("PORT", "8000"),

		// Voice provider configuration. Base URLs stay empty unless
		// overridden so each adapter's own default governs.
		ActiveVoiceProvider: getEnvOrDefault("VOICE_PROVIDER", "vapi"),
		VapiAPIKey:          getEnvOrDefault("VAPI_API_KEY", ""),
		VapiPhoneNumberID:   getEnvOrDefault("VAPI_PHONE_NUMBER_ID", ""),
		VapiBaseURL:         getEnvOrDefault("VAPI_BASE_URL", ""),
		RetellAPIKey:        getEnvOrDefault("RETELL_API_KEY", ""),
		RetellAgentID:       getEnvOrDefault("RETELL_AGENT_ID", ""),
		RetellBaseURL:       getEnvOrDefault("RETELL_BASE_URL", ""),

		// Google Places search
		GoogleMapsAPIKey: getEnvOrDefault("GOOGLE_MAPS_API_KEY", ""),
		PlacesBaseURL:    getEnvOrDefault("PLACES_BASE_URL", ""),

		// Redis (optional, provider status cache)
		RedisHost:     getEnvOrDefault("REDIS_HOST", ""),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		EnableCORS: getEnvAsBoolOrDefault("ENABLE_CORS", true),

		// Instance identifier for multi-pod monitoring
		InstanceID: getDynamicInstanceID(),
	}
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDynamicInstanceID generates a unique identifier for this service instance.
// It first tries to use the system hostname (pod name in K8s),
// then falls back to a timestamp-based ID.
func getDynamicInstanceID() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return fmt.Sprintf("calling-agent-%d", time.Now().UnixNano())
}

func main() {
	// 0. Load .env file for local development if it exists
	// This will not override environment variables set by Helm/Docker
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: .env file not found or skipped (expected in production): %v", err)
	}

	// 1. Load configuration from environment
	cfg := LoadConfigFromEnv()
	fmt.Printf("🚀 Starting AI Calling Agent (Instance: %s)\n", cfg.InstanceID)

	// 2. Create the server
	server := NewServer(cfg)
	if server == nil {
		log.Fatal("❌ Failed to create server")
	}
	logger.Base().Info("✅ Server initialized successfully",
		zap.String("port", cfg.Port),
		zap.String("instance_id", cfg.InstanceID),
		zap.String("voice_provider", cfg.ActiveVoiceProvider))

	// 3. Start the server
	if err := server.Start(); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
