package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/cache"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/call"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/lead"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/search"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/webhook"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"github.com/vasudevan-kross/calling-agent-app/pkg/redis"
	"go.uber.org/zap"
)

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	config      *config.AppConfig
	repoManager repository.RepositoryManager
	providers   *provider.Factory

	leadService    *lead.Service
	callService    *call.Service
	webhookService *webhook.Service
	searchService  *search.Service
}

// NewHandlerManager creates and initializes all handlers and services
func NewHandlerManager(cfg *config.AppConfig) (*HandlerManager, error) {
	// Initialize database connection
	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Redis is optional; without it live status lookups skip the cache and
	// hit the provider every time
	var statusCache *cache.ProviderStatusCache
	if cfg.RedisHost != "" {
		redisSvc, err := redis.NewRedisService(&redis.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err != nil {
			logger.Base().Warn("failed to initialize redis, running without status cache", zap.Error(err))
		} else {
			statusCache = cache.NewProviderStatusCache(redisSvc)
			logger.Base().Info("provider status cache initialized")
		}
	}

	providers := provider.NewFactory(cfg)

	leadService := lead.NewService(repoManager.Lead())
	callService := call.NewService(repoManager.Lead(), repoManager.Call(), providers, statusCache)
	webhookService := webhook.NewService(repoManager.Call())
	searchService := search.NewService(cfg)

	logger.Base().Info("services initialized",
		zap.String("active_provider", providers.ActiveName()),
	)

	return &HandlerManager{
		config:         cfg,
		repoManager:    repoManager,
		providers:      providers,
		leadService:    leadService,
		callService:    callService,
		webhookService: webhookService,
		searchService:  searchService,
	}, nil
}

// SetupAllRoutes sets up all routes with middleware
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	// Apply global middleware
	if hm.config.EnableCORS {
		router.Use(CORSMiddleware)
	}
	router.Use(GlobalLoggingMiddleware)

	hm.SetupAPIRoutes(router)
	hm.SetupWebhookRoutes(router)
	hm.SetupHealthRoutes(router)

	logger.Base().Info("all application routes registered")
}

// SetupAPIRoutes sets up all CRUD API routes and middleware
func (hm *HandlerManager) SetupAPIRoutes(router *mux.Router) {
	// Create API subrouter with middleware
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(LoggingMiddleware)
	apiRouter.Use(ValidationMiddleware)

	// Create handlers and setup routes (not stored in struct)
	leadHandler := NewLeadHandler(hm.leadService)
	leadHandler.SetupLeadRoutes(apiRouter)

	callHandler := NewCallHandler(hm.callService)
	callHandler.SetupCallRoutes(apiRouter)

	searchHandler := NewSearchHandler(hm.searchService)
	searchHandler.SetupSearchRoutes(apiRouter)

	importHandler := NewImportHandler(hm.leadService)
	importHandler.SetupImportRoutes(apiRouter)

	agentHandler := NewAgentHandler(hm.repoManager.Agent())
	agentHandler.SetupAgentRoutes(apiRouter)

	// Setup CORS preflight handling for all API routes
	router.PathPrefix("/api/").HandlerFunc(handleCORS).Methods("OPTIONS")

	logger.Base().Info("crud api routes registered")
}

// SetupWebhookRoutes sets up provider webhook ingress routes
func (hm *HandlerManager) SetupWebhookRoutes(router *mux.Router) {
	webhookHandler := NewWebhookHandler(hm.providers, hm.webhookService)
	webhookHandler.SetupWebhookRoutes(router)

	logger.Base().Info("webhook routes registered")
}

// SetupHealthRoutes sets up root and health status endpoints
func (hm *HandlerManager) SetupHealthRoutes(router *mux.Router) {
	router.HandleFunc("/", hm.handleRoot).Methods("GET")
	router.HandleFunc("/health", hm.handleHealth).Methods("GET")
}

func (hm *HandlerManager) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "AI Calling Agent API",
		"status":         "running",
		"voice_provider": hm.providers.ActiveName(),
	})
}

func (hm *HandlerManager) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := hm.repoManager.Ping(r.Context()); err != nil {
		dbStatus = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "healthy",
		"database":       dbStatus,
		"voice_provider": hm.providers.ActiveName(),
	})
}

// GetRepoManager returns the repository manager
func (hm *HandlerManager) GetRepoManager() repository.RepositoryManager {
	return hm.repoManager
}

// GetCallService returns the call orchestration service
func (hm *HandlerManager) GetCallService() *call.Service {
	return hm.callService
}
