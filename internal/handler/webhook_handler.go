package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// EventProcessor consumes normalized webhook events
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event provider.WebhookEvent) error
}

// WebhookHandler receives provider webhook deliveries, normalizes them and
// feeds them to the reconciliation engine.
//
// Every delivery is acknowledged with 200 regardless of processing outcome.
// Providers retry on non-2xx, and a redelivered event that failed on our side
// would fail the same way again; failures surface in the response body and
// the logs instead.
type WebhookHandler struct {
	providers *provider.Factory
	processor EventProcessor
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(providers *provider.Factory, processor EventProcessor) *WebhookHandler {
	return &WebhookHandler{providers: providers, processor: processor}
}

// SetupWebhookRoutes registers the webhook ingress routes
func (h *WebhookHandler) SetupWebhookRoutes(router *mux.Router) {
	router.HandleFunc("/webhooks/voice", h.HandleActiveProvider).Methods("POST")
	router.HandleFunc("/webhooks/vapi", h.providerEndpoint(provider.ProviderVapi)).Methods("POST")
	router.HandleFunc("/webhooks/retell", h.providerEndpoint(provider.ProviderRetell)).Methods("POST")
}

// HandleActiveProvider processes a delivery using the active provider's
// webhook dialect
func (h *WebhookHandler) HandleActiveProvider(w http.ResponseWriter, r *http.Request) {
	voice, err := h.providers.Active()
	if err != nil {
		h.ackError(w, "", err)
		return
	}
	h.handle(w, r, voice)
}

// providerEndpoint builds a handler bound to one provider's webhook dialect,
// regardless of which provider is active for outbound calls
func (h *WebhookHandler) providerEndpoint(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voice, err := h.providers.ByName(name)
		if err != nil {
			h.ackError(w, "", err)
			return
		}
		h.handle(w, r, voice)
	}
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, voice provider.VoiceProvider) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		logger.Base().Warn("webhook body is not a JSON object",
			zap.String("provider", voice.Name()),
			zap.Error(err),
		)
		h.ackError(w, "", err)
		return
	}

	event := voice.NormalizeWebhook(raw)

	logger.Base().Info("webhook event received",
		zap.String("provider", voice.Name()),
		zap.String("event_type", event.Type),
		zap.String("call_id", event.CallID),
	)

	if err := h.processor.ProcessEvent(r.Context(), event); err != nil {
		logger.Base().Error("webhook event processing failed",
			zap.String("provider", voice.Name()),
			zap.String("event_type", event.Type),
			zap.String("call_id", event.CallID),
			zap.Error(err),
		)
		h.ackError(w, event.Type, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "received",
		"event_type": event.Type,
	})
}

// ackError acknowledges the delivery with 200 while reporting the failure in
// the body
func (h *WebhookHandler) ackError(w http.ResponseWriter, eventType string, err error) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "error",
		"event_type": eventType,
		"detail":     err.Error(),
	})
}
