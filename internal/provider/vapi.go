package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

const defaultVapiBaseURL = "https://api.vapi.ai"

// vapiEventTypes maps Vapi webhook event names onto the normalized vocabulary.
// end-of-call-report is Vapi's richer post-call webhook; it also carries the
// recording URL and summary, so it folds into call_ended.
var vapiEventTypes = map[string]string{
	"call.started":       EventCallStarted,
	"call.ended":         EventCallEnded,
	"end-of-call-report": EventCallEnded,
	"transcript":         EventTranscript,
	"status-update":      EventStatusUpdate,
}

// VapiProvider implements VoiceProvider against the Vapi.ai API
type VapiProvider struct {
	apiKey        string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// NewVapiProvider creates a Vapi adapter from application configuration
func NewVapiProvider(cfg *config.AppConfig) *VapiProvider {
	baseURL := cfg.VapiBaseURL
	if baseURL == "" {
		baseURL = defaultVapiBaseURL
	}
	return &VapiProvider{
		apiKey:        cfg.VapiAPIKey,
		phoneNumberID: cfg.VapiPhoneNumberID,
		baseURL:       baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Name returns the provider tag used for adapter selection
func (p *VapiProvider) Name() string {
	return ProviderVapi
}

// buildAssistantConfig builds the inline assistant definition seeded from the
// call purpose
func (p *VapiProvider) buildAssistantConfig(purpose string) map[string]interface{} {
	return map[string]interface{}{
		"firstMessage": fmt.Sprintf("Hello, I'm calling regarding: %s. Is this a good time to speak?", purpose),
		"model": map[string]interface{}{
			"provider": "google",
			"model":    "gemini-2.0-flash",
			"messages": []map[string]interface{}{
				{
					"role":    "system",
					"content": fmt.Sprintf("You are a professional assistant making a business call. Your purpose: %s. Be polite, professional, and concise. If they're not interested, thank them and end the call gracefully.", purpose),
				},
			},
		},
		"voice": map[string]interface{}{
			"provider": "playht",
			"voiceId":  "jennifer",
		},
	}
}

// StartCall initiates an outbound phone call via Vapi.ai
func (p *VapiProvider) StartCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	payload := map[string]interface{}{
		"phoneNumberId": p.phoneNumberID,
		"customer": map[string]interface{}{
			"number": req.ToNumber,
		},
		"assistant": p.buildAssistantConfig(req.Purpose),
	}

	body, status, err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL+"/call/phone", p.apiKey, payload)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_call", Err: err}
	}
	if status >= 400 {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_call", StatusCode: status, Body: string(body)}
	}

	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_call", Err: err}
	}

	return &CallResponse{
		CallID:   data.ID,
		Status:   domain.CallStatusInitiated,
		Provider: ProviderVapi,
		Message:  "Call initiated successfully via Vapi.ai",
	}, nil
}

// StartWebCall creates a browser-based call session for testing without a
// phone number
func (p *VapiProvider) StartWebCall(ctx context.Context, purpose string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"assistant": p.buildAssistantConfig(purpose),
	}

	body, status, err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL+"/call/web", p.apiKey, payload)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_web_call", Err: err}
	}
	if status >= 400 {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_web_call", StatusCode: status, Body: string(body)}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "start_web_call", Err: err}
	}

	return map[string]interface{}{
		"call_id":      data["id"],
		"web_call_url": data["webCallUrl"],
		"status":       "created",
		"provider":     ProviderVapi,
		"message":      "Web call created. Use the Vapi Web SDK to connect.",
	}, nil
}

// GetCallStatus reads the current call state from Vapi.ai
func (p *VapiProvider) GetCallStatus(ctx context.Context, callID string) (map[string]interface{}, error) {
	body, status, err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/call/"+callID, p.apiKey, nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "get_call_status", Err: err}
	}
	if status >= 400 {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "get_call_status", StatusCode: status, Body: string(body)}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderVapi, Operation: "get_call_status", Err: err}
	}
	return data, nil
}

// EndCall terminates an active call. Best-effort: any failure reports false
// rather than propagating, the call record remains authoritative for "ended".
func (p *VapiProvider) EndCall(ctx context.Context, callID string) bool {
	_, status, err := doJSON(ctx, p.httpClient, http.MethodDelete, p.baseURL+"/call/"+callID, p.apiKey, nil)
	if err != nil {
		logger.Base().Warn("vapi end call failed", zap.String("call_id", callID), zap.Error(err))
		return false
	}
	return status == http.StatusOK
}

// NormalizeWebhook maps a raw Vapi webhook payload into a WebhookEvent.
//
// Vapi delivers two shapes: the payload either carries top-level keys or is
// wrapped in a "message" envelope. The envelope is unwrapped first, then the
// unwrapped payload is processed uniformly. Total: never fails, unknown event
// types pass through verbatim.
func (p *VapiProvider) NormalizeWebhook(raw map[string]interface{}) WebhookEvent {
	payload := unwrapVapiEnvelope(raw)

	eventType := stringField(payload, "type")
	if mapped, ok := vapiEventTypes[eventType]; ok {
		eventType = mapped
	}

	var callID string
	if callObj, ok := payload["call"].(map[string]interface{}); ok {
		callID = stringField(callObj, "id")
	}

	return WebhookEvent{
		Type:      eventType,
		CallID:    callID,
		Data:      payload,
		Timestamp: eventTimestamp(payload),
	}
}

// unwrapVapiEnvelope returns the inner payload when the webhook arrived
// wrapped in a "message" envelope, or the payload as-is when flat.
func unwrapVapiEnvelope(raw map[string]interface{}) map[string]interface{} {
	if raw == nil {
		return map[string]interface{}{}
	}
	if inner, ok := raw["message"].(map[string]interface{}); ok {
		return inner
	}
	return raw
}

// GetTranscript retrieves the call transcript, derived from call status
func (p *VapiProvider) GetTranscript(ctx context.Context, callID string) (map[string]interface{}, error) {
	callData, err := p.GetCallStatus(ctx, callID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"transcript": callData["transcript"],
		"messages":   callData["messages"],
		"format":     ProviderVapi,
	}, nil
}

// GetRecording returns the recording URL for a completed call, or "" when the
// recording is not yet available
func (p *VapiProvider) GetRecording(ctx context.Context, callID string) (string, error) {
	callData, err := p.GetCallStatus(ctx, callID)
	if err != nil {
		return "", err
	}
	return stringField(callData, "recordingUrl"), nil
}

var (
	_ VoiceProvider  = (*VapiProvider)(nil)
	_ WebCallStarter = (*VapiProvider)(nil)
)
