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

const defaultRetellBaseURL = "https://api.retellai.com"

// retellEventTypes maps Retell webhook event names onto the normalized
// vocabulary. call_analyzed is Retell's post-analysis event and folds into
// call_ended.
var retellEventTypes = map[string]string{
	"call_started":  EventCallStarted,
	"call_ended":    EventCallEnded,
	"call_analyzed": EventCallEnded,
	"transcript":    EventTranscript,
}

// RetellProvider implements VoiceProvider against the Retell AI API
type RetellProvider struct {
	apiKey     string
	agentID    string
	baseURL    string
	httpClient *http.Client
}

// NewRetellProvider creates a Retell adapter from application configuration
func NewRetellProvider(cfg *config.AppConfig) *RetellProvider {
	baseURL := cfg.RetellBaseURL
	if baseURL == "" {
		baseURL = defaultRetellBaseURL
	}
	return &RetellProvider{
		apiKey:  cfg.RetellAPIKey,
		agentID: cfg.RetellAgentID,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Name returns the provider tag used for adapter selection
func (p *RetellProvider) Name() string {
	return ProviderRetell
}

// StartCall initiates an outbound call via Retell AI
func (p *RetellProvider) StartCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	payload := map[string]interface{}{
		"agent_id":  p.agentID,
		"to_number": req.ToNumber,
		"override_agent_prompt": fmt.Sprintf(
			"You are a professional sales assistant making a cold call. Your purpose for this call is: %s. Be polite, professional, and concise.",
			req.Purpose),
		"metadata": map[string]interface{}{
			"lead_id": req.LeadID,
			"purpose": req.Purpose,
		},
	}

	body, status, err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL+"/create-web-call", p.apiKey, payload)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "start_call", Err: err}
	}
	if status >= 400 {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "start_call", StatusCode: status, Body: string(body)}
	}

	var data struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "start_call", Err: err}
	}

	return &CallResponse{
		CallID:   data.CallID,
		Status:   domain.CallStatusInitiated,
		Provider: ProviderRetell,
		Message:  "Call initiated successfully via Retell AI",
	}, nil
}

// GetCallStatus reads the current call state from Retell AI
func (p *RetellProvider) GetCallStatus(ctx context.Context, callID string) (map[string]interface{}, error) {
	body, status, err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/get-call/"+callID, p.apiKey, nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "get_call_status", Err: err}
	}
	if status >= 400 {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "get_call_status", StatusCode: status, Body: string(body)}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderRetell, Operation: "get_call_status", Err: err}
	}
	return data, nil
}

// EndCall terminates an active call, reporting any failure as false
func (p *RetellProvider) EndCall(ctx context.Context, callID string) bool {
	_, status, err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL+"/end-call/"+callID, p.apiKey, nil)
	if err != nil {
		logger.Base().Warn("retell end call failed", zap.String("call_id", callID), zap.Error(err))
		return false
	}
	return status == http.StatusOK
}

// NormalizeWebhook maps a raw Retell webhook payload into a WebhookEvent.
// Retell payloads are always flat: event name in "event", call id at top
// level. Total: never fails, unknown event types pass through verbatim.
func (p *RetellProvider) NormalizeWebhook(raw map[string]interface{}) WebhookEvent {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	eventType := stringField(raw, "event")
	if mapped, ok := retellEventTypes[eventType]; ok {
		eventType = mapped
	}

	return WebhookEvent{
		Type:      eventType,
		CallID:    stringField(raw, "call_id"),
		Data:      raw,
		Timestamp: eventTimestamp(raw),
	}
}

// GetTranscript retrieves the call transcript, derived from call status
func (p *RetellProvider) GetTranscript(ctx context.Context, callID string) (map[string]interface{}, error) {
	callData, err := p.GetCallStatus(ctx, callID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"transcript":        callData["transcript"],
		"transcript_object": callData["transcript_object"],
		"format":            ProviderRetell,
	}, nil
}

// GetRecording returns the recording URL for a completed call, or "" when the
// recording is not yet available
func (p *RetellProvider) GetRecording(ctx context.Context, callID string) (string, error) {
	callData, err := p.GetCallStatus(ctx, callID)
	if err != nil {
		return "", err
	}
	return stringField(callData, "recording_url"), nil
}

var _ VoiceProvider = (*RetellProvider)(nil)
