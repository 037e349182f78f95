package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Supported provider names
const (
	ProviderVapi   = "vapi"
	ProviderRetell = "retell"
)

// Normalized webhook event kinds. Unrecognized provider event types pass
// through verbatim instead of mapping to one of these.
const (
	EventCallStarted  = "call_started"
	EventTranscript   = "transcript"
	EventCallEnded    = "call_ended"
	EventStatusUpdate = "status_update"
)

// requestTimeout bounds every outbound provider API call. Adapters never
// retry internally; retrying a call initiation may double-dial a customer,
// so that decision belongs to the orchestration layer.
const requestTimeout = 30 * time.Second

// CallRequest carries everything a provider needs to place an outbound call
type CallRequest struct {
	ToNumber string                 `json:"to_number"`
	Purpose  string                 `json:"purpose"`
	LeadID   string                 `json:"lead_id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CallResponse is the normalized result of a successful call initiation
type CallResponse struct {
	CallID   string `json:"call_id"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Message  string `json:"message,omitempty"`
}

// WebhookEvent is the normalized form of one inbound webhook delivery.
// Data always holds the full (unwrapped) provider payload so that fields the
// mapping does not know about survive for later processing and debugging.
// Timestamp keeps the provider's raw string form; consumers parse best-effort.
type WebhookEvent struct {
	Type      string                 `json:"event_type"`
	CallID    string                 `json:"call_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// VoiceProvider abstracts one third-party voice AI calling service.
//
// StartCall and GetCallStatus fail with *domain.ProviderError on non-2xx
// responses. EndCall is best-effort and reports any failure as false; the
// caller's own state store stays authoritative for "ended". NormalizeWebhook
// is a total function: it returns a best-effort event for any payload shape
// and never fails, so the webhook endpoint stays available for provider
// retries and unknown future event types.
type VoiceProvider interface {
	Name() string
	StartCall(ctx context.Context, req CallRequest) (*CallResponse, error)
	GetCallStatus(ctx context.Context, callID string) (map[string]interface{}, error)
	EndCall(ctx context.Context, callID string) bool
	NormalizeWebhook(raw map[string]interface{}) WebhookEvent
	GetTranscript(ctx context.Context, callID string) (map[string]interface{}, error)
	GetRecording(ctx context.Context, callID string) (string, error)
}

// WebCallStarter is the optional capability of creating a browser-based call
// session without dialing a phone number. Callers type-assert for it; only
// Vapi supports web sessions today.
type WebCallStarter interface {
	StartWebCall(ctx context.Context, purpose string) (map[string]interface{}, error)
}

// doJSON issues a JSON-over-HTTPS request with bearer auth and returns the
// response body and status code. A nil error with a non-2xx status is the
// caller's signal to build a ProviderError from the raw body.
func doJSON(ctx context.Context, client *http.Client, method, url, apiKey string, payload interface{}) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// stringField reads a string value from a decoded JSON object, returning ""
// when the key is absent or not a string.
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// eventTimestamp returns the payload's timestamp field, defaulting to the
// current time in RFC 3339 when the provider did not send one.
func eventTimestamp(payload map[string]interface{}) string {
	if ts := stringField(payload, "timestamp"); ts != "" {
		return ts
	}
	return time.Now().UTC().Format(time.RFC3339)
}
