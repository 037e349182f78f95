package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
)

// fakeProcessor records received events and optionally fails
type fakeProcessor struct {
	events []provider.WebhookEvent
	err    error
}

func (f *fakeProcessor) ProcessEvent(ctx context.Context, event provider.WebhookEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func newWebhookRouter(processor EventProcessor, activeProvider string) *mux.Router {
	factory := provider.NewFactory(&config.AppConfig{ActiveVoiceProvider: activeProvider})
	router := mux.NewRouter()
	NewWebhookHandler(factory, processor).SetupWebhookRoutes(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	return rec.Code, decoded
}

func TestWebhook_ActiveProvider(t *testing.T) {
	processor := &fakeProcessor{}
	router := newWebhookRouter(processor, "vapi")

	code, body := postJSON(t, router, "/webhooks/voice",
		`{"message": {"type": "call.started", "call": {"id": "pc-1"}}}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "received", body["status"])
	require.Equal(t, provider.EventCallStarted, body["event_type"])

	require.Len(t, processor.events, 1)
	require.Equal(t, "pc-1", processor.events[0].CallID)
}

func TestWebhook_ProviderSpecificEndpoints(t *testing.T) {
	processor := &fakeProcessor{}
	// Retell webhooks must still resolve even while vapi is active
	router := newWebhookRouter(processor, "vapi")

	code, body := postJSON(t, router, "/webhooks/retell",
		`{"event": "call_ended", "call_id": "retell-1"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "received", body["status"])
	require.Equal(t, provider.EventCallEnded, body["event_type"])
	require.Equal(t, "retell-1", processor.events[0].CallID)

	code, body = postJSON(t, router, "/webhooks/vapi",
		`{"type": "transcript", "call": {"id": "vapi-1"}}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, provider.EventTranscript, body["event_type"])
	require.Equal(t, "vapi-1", processor.events[1].CallID)
}

func TestWebhook_MalformedBodyStillAcknowledged(t *testing.T) {
	processor := &fakeProcessor{}
	router := newWebhookRouter(processor, "vapi")

	code, body := postJSON(t, router, "/webhooks/voice", `not json at all`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "error", body["status"])
	require.Empty(t, processor.events)
}

func TestWebhook_ProcessingFailureStillAcknowledged(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database unavailable")}
	router := newWebhookRouter(processor, "vapi")

	code, body := postJSON(t, router, "/webhooks/voice",
		`{"type": "call.ended", "call": {"id": "pc-1"}}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "error", body["status"])
	require.Contains(t, body["detail"], "database unavailable")
}

func TestWebhook_MisconfiguredActiveProvider(t *testing.T) {
	processor := &fakeProcessor{}
	router := newWebhookRouter(processor, "nonexistent")

	code, body := postJSON(t, router, "/webhooks/voice", `{"type": "call.started"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "error", body["status"])
	require.Empty(t, processor.events)
}

func TestWebhook_UnknownEventTypePassedThrough(t *testing.T) {
	processor := &fakeProcessor{}
	router := newWebhookRouter(processor, "vapi")

	code, body := postJSON(t, router, "/webhooks/voice",
		`{"type": "speech-update", "call": {"id": "pc-1"}}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "received", body["status"])
	require.Equal(t, "speech-update", body["event_type"])
}
