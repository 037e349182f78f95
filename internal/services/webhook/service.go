package webhook

import (
	"context"
	"strconv"
	"time"

	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// Service is the call reconciliation engine: it consumes normalized webhook
// events and merges them into the persisted call record keyed by provider
// call id.
//
// Deliveries are at-least-once and may arrive out of order. Events for an
// unknown call id are dropped silently; a webhook can race the record's
// creation, or arrive for a call that has since been deleted. Persistence
// failures propagate to the webhook handler, which still acknowledges the
// delivery.
type Service struct {
	calls repository.CallRepository
}

// NewService creates a new reconciliation service
func NewService(calls repository.CallRepository) *Service {
	return &Service{calls: calls}
}

// ProcessEvent applies one normalized event to the matching call record
func (s *Service) ProcessEvent(ctx context.Context, event provider.WebhookEvent) error {
	if event.CallID == "" {
		logger.Base().Debug("webhook event without call id dropped", zap.String("event_type", event.Type))
		return nil
	}

	switch event.Type {
	case provider.EventCallStarted:
		return s.handleCallStarted(ctx, event)
	case provider.EventTranscript:
		return s.handleTranscript(ctx, event)
	case provider.EventCallEnded:
		return s.handleCallEnded(ctx, event)
	case provider.EventStatusUpdate:
		return s.handleStatusUpdate(ctx, event)
	default:
		logger.Base().Debug("unhandled webhook event type",
			zap.String("event_type", event.Type),
			zap.String("provider_call_id", event.CallID),
		)
		return nil
	}
}

// handleCallStarted moves the call into in_progress. The update skips records
// already completed so a replayed start event never regresses a finished call.
func (s *Service) handleCallStarted(ctx context.Context, event provider.WebhookEvent) error {
	updates := map[string]interface{}{
		"status": domain.CallStatusInProgress,
	}
	if ts, ok := parseEventTime(event.Timestamp); ok {
		updates["start_time"] = ts
	}

	rows, err := s.calls.UpdateByProviderCallIDWhereStatusNot(ctx, event.CallID, domain.CallStatusCompleted, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.Base().Debug("call_started for unknown or completed call", zap.String("provider_call_id", event.CallID))
	}
	return nil
}

// handleTranscript appends one entry to the call's transcript. The transcript
// is append-only and not deduplicated: a replayed delivery appends again.
// A null or malformed stored transcript is treated as empty.
//
// Concurrent transcript events for the same call perform independent
// read-modify-write cycles; under a race the last write wins and an
// interleaved append can be lost. Matching the reference behavior, updates
// are deliberately not serialized per call id.
func (s *Service) handleTranscript(ctx context.Context, event provider.WebhookEvent) error {
	record, err := s.calls.GetByProviderCallID(ctx, event.CallID)
	if err != nil {
		return err
	}
	if record == nil {
		logger.Base().Debug("transcript for unknown call", zap.String("provider_call_id", event.CallID))
		return nil
	}

	transcript := record.Transcript
	if transcript == nil {
		transcript = domain.JSONBArray{}
	}
	transcript = append(transcript, map[string]interface{}{
		"timestamp": event.Timestamp,
		"data":      event.Data,
	})

	_, err = s.calls.UpdateByProviderCallID(ctx, event.CallID, map[string]interface{}{
		"transcript": transcript,
	})
	return err
}

// handleCallEnded finalizes a call from an ended or end-of-call-report event.
//
// The payload nests most useful fields under a "call" sub-object; each field
// prefers the sub-object and falls back to top-level legacy names. The
// recording URL enters the update only when a non-empty value was found: an
// early ended event can fire before the recording is ready, and the later
// richer report fills it in. An absent URL must never erase a stored one.
func (s *Service) handleCallEnded(ctx context.Context, event provider.WebhookEvent) error {
	callObj, _ := event.Data["call"].(map[string]interface{})

	endTime := firstParseableTime(
		stringField(callObj, "endedAt"),
		stringField(event.Data, "end_time"),
		event.Timestamp,
	)

	duration := numberField(callObj, "duration")
	if duration == 0 {
		duration = numberField(event.Data, "duration")
	}

	recordingURL := firstNonEmpty(
		stringField(callObj, "recordingUrl"),
		stringField(callObj, "recording_url"),
		stringField(event.Data, "recordingUrl"),
		stringField(event.Data, "recording_url"),
	)

	summary := firstNonEmpty(
		stringField(event.Data, "summary"),
		stringField(callObj, "summary"),
	)

	updates := map[string]interface{}{
		"status":           domain.CallStatusCompleted,
		"end_time":         endTime,
		"duration_seconds": duration,
		"summary":          summary,
	}
	if recordingURL != "" {
		updates["recording_url"] = recordingURL
	}

	rows, err := s.calls.UpdateByProviderCallID(ctx, event.CallID, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.Base().Debug("call_ended for unknown call", zap.String("provider_call_id", event.CallID))
		return nil
	}

	logger.Base().Info("call completed",
		zap.String("provider_call_id", event.CallID),
		zap.Int("duration_seconds", duration),
		zap.Bool("has_recording", recordingURL != ""),
	)
	return nil
}

// handleStatusUpdate copies the provider-reported status string onto the
// record. Like call_started, it never overwrites a completed call.
func (s *Service) handleStatusUpdate(ctx context.Context, event provider.WebhookEvent) error {
	status := stringField(event.Data, "status")
	if status == "" {
		status = "unknown"
	}

	_, err := s.calls.UpdateByProviderCallIDWhereStatusNot(ctx, event.CallID, domain.CallStatusCompleted, map[string]interface{}{
		"status": status,
	})
	return err
}

// stringField reads a string value from a decoded JSON object
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// numberField reads a numeric value from a decoded JSON object, tolerating
// the shapes providers actually send: JSON numbers decode to float64, some
// providers quote them as strings.
func numberField(m map[string]interface{}, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// firstNonEmpty returns the first non-empty string
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// eventTimeFormats covers the timestamp shapes the providers deliver
var eventTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseEventTime parses a provider timestamp string best-effort
func parseEventTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range eventTimeFormats {
		if ts, err := time.Parse(format, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// firstParseableTime returns the first candidate that parses as a timestamp,
// falling back to the current time when none do
func firstParseableTime(candidates ...string) time.Time {
	for _, candidate := range candidates {
		if ts, ok := parseEventTime(candidate); ok {
			return ts
		}
	}
	return time.Now().UTC()
}
