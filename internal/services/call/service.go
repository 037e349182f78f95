package call

import (
	"context"
	"strings"
	"time"

	"github.com/vasudevan-kross/calling-agent-app/internal/cache"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// Service orchestrates the synchronous call paths: lead lookup, adapter
// invocation and call record bookkeeping
type Service struct {
	leads       repository.LeadRepository
	calls       repository.CallRepository
	providers   *provider.Factory
	statusCache *cache.ProviderStatusCache
}

// NewService creates a new call service. statusCache may be nil.
func NewService(leads repository.LeadRepository, calls repository.CallRepository, providers *provider.Factory, statusCache *cache.ProviderStatusCache) *Service {
	return &Service{
		leads:       leads,
		calls:       calls,
		providers:   providers,
		statusCache: statusCache,
	}
}

// InitiateRequest carries the parameters for starting a new AI call
type InitiateRequest struct {
	LeadID   string                 `json:"lead_id"`
	Purpose  string                 `json:"purpose"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// InitiateResult merges the stored record id with the provider response
type InitiateResult struct {
	ID       string `json:"id"`
	CallID   string `json:"call_id"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Message  string `json:"message,omitempty"`
}

// WebCallLog carries a completed browser-based call for persistence
type WebCallLog struct {
	LeadID          string                   `json:"lead_id"`
	Purpose         string                   `json:"purpose"`
	Language        string                   `json:"language"`
	Transcript      []map[string]interface{} `json:"transcript"`
	ProviderCallID  string                   `json:"provider_call_id,omitempty"`
	RecordingURL    string                   `json:"recording_url,omitempty"`
	StartTime       *time.Time               `json:"start_time,omitempty"`
	EndTime         *time.Time               `json:"end_time,omitempty"`
	DurationSeconds int                      `json:"duration_seconds,omitempty"`
	Status          string                   `json:"status,omitempty"`
}

// Initiate starts an AI call to a lead through the active provider and
// persists the resulting call record with status "initiated".
//
// A provider error after the request was issued means the call state on the
// provider side is unknown; no record is written and the error propagates to
// the caller as a server-side failure.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	lead, err := s.leads.GetByID(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &domain.NotFoundError{Resource: "lead", ID: req.LeadID}
	}

	p, err := s.providers.Active()
	if err != nil {
		return nil, err
	}

	resp, err := p.StartCall(ctx, provider.CallRequest{
		ToNumber: lead.Phone,
		Purpose:  req.Purpose,
		LeadID:   req.LeadID,
		Metadata: req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Call{
		LeadID:         req.LeadID,
		Provider:       resp.Provider,
		ProviderCallID: resp.CallID,
		Direction:      domain.CallDirectionOutbound,
		Status:         domain.CallStatusInitiated,
		Purpose:        req.Purpose,
		StartTime:      &now,
		Metadata:       req.Metadata,
	}
	if err := s.calls.Create(ctx, record); err != nil {
		return nil, err
	}

	logger.Base().Info("call initiated",
		zap.String("call_id", record.ID),
		zap.String("provider", resp.Provider),
		zap.String("provider_call_id", resp.CallID),
		zap.String("lead_id", req.LeadID),
	)

	return &InitiateResult{
		ID:       record.ID,
		CallID:   resp.CallID,
		Status:   resp.Status,
		Provider: resp.Provider,
		Message:  resp.Message,
	}, nil
}

// End terminates an active call. The record is marked "ended" only when the
// provider confirmed termination; a best-effort failure from the adapter is
// reported to the caller and leaves the record untouched.
func (s *Service) End(ctx context.Context, id string) error {
	record, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return &domain.NotFoundError{Resource: "call", ID: id}
	}

	p, err := s.providers.ByName(record.Provider)
	if err != nil {
		return err
	}

	if !p.EndCall(ctx, record.ProviderCallID) {
		return &domain.ProviderError{Provider: record.Provider, Operation: "end_call"}
	}

	now := time.Now().UTC()
	_, err = s.calls.Update(ctx, id, map[string]interface{}{
		"status":   domain.CallStatusEnded,
		"end_time": now,
	})
	return err
}

// Get retrieves a call by internal ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Call, error) {
	record, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &domain.NotFoundError{Resource: "call", ID: id}
	}
	return record, nil
}

// List retrieves calls with optional status filter, newest first
func (s *Service) List(ctx context.Context, skip, limit int, status string) ([]*domain.Call, error) {
	return s.calls.List(ctx, repository.CallQuery{Skip: skip, Limit: limit, Status: status})
}

// ListByLead retrieves all calls for a lead, newest first
func (s *Service) ListByLead(ctx context.Context, leadID string) ([]*domain.Call, error) {
	return s.calls.ListByLeadID(ctx, leadID)
}

// Count returns the total number of calls, optionally filtered by status
func (s *Service) Count(ctx context.Context, status string) (int64, error) {
	return s.calls.Count(ctx, status)
}

// LiveStatus reads the current call state straight from the provider that
// placed the call, caching the payload briefly to shield the provider API.
// The adapter is resolved by the record's stored provider name, not the
// active configuration, so status reads keep working after a provider switch.
func (s *Service) LiveStatus(ctx context.Context, id string) (map[string]interface{}, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, ok := s.statusCache.Get(ctx, record.ProviderCallID); ok {
		return payload, nil
	}

	p, err := s.providers.ByName(record.Provider)
	if err != nil {
		return nil, err
	}

	payload, err := p.GetCallStatus(ctx, record.ProviderCallID)
	if err != nil {
		return nil, err
	}

	s.statusCache.Put(ctx, record.ProviderCallID, payload)
	return payload, nil
}

// SyncRecording pulls the recording URL from the provider and stores it when
// available. An empty URL from the provider never clears a stored one.
func (s *Service) SyncRecording(ctx context.Context, id string) (string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	p, err := s.providers.ByName(record.Provider)
	if err != nil {
		return "", err
	}

	url, err := p.GetRecording(ctx, record.ProviderCallID)
	if err != nil {
		return "", err
	}
	if url == "" {
		return record.RecordingURL, nil
	}

	if _, err := s.calls.Update(ctx, id, map[string]interface{}{"recording_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// UpdateRecordingURL stores a recording URL on a call record
func (s *Service) UpdateRecordingURL(ctx context.Context, id, url string) error {
	rows, err := s.calls.Update(ctx, id, map[string]interface{}{"recording_url": url})
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "call", ID: id}
	}
	return nil
}

// SaveAnalysis stores an AI-generated score and summary on a call record.
// Score and qualification merge into the existing metadata rather than
// replacing it.
func (s *Service) SaveAnalysis(ctx context.Context, id, summary string, aiScore int, qualification string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	meta := record.Metadata
	if meta == nil {
		meta = domain.JSONB{}
	}
	meta["ai_score"] = aiScore
	meta["qualification"] = qualification

	_, err = s.calls.Update(ctx, id, map[string]interface{}{
		"summary":  summary,
		"metadata": meta,
	})
	return err
}

// CreateWebCall opens a browser-based call session for testing without
// dialing a phone number. Web sessions always go through Vapi regardless of
// the active provider; nothing is persisted until the finished call is
// reported via LogWebCall.
func (s *Service) CreateWebCall(ctx context.Context, purpose string) (map[string]interface{}, error) {
	p, err := s.providers.ByName(provider.ProviderVapi)
	if err != nil {
		return nil, err
	}
	starter, ok := p.(provider.WebCallStarter)
	if !ok {
		return nil, &domain.ConfigurationError{Provider: p.Name(), Supported: []string{provider.ProviderVapi}}
	}

	result, err := starter.StartWebCall(ctx, purpose)
	if err != nil {
		return nil, err
	}

	logger.Base().Info("web call created",
		zap.String("purpose", purpose),
	)
	return result, nil
}

// LogWebCall persists a completed browser-based call with its transcript
func (s *Service) LogWebCall(ctx context.Context, log WebCallLog) (*domain.Call, error) {
	status := log.Status
	if status == "" {
		status = domain.CallStatusCompleted
	}
	language := log.Language
	if language == "" {
		language = "en"
	}

	record := &domain.Call{
		LeadID:          log.LeadID,
		Provider:        provider.ProviderVapi,
		ProviderCallID:  log.ProviderCallID,
		Direction:       domain.CallDirectionOutbound,
		Status:          status,
		Purpose:         log.Purpose,
		Transcript:      log.Transcript,
		RecordingURL:    log.RecordingURL,
		StartTime:       log.StartTime,
		EndTime:         log.EndTime,
		DurationSeconds: log.DurationSeconds,
		Metadata: domain.JSONB{
			"language":  language,
			"call_type": "web_call",
		},
	}
	if err := s.calls.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ActiveProviderName returns the configured provider name for status reporting
func (s *Service) ActiveProviderName() string {
	return strings.ToLower(s.providers.ActiveName())
}
