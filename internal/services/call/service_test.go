package call

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/provider"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
)

// fakeLeadRepo serves a fixed set of leads by id
type fakeLeadRepo struct {
	leads map[string]*domain.Lead
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *domain.Lead) error { return nil }
func (f *fakeLeadRepo) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return f.leads[id], nil
}
func (f *fakeLeadRepo) List(ctx context.Context, q repository.LeadQuery) ([]*domain.Lead, error) {
	return nil, nil
}
func (f *fakeLeadRepo) Count(ctx context.Context, status string) (int64, error) { return 0, nil }
func (f *fakeLeadRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Lead, error) {
	return nil, nil
}
func (f *fakeLeadRepo) Delete(ctx context.Context, id string) (bool, error)     { return false, nil }
func (f *fakeLeadRepo) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return false, nil
}
func (f *fakeLeadRepo) ExistingPhones(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}
func (f *fakeLeadRepo) GetBySource(ctx context.Context, source string) ([]*domain.Lead, error) {
	return nil, nil
}

var _ repository.LeadRepository = (*fakeLeadRepo)(nil)

// fakeCallRepo records created calls and applied updates
type fakeCallRepo struct {
	created []*domain.Call
	updates map[string]map[string]interface{}
	byID    map[string]*domain.Call
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{
		updates: make(map[string]map[string]interface{}),
		byID:    make(map[string]*domain.Call),
	}
}

func (f *fakeCallRepo) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = "generated-id"
	}
	f.created = append(f.created, call)
	f.byID[call.ID] = call
	return nil
}

func (f *fakeCallRepo) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	return f.byID[id], nil
}

func (f *fakeCallRepo) GetByProviderCallID(ctx context.Context, providerCallID string) (*domain.Call, error) {
	return nil, nil
}

func (f *fakeCallRepo) List(ctx context.Context, q repository.CallQuery) ([]*domain.Call, error) {
	return nil, nil
}

func (f *fakeCallRepo) ListByLeadID(ctx context.Context, leadID string) ([]*domain.Call, error) {
	return nil, nil
}

func (f *fakeCallRepo) Count(ctx context.Context, status string) (int64, error) { return 0, nil }

func (f *fakeCallRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	f.updates[id] = updates
	return 1, nil
}

func (f *fakeCallRepo) UpdateByProviderCallID(ctx context.Context, providerCallID string, updates map[string]interface{}) (int64, error) {
	return 0, nil
}

func (f *fakeCallRepo) UpdateByProviderCallIDWhereStatusNot(ctx context.Context, providerCallID, excludedStatus string, updates map[string]interface{}) (int64, error) {
	return 0, nil
}

var _ repository.CallRepository = (*fakeCallRepo)(nil)

func newTestService(t *testing.T, providerBaseURL string) (*Service, *fakeCallRepo) {
	t.Helper()
	leads := &fakeLeadRepo{leads: map[string]*domain.Lead{
		"lead-1": {ID: "lead-1", Name: "Dana", Phone: "+15551234567"},
	}}
	calls := newFakeCallRepo()
	factory := provider.NewFactory(&config.AppConfig{
		ActiveVoiceProvider: "vapi",
		VapiAPIKey:          "test-key",
		VapiBaseURL:         providerBaseURL,
	})
	return NewService(leads, calls, factory, nil), calls
}

func TestInitiate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call/phone", r.URL.Path)
		w.Write([]byte(`{"id": "vapi-call-1"}`))
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	result, err := svc.Initiate(context.Background(), InitiateRequest{
		LeadID:  "lead-1",
		Purpose: "demo follow-up",
	})
	require.NoError(t, err)
	require.Equal(t, "vapi-call-1", result.CallID)
	require.Equal(t, domain.CallStatusInitiated, result.Status)
	require.Equal(t, provider.ProviderVapi, result.Provider)

	require.Len(t, calls.created, 1)
	record := calls.created[0]
	require.Equal(t, "lead-1", record.LeadID)
	require.Equal(t, "vapi-call-1", record.ProviderCallID)
	require.Equal(t, domain.CallStatusInitiated, record.Status)
	require.Equal(t, domain.CallDirectionOutbound, record.Direction)
	require.NotNil(t, record.StartTime)
	require.Equal(t, record.ID, result.ID)
}

func TestInitiate_UnknownLead(t *testing.T) {
	svc, calls := newTestService(t, "http://localhost:0")

	_, err := svc.Initiate(context.Background(), InitiateRequest{LeadID: "missing"})
	require.Error(t, err)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "lead", notFound.Resource)
	require.Empty(t, calls.created)
}

func TestInitiate_ProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "upstream"}`))
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	_, err := svc.Initiate(context.Background(), InitiateRequest{LeadID: "lead-1", Purpose: "x"})
	require.Error(t, err)

	var providerErr *domain.ProviderError
	require.True(t, errors.As(err, &providerErr))

	// No record is written when the provider refused the call
	require.Empty(t, calls.created)
}

func TestEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	calls.byID["id-1"] = &domain.Call{
		ID:             "id-1",
		Provider:       provider.ProviderVapi,
		ProviderCallID: "vapi-call-1",
		Status:         domain.CallStatusInProgress,
	}

	require.NoError(t, svc.End(context.Background(), "id-1"))

	updates := calls.updates["id-1"]
	require.Equal(t, domain.CallStatusEnded, updates["status"])
	require.Contains(t, updates, "end_time")
}

func TestEnd_ProviderRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	calls.byID["id-1"] = &domain.Call{
		ID:             "id-1",
		Provider:       provider.ProviderVapi,
		ProviderCallID: "vapi-call-1",
		Status:         domain.CallStatusInProgress,
	}

	err := svc.End(context.Background(), "id-1")
	require.Error(t, err)

	var providerErr *domain.ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, "end_call", providerErr.Operation)

	// The record stays untouched when termination was not confirmed
	require.Empty(t, calls.updates)
}

func TestEnd_UnknownCall(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0")

	err := svc.End(context.Background(), "missing")
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestSyncRecording_EmptyURLKeepsStored(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	calls.byID["id-1"] = &domain.Call{
		ID:             "id-1",
		Provider:       provider.ProviderVapi,
		ProviderCallID: "vapi-call-1",
		RecordingURL:   "https://cdn.vapi.ai/old.mp3",
	}

	url, err := svc.SyncRecording(context.Background(), "id-1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.vapi.ai/old.mp3", url)
	require.Empty(t, calls.updates)
}

func TestSyncRecording_StoresFreshURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recordingUrl": "https://cdn.vapi.ai/new.mp3"}`))
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	calls.byID["id-1"] = &domain.Call{
		ID:             "id-1",
		Provider:       provider.ProviderVapi,
		ProviderCallID: "vapi-call-1",
	}

	url, err := svc.SyncRecording(context.Background(), "id-1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.vapi.ai/new.mp3", url)
	require.Equal(t, "https://cdn.vapi.ai/new.mp3", calls.updates["id-1"]["recording_url"])
}

func TestLogWebCall(t *testing.T) {
	svc, calls := newTestService(t, "http://localhost:0")

	record, err := svc.LogWebCall(context.Background(), WebCallLog{
		LeadID:  "lead-1",
		Purpose: "browser demo",
		Transcript: []map[string]interface{}{
			{"role": "assistant", "text": "Hello"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.CallStatusCompleted, record.Status)
	require.Equal(t, provider.ProviderVapi, record.Provider)
	require.Equal(t, "web_call", record.Metadata["call_type"])
	require.Equal(t, "en", record.Metadata["language"])
	require.Len(t, record.Transcript, 1)
	require.Len(t, calls.created, 1)
}

func TestCreateWebCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call/web", r.URL.Path)
		w.Write([]byte(`{"id": "web-call-1", "webCallUrl": "https://vapi.daily.co/room-1"}`))
	}))
	defer ts.Close()

	svc, calls := newTestService(t, ts.URL)
	result, err := svc.CreateWebCall(context.Background(), "browser demo")
	require.NoError(t, err)
	require.Equal(t, "web-call-1", result["call_id"])
	require.Equal(t, "https://vapi.daily.co/room-1", result["web_call_url"])
	require.Equal(t, "created", result["status"])

	// A web session is not a call record; persistence happens via LogWebCall.
	require.Empty(t, calls.created)
}

func TestCreateWebCall_ProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "upstream"}`))
	}))
	defer ts.Close()

	svc, _ := newTestService(t, ts.URL)
	_, err := svc.CreateWebCall(context.Background(), "browser demo")
	require.Error(t, err)

	var providerErr *domain.ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, "start_web_call", providerErr.Operation)
	require.Equal(t, http.StatusBadGateway, providerErr.StatusCode)
}

func TestCreateWebCall_AlwaysUsesVapi(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call/web", r.URL.Path)
		w.Write([]byte(`{"id": "web-call-2", "webCallUrl": "https://vapi.daily.co/room-2"}`))
	}))
	defer ts.Close()

	leads := &fakeLeadRepo{leads: map[string]*domain.Lead{}}
	factory := provider.NewFactory(&config.AppConfig{
		ActiveVoiceProvider: "retell",
		RetellAPIKey:        "test-key",
		VapiAPIKey:          "test-key",
		VapiBaseURL:         ts.URL,
	})
	svc := NewService(leads, newFakeCallRepo(), factory, nil)

	result, err := svc.CreateWebCall(context.Background(), "browser demo")
	require.NoError(t, err)
	require.Equal(t, "web-call-2", result["call_id"])
}
