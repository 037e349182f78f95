package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
)

// fakeAgentRepo serves agents from memory
type fakeAgentRepo struct {
	byID map[string]*domain.Agent
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{byID: make(map[string]*domain.Agent)}
}

func (f *fakeAgentRepo) Create(ctx context.Context, agent *domain.Agent) error {
	if agent.ID == "" {
		agent.ID = "generated-id"
	}
	f.byID[agent.ID] = agent
	return nil
}

func (f *fakeAgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	agents := make([]*domain.Agent, 0, len(f.byID))
	for _, a := range f.byID {
		agents = append(agents, a)
	}
	return agents, nil
}

func (f *fakeAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return f.byID[id], nil
}

func (f *fakeAgentRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Agent, error) {
	record, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	for key, value := range updates {
		s, _ := value.(string)
		switch key {
		case "name":
			record.Name = s
		case "description":
			record.Description = s
		case "category":
			record.Category = s
		case "language":
			record.Language = s
		case "system_prompt":
			record.SystemPrompt = s
		case "first_message":
			record.FirstMessage = s
		}
	}
	return record, nil
}

func (f *fakeAgentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

var _ repository.AgentRepository = (*fakeAgentRepo)(nil)

func newAgentRouter(repo *fakeAgentRepo) *mux.Router {
	router := mux.NewRouter()
	NewAgentHandler(repo).SetupAgentRoutes(router)
	return router
}

func doAgentRequest(t *testing.T, router *mux.Router, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	return rec.Code, decoded
}

func TestUpdateAgent(t *testing.T) {
	repo := newFakeAgentRepo()
	repo.byID["agent-1"] = &domain.Agent{
		ID:              "agent-1",
		VapiAssistantID: "va-1",
		Name:            "Sales Bot",
		Language:        "en",
	}
	router := newAgentRouter(repo)

	code, body := doAgentRequest(t, router, http.MethodPatch, "/agents/agent-1",
		`{"name": "Renamed Bot", "system_prompt": "Be brief."}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Renamed Bot", body["name"])
	require.Equal(t, "Be brief.", body["system_prompt"])

	require.Equal(t, "Renamed Bot", repo.byID["agent-1"].Name)
	require.Equal(t, "Be brief.", repo.byID["agent-1"].SystemPrompt)
}

func TestUpdateAgent_IgnoresProtectedFields(t *testing.T) {
	repo := newFakeAgentRepo()
	repo.byID["agent-1"] = &domain.Agent{
		ID:              "agent-1",
		VapiAssistantID: "va-1",
		Name:            "Sales Bot",
	}
	router := newAgentRouter(repo)

	code, _ := doAgentRequest(t, router, http.MethodPatch, "/agents/agent-1",
		`{"vapi_assistant_id": "hijacked", "id": "other", "name": "Still Mine"}`)
	require.Equal(t, http.StatusOK, code)

	require.Equal(t, "va-1", repo.byID["agent-1"].VapiAssistantID)
	require.Equal(t, "agent-1", repo.byID["agent-1"].ID)
	require.Equal(t, "Still Mine", repo.byID["agent-1"].Name)
}

func TestUpdateAgent_NotFound(t *testing.T) {
	router := newAgentRouter(newFakeAgentRepo())

	code, _ := doAgentRequest(t, router, http.MethodPatch, "/agents/missing", `{"name": "x"}`)
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeleteAgent(t *testing.T) {
	repo := newFakeAgentRepo()
	repo.byID["agent-1"] = &domain.Agent{ID: "agent-1", Name: "Sales Bot"}
	router := newAgentRouter(repo)

	code, body := doAgentRequest(t, router, http.MethodDelete, "/agents/agent-1", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Agent deleted", body["message"])
	require.NotContains(t, repo.byID, "agent-1")
}

func TestDeleteAgent_NotFound(t *testing.T) {
	router := newAgentRouter(newFakeAgentRepo())

	code, _ := doAgentRequest(t, router, http.MethodDelete, "/agents/missing", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeleteAgent_InfoRouteStillResolves(t *testing.T) {
	repo := newFakeAgentRepo()
	repo.byID["agent-1"] = &domain.Agent{ID: "agent-1", Name: "Sales Bot"}
	router := newAgentRouter(repo)

	code, body := doAgentRequest(t, router, http.MethodGet, "/agents/agent-1/info", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Sales Bot", body["name"])
}
