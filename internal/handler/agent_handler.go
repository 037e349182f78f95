package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
)

// AgentHandler handles HTTP requests for saved voice assistants
type AgentHandler struct {
	agents repository.AgentRepository
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agents repository.AgentRepository) *AgentHandler {
	return &AgentHandler{agents: agents}
}

// SetupAgentRoutes registers agent routes on the API subrouter
func (h *AgentHandler) SetupAgentRoutes(router *mux.Router) {
	router.HandleFunc("/agents", h.ListAgents).Methods("GET")
	router.HandleFunc("/agents/save", h.SaveAgent).Methods("POST")
	router.HandleFunc("/agents/{id}/info", h.GetAgentInfo).Methods("GET")
	router.HandleFunc("/agents/{id}", h.UpdateAgent).Methods("PATCH")
	router.HandleFunc("/agents/{id}", h.DeleteAgent).Methods("DELETE")
}

// agentUpdateFields are the only columns a PATCH may touch; the provider
// assistant id and timestamps stay server-controlled.
var agentUpdateFields = map[string]struct{}{
	"name":          {},
	"description":   {},
	"category":      {},
	"language":      {},
	"system_prompt": {},
	"first_message": {},
}

// ListAgents returns all saved agents, newest first
func (h *AgentHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if agents == nil {
		agents = []*domain.Agent{}
	}
	writeJSON(w, http.StatusOK, agents)
}

// SaveAgent persists an assistant that was already created on the provider
// side; only the prompt material and the provider assistant id are kept here
func (h *AgentHandler) SaveAgent(w http.ResponseWriter, r *http.Request) {
	var record domain.Agent
	if !decodeBody(w, r, &record) {
		return
	}
	if record.VapiAssistantID == "" || record.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "vapi_assistant_id and name are required"})
		return
	}
	if record.Language == "" {
		record.Language = "en"
	}

	if err := h.agents.Create(r.Context(), &record); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// GetAgentInfo returns a single saved agent by id
func (h *AgentHandler) GetAgentInfo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.agents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, &domain.NotFoundError{Resource: "agent", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// UpdateAgent applies partial updates to a saved agent's prompt material
func (h *AgentHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body map[string]interface{}
	if !decodeBody(w, r, &body) {
		return
	}
	updates := make(map[string]interface{})
	for key, value := range body {
		if _, ok := agentUpdateFields[key]; ok {
			updates[key] = value
		}
	}

	record, err := h.agents.Update(r.Context(), id, updates)
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, &domain.NotFoundError{Resource: "agent", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteAgent removes a saved agent record; the provider-side assistant is
// deleted separately by the client
func (h *AgentHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.agents.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, &domain.NotFoundError{Resource: "agent", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Agent deleted"})
}
