package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/lead"
)

// LeadHandler handles HTTP requests for lead management
type LeadHandler struct {
	leads *lead.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *lead.Service) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// SetupLeadRoutes registers lead CRUD routes on the API subrouter
func (h *LeadHandler) SetupLeadRoutes(router *mux.Router) {
	router.HandleFunc("/leads", h.ListLeads).Methods("GET")
	router.HandleFunc("/leads", h.CreateLead).Methods("POST")
	router.HandleFunc("/leads/count", h.CountLeads).Methods("GET")
	router.HandleFunc("/leads/source/{source}", h.GetLeadsBySource).Methods("GET")
	router.HandleFunc("/leads/{id}", h.GetLead).Methods("GET")
	router.HandleFunc("/leads/{id}", h.UpdateLead).Methods("PUT")
	router.HandleFunc("/leads/{id}", h.DeleteLead).Methods("DELETE")
	router.HandleFunc("/leads/{id}/status", h.UpdateLeadStatus).Methods("PATCH")
}

// ListLeads returns leads with pagination and optional status/search filters
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	leads, err := h.leads.List(r.Context(), skip, limit, status, search)
	if err != nil {
		writeError(w, err)
		return
	}
	if leads == nil {
		leads = []*domain.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// CountLeads returns the total lead count with an optional status filter
func (h *LeadHandler) CountLeads(w http.ResponseWriter, r *http.Request) {
	count, err := h.leads.Count(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// GetLead returns a single lead by id
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.leads.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GetLeadsBySource returns leads filtered by acquisition source
func (h *LeadHandler) GetLeadsBySource(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]

	leads, err := h.leads.GetBySource(r.Context(), source)
	if err != nil {
		writeError(w, err)
		return
	}
	if leads == nil {
		leads = []*domain.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// CreateLead creates a single lead. Duplicate phone numbers conflict.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var record domain.Lead
	if !decodeBody(w, r, &record) {
		return
	}

	created, err := h.leads.Create(r.Context(), &record)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateLead applies a partial update to a lead
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var updates map[string]interface{}
	if !decodeBody(w, r, &updates) {
		return
	}
	// Identity and timestamps are managed server side
	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "updated_at")

	updated, err := h.leads.Update(r.Context(), id, updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdateLeadStatus changes only the status field of a lead
func (h *LeadHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "status is required"})
		return
	}

	updated, err := h.leads.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteLead removes a lead by id
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.leads.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lead deleted successfully"})
}

// queryInt parses a non-negative integer query parameter with a default
func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
