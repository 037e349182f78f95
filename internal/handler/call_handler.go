package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/call"
)

// CallHandler handles HTTP requests for call orchestration and history
type CallHandler struct {
	calls *call.Service
}

// NewCallHandler creates a new call handler
func NewCallHandler(calls *call.Service) *CallHandler {
	return &CallHandler{calls: calls}
}

// SetupCallRoutes registers call routes on the API subrouter
func (h *CallHandler) SetupCallRoutes(router *mux.Router) {
	router.HandleFunc("/calls/initiate", h.InitiateCall).Methods("POST")
	router.HandleFunc("/calls/web-call", h.CreateWebCall).Methods("POST")
	router.HandleFunc("/calls/log-web-call", h.LogWebCall).Methods("POST")
	router.HandleFunc("/calls", h.ListCalls).Methods("GET")
	router.HandleFunc("/calls/count", h.CountCalls).Methods("GET")
	router.HandleFunc("/calls/lead/{lead_id}", h.ListCallsByLead).Methods("GET")
	router.HandleFunc("/calls/{id}", h.GetCall).Methods("GET")
	router.HandleFunc("/calls/{id}/end", h.EndCall).Methods("POST")
	router.HandleFunc("/calls/{id}/transcript", h.GetTranscript).Methods("GET")
	router.HandleFunc("/calls/{id}/status", h.GetLiveStatus).Methods("GET")
	router.HandleFunc("/calls/{id}/sync-recording", h.SyncRecording).Methods("POST")
	router.HandleFunc("/calls/{id}/recording", h.UpdateRecording).Methods("PATCH")
	router.HandleFunc("/calls/{id}/analysis", h.SaveAnalysis).Methods("PATCH")
}

// InitiateCall starts an outbound AI call to a lead via the active provider
func (h *CallHandler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	var req call.InitiateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LeadID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "lead_id is required"})
		return
	}

	result, err := h.calls.Initiate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateWebCall opens a browser-based call session, no phone number required
func (h *CallHandler) CreateWebCall(w http.ResponseWriter, r *http.Request) {
	purpose := r.URL.Query().Get("purpose")
	if purpose == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "purpose is required"})
		return
	}

	result, err := h.calls.CreateWebCall(r.Context(), purpose)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LogWebCall persists a browser-based call completed on the client side
func (h *CallHandler) LogWebCall(w http.ResponseWriter, r *http.Request) {
	var req call.WebCallLog
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := h.calls.LogWebCall(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// ListCalls returns call history with pagination and optional status filter
func (h *CallHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	status := r.URL.Query().Get("status")

	calls, err := h.calls.List(r.Context(), skip, limit, status)
	if err != nil {
		writeError(w, err)
		return
	}
	if calls == nil {
		calls = []*domain.Call{}
	}
	writeJSON(w, http.StatusOK, calls)
}

// CountCalls returns the total call count with an optional status filter
func (h *CallHandler) CountCalls(w http.ResponseWriter, r *http.Request) {
	count, err := h.calls.Count(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// ListCallsByLead returns all calls placed to one lead
func (h *CallHandler) ListCallsByLead(w http.ResponseWriter, r *http.Request) {
	leadID := mux.Vars(r)["lead_id"]

	calls, err := h.calls.ListByLead(r.Context(), leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	if calls == nil {
		calls = []*domain.Call{}
	}
	writeJSON(w, http.StatusOK, calls)
}

// GetCall returns a single call record by id
func (h *CallHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.calls.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// EndCall terminates an in-progress call on the provider side
func (h *CallHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.calls.End(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Call ended successfully"})
}

// GetTranscript returns the stored transcript segments for a call
func (h *CallHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.calls.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	transcript := record.Transcript
	if transcript == nil {
		transcript = domain.JSONBArray{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"call_id":    record.ID,
		"transcript": transcript,
	})
}

// GetLiveStatus returns the provider's current view of a call
func (h *CallHandler) GetLiveStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, err := h.calls.LiveStatus(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// SyncRecording pulls the recording URL from the provider and stores it
func (h *CallHandler) SyncRecording(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	url, err := h.calls.SyncRecording(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"call_id":       id,
		"recording_url": url,
	})
}

// UpdateRecording stores a recording URL supplied by the client
func (h *CallHandler) UpdateRecording(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		RecordingURL string `json:"recording_url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RecordingURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "recording_url is required"})
		return
	}

	if err := h.calls.UpdateRecordingURL(r.Context(), id, req.RecordingURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recording URL updated"})
}

// SaveAnalysis stores post-call analysis results on the call record
func (h *CallHandler) SaveAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Summary       string `json:"summary"`
		AIScore       int    `json:"ai_score"`
		Qualification string `json:"qualification"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.calls.SaveAnalysis(r.Context(), id, req.Summary, req.AIScore, req.Qualification); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Analysis saved"})
}
