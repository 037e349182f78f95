package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/search"
)

// SearchHandler handles HTTP requests for business discovery via Places
type SearchHandler struct {
	search *search.Service
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchSvc *search.Service) *SearchHandler {
	return &SearchHandler{search: searchSvc}
}

// SetupSearchRoutes registers search routes on the API subrouter
func (h *SearchHandler) SetupSearchRoutes(router *mux.Router) {
	router.HandleFunc("/search/places", h.SearchPlaces).Methods("GET")
	router.HandleFunc("/search/places/{place_id}", h.GetPlaceDetails).Methods("GET")
}

// SearchPlaces runs a text search for businesses near an optional location
func (h *SearchHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query is required"})
		return
	}
	location := r.URL.Query().Get("location")

	places, err := h.search.SearchPlaces(r.Context(), query, location)
	if err != nil {
		writeError(w, err)
		return
	}
	if places == nil {
		places = []search.Place{}
	}
	writeJSON(w, http.StatusOK, places)
}

// GetPlaceDetails returns full details for one place
func (h *SearchHandler) GetPlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["place_id"]

	place, err := h.search.GetPlaceDetails(r.Context(), placeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}
