package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/importer"
	"github.com/vasudevan-kross/calling-agent-app/internal/services/lead"
)

// uploads larger than this are rejected outright
const maxImportFileSize = 10 << 20 // 10 MB

// ImportHandler handles lead file uploads
type ImportHandler struct {
	leads *lead.Service
}

// NewImportHandler creates a new import handler
func NewImportHandler(leads *lead.Service) *ImportHandler {
	return &ImportHandler{leads: leads}
}

// SetupImportRoutes registers import routes on the API subrouter
func (h *ImportHandler) SetupImportRoutes(router *mux.Router) {
	router.HandleFunc("/import/file", h.ImportFile).Methods("POST")
}

// ImportFile parses an uploaded contact file and bulk-creates the leads it
// contains. Duplicate phone numbers are skipped, not failed.
func (h *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no file provided"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no filename provided"})
		return
	}

	parsed, err := importer.ParseFile(header.Filename, file)
	if err != nil {
		// Unsupported types, malformed content and empty files are all
		// client-side problems
		var validation *domain.ValidationError
		if errors.Is(err, importer.ErrNoContacts) || errors.As(err, &validation) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
			return
		}
		writeError(w, err)
		return
	}

	result, err := h.leads.BulkCreate(r.Context(), parsed)
	if err != nil {
		writeError(w, err)
		return
	}

	// Cap reported row errors so a bad file does not balloon the response
	reported := result.Errors
	if len(reported) > 10 {
		reported = reported[:10]
	}
	if reported == nil {
		reported = []lead.BulkError{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":      header.Filename,
		"total_records": len(parsed),
		"successful":    result.Successful,
		"failed":        result.Failed,
		"skipped":       result.Skipped,
		"errors":        reported,
	})
}
