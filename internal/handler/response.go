package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// writeJSON serializes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Base().Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors onto HTTP status codes. Unrecognized errors
// become 500 without leaking provider credentials or internals beyond the
// error text itself.
func writeError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var providerErr *domain.ProviderError
	var configErr *domain.ConfigurationError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": notFound.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusConflict, map[string]string{"detail": validation.Error()})
	case errors.As(err, &configErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": configErr.Error()})
	case errors.As(err, &providerErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": providerErr.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
}

// decodeBody decodes a JSON request body, reporting failures as 400
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return false
	}
	return true
}
