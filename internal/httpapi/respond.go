package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nguyentantai21042004/media-flow/internal/job"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) error(w http.ResponseWriter, code int, msg string) {
	h.json(w, code, errorResponse{Error: msg})
}

// statusFor maps a Start or Cancel error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, job.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, job.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
