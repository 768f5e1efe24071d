package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var (
		vErr     *domain.ValidationError
		fErr     *domain.FormatError
		sErr     *domain.StorageError
		tooLarge *http.MaxBytesError
	)

	status := http.StatusInternalServerError
	body := errorResponse{Error: err.Error()}

	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		body.Field = vErr.Field
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &fErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &sErr):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.Int("status", status), logger.Error(err))
		if status == http.StatusInternalServerError {
			body.Error = http.StatusText(status)
		}
	}
	writeJSON(w, status, body)
}

// decodeBody reads a JSON request body of at most limit bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &domain.ValidationError{Field: "body", Reason: "invalid JSON body", Err: err}
	}
	return nil
}
