package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
)

// Hints fetches ?url= and returns the page with suggested category and tags.
func Hints(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawURL := r.URL.Query().Get("url")

		s, err := d.Service.Suggest(r.Context(), rawURL)
		if err != nil {
			var vErr *domain.ValidationError
			switch {
			case errors.Is(err, service.ErrHintsDisabled):
				writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			case errors.As(err, &vErr):
				writeError(w, d.Logger, err)
			default:
				d.Logger.Warn("page fetch failed", logger.String("url", rawURL), logger.Error(err))
				writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			}
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}
