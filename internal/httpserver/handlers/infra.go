package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/scheduler"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
)

type componentStatus struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Error string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Collection *service.Status            `json:"collection,omitempty"`
	Backup     *scheduler.BackupStatus    `json:"backup,omitempty"`
}

// Infra reports the store, the collection counts and the last backup.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		store := componentStatus{OK: true, Mode: d.StoreKind}
		resp := infraResponse{Components: map[string]componentStatus{}}

		if st, err := d.Service.Status(ctx); err != nil {
			store.OK = false
			store.Error = err.Error()
		} else {
			resp.Collection = &st
		}
		resp.Components["store"] = store

		if d.BackupStatus != nil {
			bs := d.BackupStatus()
			resp.Backup = &bs
			resp.Components["backup"] = componentStatus{OK: bs.LastError == "", Mode: bs.Format, Error: bs.LastError}
		}

		resp.Mode = determineMode(resp.Components)
		writeJSON(w, http.StatusOK, resp)
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical" // nothing can be read or saved
	}
	if backup, ok := components["backup"]; ok && !backup.OK {
		return "degraded"
	}
	return "ok"
}
