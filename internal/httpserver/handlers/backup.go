package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
)

var errBackupsDisabled = errorResponse{Error: "backups are disabled (set BOOKMARKER_BACKUP_FILE)"}

// TriggerBackup asks the backup writer for an immediate run.
func TriggerBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.BackupTrigger == nil {
			writeJSON(w, http.StatusNotFound, errBackupsDisabled)
			return
		}

		select {
		case d.BackupTrigger <- struct{}{}:
			d.Logger.Info("manual backup triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "backup triggered"})
		default:
			d.Logger.Warn("backup already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "backup already pending, please wait"})
		}
	}
}

// BackupStatus returns the last backup run.
func BackupStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.BackupStatus == nil {
			writeJSON(w, http.StatusNotFound, errBackupsDisabled)
			return
		}
		writeJSON(w, http.StatusOK, d.BackupStatus())
	}
}
