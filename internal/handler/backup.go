package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rdouglass/larder/internal/backup"
	"github.com/rdouglass/larder/internal/model"
	"github.com/rdouglass/larder/internal/store"
)

type BackupHandler struct {
	backupStore *store.BackupStore
	manager     *backup.Manager
	logger      *slog.Logger
}

func NewBackupHandler(bs *store.BackupStore, m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backupStore: bs, manager: m, logger: logger}
}

// RunNow kicks off a backup in the background. Progress is observable via
// the status endpoint and the websocket status broadcasts.
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	status := h.manager.Status()
	if status.State == backup.StateDisabled {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "backups are not configured"})
		return
	}
	if status.InProgress {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "backup already in progress"})
		return
	}

	go func() {
		if _, err := h.manager.RunNow(context.Background()); err != nil {
			h.logger.Error("manual backup failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(50)
	if err != nil {
		h.logger.Error("failed to list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// Restore replaces the live database with the selected backup. On success
// the process exits so it can restart on the restored data, which means a
// successful restore never writes a response.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	record, err := h.backupStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get backup"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
		return
	}
	if record.Status != model.BackupStatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "backup is not completed"})
		return
	}

	if err := h.manager.Restore(r.Context(), id); err != nil {
		h.logger.Error("restore failed", "error", err, "backup_id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
}
