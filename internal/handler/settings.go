package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/rdouglass/larder/internal/backup"
	"github.com/rdouglass/larder/internal/store"
	"github.com/rdouglass/larder/internal/websocket"
)

var timeFormatRegexp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	backupManager *backup.Manager
	hub           *websocket.Hub
}

func NewSettingsHandler(ss *store.SettingsStore, bm *backup.Manager, hub *websocket.Hub) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, backupManager: bm, hub: hub}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetThemeSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateThemeSettings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.settingsStore.SetThemeSettings(req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}

	h.broadcast(websocket.NewMessage("settings", "updated", "theme", nil))

	settings, err := h.settingsStore.GetThemeSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validateThemeSettings(settings map[string]string) error {
	for key, value := range settings {
		switch key {
		case "theme_mode":
			if value != "system" && value != "light" && value != "dark" {
				return fmt.Errorf("theme_mode must be system, light, or dark")
			}
		case "theme_selected":
			if value == "" {
				return fmt.Errorf("theme_selected cannot be empty")
			}
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}
	}
	return nil
}

func (h *SettingsHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetReminderSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateReminderSettings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.settingsStore.SetReminderSettings(req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}

	h.broadcast(websocket.NewMessage("settings", "updated", "reminder", nil))

	settings, err := h.settingsStore.GetReminderSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validateReminderSettings(settings map[string]string) error {
	for key, value := range settings {
		switch key {
		case "reminder_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("reminder_enabled must be true or false")
			}
		case "reminder_time":
			if !timeFormatRegexp.MatchString(value) {
				return fmt.Errorf("reminder_time must be HH:MM")
			}
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}
	}
	return nil
}

func (h *SettingsHandler) GetS3(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetS3Settings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	// Never echo the secret back out.
	if settings["s3_secret_key"] != "" {
		settings["s3_secret_key"] = "********"
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateS3(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateS3Settings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.settingsStore.SetS3Settings(req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}

	// Hot-reload the backup manager with whatever is now stored.
	if h.backupManager != nil {
		if saved, err := h.settingsStore.GetS3Settings(); err == nil {
			h.backupManager.UpdateS3Config(backup.S3Config{
				Endpoint:  saved["s3_endpoint"],
				Bucket:    saved["s3_bucket"],
				Region:    saved["s3_region"],
				AccessKey: saved["s3_access_key"],
				SecretKey: saved["s3_secret_key"],
			})
		}
	}

	h.broadcast(websocket.NewMessage("settings", "updated", "s3", nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func validateS3Settings(settings map[string]string) error {
	allowedKeys := map[string]bool{
		"s3_endpoint":           true,
		"s3_bucket":             true,
		"s3_region":             true,
		"s3_access_key":         true,
		"s3_secret_key":         true,
		"backup_enabled":        true,
		"backup_interval_hours": true,
	}

	for key, value := range settings {
		if !allowedKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}
		switch key {
		case "backup_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("backup_enabled must be true or false")
			}
		case "backup_interval_hours":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 168 {
				return fmt.Errorf("backup_interval_hours must be between 1 and 168")
			}
		}
	}
	return nil
}
