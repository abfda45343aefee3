package store

import (
	"database/sql"
	"fmt"
	"time"
)

var themeKeys = []string{
	"theme_mode",
	"theme_selected",
}

var reminderKeys = []string{
	"reminder_enabled",
	"reminder_time",
}

var s3Keys = []string{
	"s3_endpoint",
	"s3_bucket",
	"s3_region",
	"s3_access_key",
	"s3_secret_key",
	"backup_enabled",
	"backup_interval_hours",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) getKeys(keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, nil
}

func (s *SettingsStore) setKeys(allowed []string, values map[string]string) error {
	for _, key := range allowed {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingsStore) GetThemeSettings() (map[string]string, error) {
	return s.getKeys(themeKeys)
}

func (s *SettingsStore) SetThemeSettings(values map[string]string) error {
	return s.setKeys(themeKeys, values)
}

func (s *SettingsStore) GetReminderSettings() (map[string]string, error) {
	return s.getKeys(reminderKeys)
}

func (s *SettingsStore) SetReminderSettings(values map[string]string) error {
	return s.setKeys(reminderKeys, values)
}

func (s *SettingsStore) GetS3Settings() (map[string]string, error) {
	return s.getKeys(s3Keys)
}

func (s *SettingsStore) SetS3Settings(values map[string]string) error {
	return s.setKeys(s3Keys, values)
}
