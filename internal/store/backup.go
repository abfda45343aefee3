package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rdouglass/larder/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, filename, s3_key, size_bytes, status, error_message, started_at, completed_at, created_at, updated_at`

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	b := &model.Backup{}
	var errMsg sql.NullString
	var startedAt, completedAt sql.NullTime
	err := scanner.Scan(
		&b.ID, &b.Filename, &b.S3Key, &b.SizeBytes, &b.Status, &errMsg,
		&startedAt, &completedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ErrorMessage = errMsg.String
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return b, nil
}

func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, s3_key, status, started_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		filename, s3Key, model.BackupStatusPending, now, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) MarkUploading(id int64) error {
	return s.setStatus(id, model.BackupStatusUploading, "", 0, false)
}

func (s *BackupStore) MarkCompleted(id, sizeBytes int64) error {
	return s.setStatus(id, model.BackupStatusCompleted, "", sizeBytes, true)
}

func (s *BackupStore) MarkFailed(id int64, errMsg string) error {
	return s.setStatus(id, model.BackupStatusFailed, errMsg, 0, true)
}

func (s *BackupStore) setStatus(id int64, status model.BackupStatus, errMsg string, sizeBytes int64, completed bool) error {
	now := time.Now().UTC()
	var completedAt any
	if completed {
		completedAt = now
	}
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ?, size_bytes = MAX(size_bytes, ?), completed_at = ?, updated_at = ? WHERE id = ?`,
		status, msg, sizeBytes, completedAt, now, id,
	)
	if err != nil {
		return fmt.Errorf("set backup status: %w", err)
	}
	return nil
}

// Prune deletes completed backup rows beyond keep, oldest first, returning
// the S3 keys of the pruned rows so the caller can delete the objects.
func (s *BackupStore) Prune(keep int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT id, s3_key FROM backups WHERE status = ? ORDER BY created_at DESC LIMIT -1 OFFSET ?`,
		model.BackupStatusCompleted, keep,
	)
	if err != nil {
		return nil, fmt.Errorf("select prunable: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var keys []string
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scan prunable: %w", err)
		}
		ids = append(ids, id)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete backup %d: %w", id, err)
		}
	}
	return keys, nil
}
