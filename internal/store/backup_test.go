package store

import (
	"testing"

	"github.com/rdouglass/larder/internal/model"
)

func TestBackupLifecycle(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, err := bs.Create("larder-20260828.db.enc", "backups/larder-20260828.db.enc")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.StartedAt == nil {
		t.Error("expected started_at")
	}

	if err := bs.MarkUploading(b.ID); err != nil {
		t.Fatalf("mark uploading: %v", err)
	}
	if err := bs.MarkCompleted(b.ID, 4096); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at")
	}
}

func TestBackupMarkFailed(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, _ := bs.Create("bad.db.enc", "backups/bad.db.enc")
	if err := bs.MarkFailed(b.ID, "upload timed out"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "upload timed out" {
		t.Errorf("error = %q", got.ErrorMessage)
	}
}

func TestBackupPrune(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	var ids []int64
	for i := 0; i < 4; i++ {
		b, _ := bs.Create("f.db.enc", "backups/f.db.enc")
		bs.MarkCompleted(b.ID, 1)
		ids = append(ids, b.ID)
	}

	keys, err := bs.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("pruned %d keys, want 2", len(keys))
	}

	remaining, _ := bs.List(10)
	if len(remaining) != 2 {
		t.Errorf("remaining = %d, want 2", len(remaining))
	}
}
