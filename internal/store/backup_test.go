package store

import (
	"fmt"
	"testing"

	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupLifecycle(t *testing.T) {
	backups := setupBackupTestDB(t)

	b, err := backups.Create("backups/2026/abc.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}

	if err := backups.MarkComplete(b.ID, 4096, "deadbeef"); err != nil {
		t.Fatalf("mark complete: %v", err)
	}
	got, _ := backups.GetByID(b.ID)
	if got.Status != model.BackupStatusComplete || got.SizeBytes != 4096 || got.SHA256 != "deadbeef" {
		t.Errorf("completed backup = %+v", got)
	}

	failed, _ := backups.Create("backups/2026/def.db.enc")
	if err := backups.MarkFailed(failed.ID, "upload timed out"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, _ = backups.GetByID(failed.ID)
	if got.Status != model.BackupStatusFailed || got.Error != "upload timed out" {
		t.Errorf("failed backup = %+v", got)
	}
}

func TestBackupPrune(t *testing.T) {
	backups := setupBackupTestDB(t)

	for i := 0; i < 4; i++ {
		b, err := backups.Create(fmt.Sprintf("backups/obj-%d.db.enc", i))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if err := backups.MarkComplete(b.ID, 100, "sha"); err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
	}
	pending, _ := backups.Create("backups/in-flight.db.enc")

	pruned, err := backups.PruneOlderThan(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(pruned) != 2 {
		t.Fatalf("pruned = %v, want 2 keys", pruned)
	}

	remaining, _ := backups.List(10)
	if len(remaining) != 3 {
		t.Fatalf("remaining = %d, want 2 complete + 1 pending", len(remaining))
	}
	// The in-flight row is never pruned.
	if got, _ := backups.GetByID(pending.ID); got == nil {
		t.Error("prune removed a pending backup")
	}
}
