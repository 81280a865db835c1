package store

import (
	"testing"

	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
)

func setupDocumentTestDB(t *testing.T) (*DocumentStore, *model.User, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	alice, _ := us.CreateWithPassword("alice@example.com", "h", "Alice")
	bob, _ := us.CreateWithPassword("bob@example.com", "h", "Bob")
	return NewDocumentStore(db), alice, bob
}

func TestDocumentCreateSeedsInitialVersion(t *testing.T) {
	docs, alice, _ := setupDocumentTestDB(t)

	d, err := docs.Create(alice.ID, "Boiler manual", "Service notes", "Bleed radiators yearly", "manuals", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("version = %d, want 1", d.Version)
	}
	if d.Status != "draft" {
		t.Errorf("default status = %q, want draft", d.Status)
	}

	versions, err := docs.ListVersions(alice.ID, d.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("versions = %d, want 1", len(versions))
	}
	if versions[0].VersionNumber != 1 || versions[0].ChangeNotes != "Initial version" {
		t.Errorf("initial version = %+v", versions[0])
	}
	if versions[0].Content != "Bleed radiators yearly" {
		t.Errorf("version content = %q", versions[0].Content)
	}
}

func TestDocumentUpdateBumpsVersion(t *testing.T) {
	docs, alice, _ := setupDocumentTestDB(t)

	d, _ := docs.Create(alice.ID, "Warranty terms", "", "v1 text", "", "published")

	updated, err := docs.Update(alice.ID, d.ID, "Warranty terms", "", "v2 text", "", "published", "Added exclusions")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
	if updated.Content != "v2 text" {
		t.Errorf("content = %q", updated.Content)
	}

	versions, _ := docs.ListVersions(alice.ID, d.ID)
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	// Newest first.
	if versions[0].VersionNumber != 2 || versions[0].ChangeNotes != "Added exclusions" {
		t.Errorf("latest version = %+v", versions[0])
	}
	if versions[1].Content != "v1 text" {
		t.Errorf("prior content = %q", versions[1].Content)
	}
}

func TestDocumentDeleteCascadesVersions(t *testing.T) {
	docs, alice, _ := setupDocumentTestDB(t)

	d, _ := docs.Create(alice.ID, "Old notes", "", "text", "", "")
	if err := docs.Delete(alice.ID, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := docs.GetByID(alice.ID, d.ID); got != nil {
		t.Error("expected nil after delete")
	}
	if versions, _ := docs.ListVersions(alice.ID, d.ID); len(versions) != 0 {
		t.Errorf("versions after delete = %d, want 0", len(versions))
	}
}

func TestDocumentTenantIsolation(t *testing.T) {
	docs, alice, bob := setupDocumentTestDB(t)

	d, _ := docs.Create(alice.ID, "Private inventory list", "", "secret", "", "")

	if got, _ := docs.GetByID(bob.ID, d.ID); got != nil {
		t.Error("bob must not see alice's document")
	}
	if list, _ := docs.List(bob.ID); len(list) != 0 {
		t.Errorf("bob's documents = %d, want 0", len(list))
	}
	if versions, _ := docs.ListVersions(bob.ID, d.ID); len(versions) != 0 {
		t.Errorf("bob sees %d versions, want 0", len(versions))
	}
	if got, err := docs.Update(bob.ID, d.ID, "x", "", "", "", "draft", ""); err != nil || got != nil {
		t.Errorf("update foreign document = %v, %v; want nil, nil", got, err)
	}
	if err := docs.Delete(bob.ID, d.ID); err != nil {
		t.Fatalf("delete foreign: %v", err)
	}
	if got, _ := docs.GetByID(alice.ID, d.ID); got == nil {
		t.Error("foreign delete removed alice's document")
	}
}
