package store

import (
	"testing"

	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
)

func setupMediaTestDB(t *testing.T) (*MediaStore, *ItemStore, *model.User, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	alice, _ := us.CreateWithPassword("alice@example.com", "h", "Alice")
	bob, _ := us.CreateWithPassword("bob@example.com", "h", "Bob")
	return NewMediaStore(db), NewItemStore(db), alice, bob
}

func TestMediaCRUD(t *testing.T) {
	media, items, alice, _ := setupMediaTestDB(t)

	it, _ := items.Create(alice.ID, ItemDraft{Name: "Sofa"}, nil)
	size := int64(204800)

	m, err := media.Create(alice.ID, it.ID, "", "uploads/abc.jpg", "sofa.jpg", &size, "image/jpeg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.MediaType != "photo" {
		t.Errorf("default media type = %q, want photo", m.MediaType)
	}
	if m.FileSize == nil || *m.FileSize != size {
		t.Errorf("file size = %v", m.FileSize)
	}

	list, err := media.ListForItem(alice.ID, it.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].FileName != "sofa.jpg" {
		t.Fatalf("list = %+v, want one sofa.jpg", list)
	}

	if err := media.Delete(alice.ID, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := media.GetByID(alice.ID, m.ID); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestMediaCreateRejectsForeignItem(t *testing.T) {
	media, items, alice, bob := setupMediaTestDB(t)

	it, _ := items.Create(alice.ID, ItemDraft{Name: "TV"}, nil)
	if _, err := media.Create(bob.ID, it.ID, "photo", "uploads/x.jpg", "x.jpg", nil, ""); err == nil {
		t.Error("expected error attaching media to a foreign item")
	}
}

func TestMediaTenantIsolation(t *testing.T) {
	media, items, alice, bob := setupMediaTestDB(t)

	it, _ := items.Create(alice.ID, ItemDraft{Name: "Bike"}, nil)
	m, _ := media.Create(alice.ID, it.ID, "photo", "uploads/bike.jpg", "bike.jpg", nil, "image/jpeg")

	if got, _ := media.GetByID(bob.ID, m.ID); got != nil {
		t.Error("bob must not see alice's media")
	}
	if list, _ := media.ListForItem(bob.ID, it.ID); len(list) != 0 {
		t.Errorf("bob's listing = %d, want 0", len(list))
	}

	if err := media.Delete(bob.ID, m.ID); err != nil {
		t.Fatalf("delete foreign: %v", err)
	}
	if got, _ := media.GetByID(alice.ID, m.ID); got == nil {
		t.Error("foreign delete removed alice's media")
	}
}

func TestMediaItemDeleteCascades(t *testing.T) {
	media, items, alice, _ := setupMediaTestDB(t)

	it, _ := items.Create(alice.ID, ItemDraft{Name: "Lamp"}, nil)
	m, _ := media.Create(alice.ID, it.ID, "photo", "uploads/lamp.jpg", "lamp.jpg", nil, "")

	if err := items.Delete(alice.ID, it.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if got, _ := media.GetByID(alice.ID, m.ID); got != nil {
		t.Error("media survived item delete")
	}
}
