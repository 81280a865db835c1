package store

import (
	"testing"

	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
)

// setupInventoryDB creates the full store set with two tenants, for
// isolation tests.
func setupInventoryDB(t *testing.T) (*ItemStore, *RoomStore, *model.User, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	alice, err := us.CreateWithPassword("alice@example.com", "h", "Alice")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := us.CreateWithPassword("bob@example.com", "h", "Bob")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return NewItemStore(db), NewRoomStore(db), alice, bob
}

func TestItemCRUD(t *testing.T) {
	items, _, alice, _ := setupInventoryDB(t)

	price := 499.99
	it, err := items.Create(alice.ID, ItemDraft{
		Name:          "Espresso machine",
		Description:   "Counter-top espresso machine",
		Category:      "Appliances",
		PurchasePrice: &price,
		Condition:     "good",
	}, nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.Name != "Espresso machine" {
		t.Errorf("name = %q, want %q", it.Name, "Espresso machine")
	}
	if it.UserID != alice.ID {
		t.Errorf("user id = %d, want %d", it.UserID, alice.ID)
	}
	if it.PurchasePrice == nil || *it.PurchasePrice != price {
		t.Error("expected purchase price to round-trip")
	}
	if it.RoomID != nil {
		t.Error("expected no room on creation")
	}

	got, err := items.GetByID(alice.ID, it.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil || got.Category != "Appliances" {
		t.Fatalf("got = %+v, want category Appliances", got)
	}

	updated, err := items.Update(alice.ID, it.ID, ItemDraft{
		Name:      "Espresso machine",
		Condition: "fair",
		Notes:     "descaled 2026-08",
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Condition != "fair" {
		t.Errorf("condition = %q, want %q", updated.Condition, "fair")
	}
	if updated.Notes != "descaled 2026-08" {
		t.Errorf("notes = %q", updated.Notes)
	}

	if err := items.Delete(alice.ID, it.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	got, err = items.GetByID(alice.ID, it.ID)
	if err != nil {
		t.Fatalf("get deleted item: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestItemCreateWithRoom(t *testing.T) {
	items, rooms, alice, _ := setupInventoryDB(t)

	room, err := rooms.Create(alice.ID, "Kitchen", "", 1, nil, "kitchen")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	it, err := items.Create(alice.ID, ItemDraft{Name: "Toaster"}, &room.ID)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.RoomID == nil || *it.RoomID != room.ID {
		t.Fatalf("room id = %v, want %d", it.RoomID, room.ID)
	}
	if it.RoomName != "Kitchen" {
		t.Errorf("room name = %q, want Kitchen", it.RoomName)
	}

	byRoom, err := items.ListByRoom(alice.ID, room.ID)
	if err != nil {
		t.Fatalf("list by room: %v", err)
	}
	if len(byRoom) != 1 {
		t.Errorf("items in room = %d, want 1", len(byRoom))
	}
}

// Creating an item with a room the tenant does not own must abort the
// whole operation: no orphaned item row may remain.
func TestItemCreateForeignRoomRollsBack(t *testing.T) {
	items, rooms, alice, bob := setupInventoryDB(t)

	bobsRoom, err := rooms.Create(bob.ID, "Bob's office", "", 2, nil, "office")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	if _, err := items.Create(alice.ID, ItemDraft{Name: "Lamp"}, &bobsRoom.ID); err == nil {
		t.Fatal("expected error assigning another tenant's room")
	}

	list, err := items.List(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("items = %d, want 0 (insert rolled back)", len(list))
	}
}

func TestItemTenantIsolation(t *testing.T) {
	items, _, alice, bob := setupInventoryDB(t)

	it, err := items.Create(alice.ID, ItemDraft{Name: "Record player"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Bob cannot see it.
	got, err := items.GetByID(bob.ID, it.ID)
	if err != nil {
		t.Fatalf("get as bob: %v", err)
	}
	if got != nil {
		t.Error("expected nil: bob must not see alice's item")
	}

	list, err := items.List(bob.ID)
	if err != nil {
		t.Fatalf("list as bob: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob's listing = %d items, want 0", len(list))
	}

	// Bob cannot mutate it.
	if _, err := items.Update(bob.ID, it.ID, ItemDraft{Name: "Stolen"}); err != nil {
		t.Fatalf("update as bob: %v", err)
	}
	after, err := items.GetByID(alice.ID, it.ID)
	if err != nil {
		t.Fatalf("get after foreign update: %v", err)
	}
	if after.Name != "Record player" {
		t.Errorf("name = %q, foreign update must not apply", after.Name)
	}

	// Bob cannot delete it.
	if err := items.Delete(bob.ID, it.ID); err != nil {
		t.Fatalf("delete as bob: %v", err)
	}
	after, err = items.GetByID(alice.ID, it.ID)
	if err != nil {
		t.Fatalf("get after foreign delete: %v", err)
	}
	if after == nil {
		t.Error("foreign delete must not remove the row")
	}
}

func TestItemAssignRoom(t *testing.T) {
	items, rooms, alice, bob := setupInventoryDB(t)

	room, _ := rooms.Create(alice.ID, "Den", "", 1, nil, "")
	it, _ := items.Create(alice.ID, ItemDraft{Name: "Bookshelf"}, nil)

	moved, err := items.AssignRoom(alice.ID, it.ID, &room.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if moved.RoomID == nil || *moved.RoomID != room.ID {
		t.Fatal("expected room assignment")
	}

	cleared, err := items.AssignRoom(alice.ID, it.ID, nil)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if cleared.RoomID != nil {
		t.Error("expected nil room after unassign")
	}

	bobsRoom, _ := rooms.Create(bob.ID, "Garage", "", 1, nil, "")
	if _, err := items.AssignRoom(alice.ID, it.ID, &bobsRoom.ID); err == nil {
		t.Error("expected error assigning another tenant's room")
	}
}
