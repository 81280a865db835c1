package store

import (
	"testing"
)

func TestRoomCRUD(t *testing.T) {
	items, rooms, alice, _ := setupInventoryDB(t)

	area := 180.0
	room, err := rooms.Create(alice.ID, "Living room", "Front of the house", 1, &area, "living")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Name != "Living room" {
		t.Errorf("name = %q", room.Name)
	}
	if room.AreaSqft == nil || *room.AreaSqft != area {
		t.Error("expected area to round-trip")
	}
	if room.ItemCount != 0 {
		t.Errorf("item count = %d, want 0", room.ItemCount)
	}

	// Item count reflects assignments.
	if _, err := items.Create(alice.ID, ItemDraft{Name: "Sofa"}, &room.ID); err != nil {
		t.Fatalf("create item: %v", err)
	}
	got, err := rooms.GetByID(alice.ID, room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.ItemCount != 1 {
		t.Errorf("item count = %d, want 1", got.ItemCount)
	}

	updated, err := rooms.Update(alice.ID, room.ID, "Lounge", "", 1, nil, "living")
	if err != nil {
		t.Fatalf("update room: %v", err)
	}
	if updated.Name != "Lounge" {
		t.Errorf("name = %q, want Lounge", updated.Name)
	}

	if err := rooms.Delete(alice.ID, room.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	got, err = rooms.GetByID(alice.ID, room.ID)
	if err != nil {
		t.Fatalf("get deleted room: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}

	// The room's item survives with room_id cleared.
	list, err := items.List(alice.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("items = %d, want 1", len(list))
	}
	if list[0].RoomID != nil {
		t.Error("expected room_id cleared after room delete")
	}
}

func TestRoomTenantIsolation(t *testing.T) {
	_, rooms, alice, bob := setupInventoryDB(t)

	room, err := rooms.Create(alice.ID, "Attic", "", 3, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := rooms.GetByID(bob.ID, room.ID)
	if err != nil {
		t.Fatalf("get as bob: %v", err)
	}
	if got != nil {
		t.Error("expected nil: bob must not see alice's room")
	}

	list, err := rooms.List(bob.ID)
	if err != nil {
		t.Fatalf("list as bob: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob's rooms = %d, want 0", len(list))
	}

	if err := rooms.Delete(bob.ID, room.ID); err != nil {
		t.Fatalf("delete as bob: %v", err)
	}
	if got, _ := rooms.GetByID(alice.ID, room.ID); got == nil {
		t.Error("foreign delete must not remove the row")
	}
}

func TestRoomListOrdering(t *testing.T) {
	_, rooms, alice, _ := setupInventoryDB(t)

	rooms.Create(alice.ID, "Bedroom", "", 2, nil, "")
	rooms.Create(alice.ID, "Kitchen", "", 1, nil, "")
	rooms.Create(alice.ID, "Attic", "", 3, nil, "")
	rooms.Create(alice.ID, "Den", "", 1, nil, "")

	list, err := rooms.List(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Den", "Kitchen", "Bedroom", "Attic"}
	if len(list) != len(want) {
		t.Fatalf("rooms = %d, want %d", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Name, name)
		}
	}
}
