package store

import (
	"testing"

	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, *model.User, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	alice, _ := us.CreateWithPassword("alice@example.com", "h", "Alice")
	bob, _ := us.CreateWithPassword("bob@example.com", "h", "Bob")
	return NewPushStore(db), alice, bob
}

func TestPushSubscribeUpsertsByEndpoint(t *testing.T) {
	push, alice, bob := setupPushTestDB(t)

	sub, err := push.Subscribe(alice.ID, "https://push.example.com/ep1", "p256dh-a", "auth-a", "Firefox")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.UserID != alice.ID || sub.P256dhKey != "p256dh-a" {
		t.Errorf("subscription = %+v", sub)
	}

	// Re-subscribing the same endpoint replaces keys and owner rather
	// than inserting a second row.
	again, err := push.Subscribe(bob.ID, "https://push.example.com/ep1", "p256dh-b", "auth-b", "")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("upsert created new row: %d != %d", again.ID, sub.ID)
	}
	if again.UserID != bob.ID || again.P256dhKey != "p256dh-b" {
		t.Errorf("upserted subscription = %+v", again)
	}

	if subs, _ := push.ListForUser(alice.ID); len(subs) != 0 {
		t.Errorf("alice still has %d subscriptions, want 0", len(subs))
	}
	if subs, _ := push.ListForUser(bob.ID); len(subs) != 1 {
		t.Errorf("bob has %d subscriptions, want 1", len(subs))
	}
}

func TestPushListUserIDs(t *testing.T) {
	push, alice, bob := setupPushTestDB(t)

	push.Subscribe(alice.ID, "https://push.example.com/a1", "k", "a", "")
	push.Subscribe(alice.ID, "https://push.example.com/a2", "k", "a", "")
	push.Subscribe(bob.ID, "https://push.example.com/b1", "k", "a", "")

	ids, err := push.ListUserIDs()
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("user ids = %v, want two distinct", ids)
	}
}

func TestPushDelete(t *testing.T) {
	push, alice, bob := setupPushTestDB(t)

	sub, _ := push.Subscribe(alice.ID, "https://push.example.com/ep", "k", "a", "")

	// A foreign delete is a no-op.
	if err := push.Delete(bob.ID, sub.ID); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	if subs, _ := push.ListForUser(alice.ID); len(subs) != 1 {
		t.Error("foreign delete removed alice's subscription")
	}

	if err := push.Delete(alice.ID, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if subs, _ := push.ListForUser(alice.ID); len(subs) != 0 {
		t.Error("subscription survived delete")
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	push, alice, _ := setupPushTestDB(t)

	push.Subscribe(alice.ID, "https://push.example.com/gone", "k", "a", "")
	if err := push.DeleteByEndpoint("https://push.example.com/gone"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	if subs, _ := push.ListForUser(alice.ID); len(subs) != 0 {
		t.Error("subscription survived endpoint delete")
	}
}

func TestPushSentDedup(t *testing.T) {
	push, alice, bob := setupPushTestDB(t)

	sent, err := push.WasSent(alice.ID, model.NotifTypeMaintenanceDue, "42")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("fresh notification reported as sent")
	}

	if err := push.MarkSent(alice.ID, model.NotifTypeMaintenanceDue, "42"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	// Marking twice is fine.
	if err := push.MarkSent(alice.ID, model.NotifTypeMaintenanceDue, "42"); err != nil {
		t.Fatalf("mark sent again: %v", err)
	}

	if sent, _ := push.WasSent(alice.ID, model.NotifTypeMaintenanceDue, "42"); !sent {
		t.Error("notification not recorded")
	}
	// Dedup is per user.
	if sent, _ := push.WasSent(bob.ID, model.NotifTypeMaintenanceDue, "42"); sent {
		t.Error("dedup leaked across tenants")
	}
}
