package store

import (
	"testing"

	"github.com/rfountain/steward/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestCreateWithPassword(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.CreateWithPassword("alice@example.com", "hashhash", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.FullName != "Alice" {
		t.Errorf("full name = %q, want %q", u.FullName, "Alice")
	}
	if u.PasswordHash == nil || *u.PasswordHash != "hashhash" {
		t.Error("expected password hash to round-trip")
	}
	if u.ExternalID == nil || len(*u.ExternalID) < len("local|") {
		t.Fatal("expected synthetic external id")
	}
	if (*u.ExternalID)[:6] != "local|" {
		t.Errorf("external id = %q, want local| prefix", *u.ExternalID)
	}
	if u.LastLogin == nil {
		t.Error("expected last_login set on creation")
	}
}

func TestDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.CreateWithPassword("a@b.c", "h1", "A"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := us.CreateWithPassword("a@b.c", "h2", "B"); err == nil {
		t.Error("expected unique violation for duplicate email")
	}
}

func TestUpsertFederated(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.UpsertFederated("auth0|sub1", "fed@example.com", "Fed User", "https://example.com/p.png")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.PasswordHash != nil {
		t.Error("federated account should have no password hash")
	}
	if u.AvatarURL == nil || *u.AvatarURL != "https://example.com/p.png" {
		t.Error("expected avatar url")
	}

	// Second upsert refreshes the profile instead of inserting.
	u2, err := us.UpsertFederated("auth0|sub1", "fed2@example.com", "Fed Renamed", "")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if u2.ID != u.ID {
		t.Errorf("id = %d, want %d (same row)", u2.ID, u.ID)
	}
	if u2.Email != "fed2@example.com" {
		t.Errorf("email = %q, want refreshed value", u2.Email)
	}
	if u2.FullName != "Fed Renamed" {
		t.Errorf("full name = %q, want refreshed value", u2.FullName)
	}
}

func TestResolveTenant(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.CreateWithPassword("alice@example.com", "h", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, err := us.ResolveTenant(*u.ExternalID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != u.ID {
		t.Errorf("resolved id = %d, want %d", id, u.ID)
	}

	if _, err := us.ResolveTenant("auth0|nobody"); err != ErrTenantNotFound {
		t.Errorf("err = %v, want ErrTenantNotFound", err)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByEmail("missing@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u != nil {
		t.Error("expected nil for missing user")
	}
}
