package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/database"
	"github.com/rfountain/steward/internal/model"
	"github.com/rfountain/steward/internal/session"
	"github.com/rfountain/steward/internal/store"
)

func setupGateway(t *testing.T) (*session.Store, *store.UserStore, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	alice, err := users.CreateWithPassword("alice@example.com", "h", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sessions := session.NewStore(session.NewCodec("test-secret"), false)
	return sessions, users, alice
}

func sessionCookie(t *testing.T, sessions *session.Store, u *model.User) *http.Cookie {
	t.Helper()
	ext := ""
	if u.ExternalID != nil {
		ext = *u.ExternalID
	}
	rec := httptest.NewRecorder()
	if _, err := sessions.Create(rec, session.Payload{
		UserID:     u.ID,
		ExternalID: ext,
		Email:      u.Email,
		Name:       u.FullName,
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	return cookies[0]
}

func TestGatewayRedirectsAnonymousToLogin(t *testing.T) {
	sessions, users, _ := setupGateway(t)
	handler := Gateway(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/", "/items/5", "/rooms", "/maintenance/3", "/documentation", "/tags", "/settings/profile"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "/login" {
			t.Errorf("%s: location = %q, want /login", path, got)
		}
	}
}

func TestGatewayWhitelistedItemPages(t *testing.T) {
	sessions, users, _ := setupGateway(t)
	handler := Gateway(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/items/create", "/items/ai-upload", "/login", "/signup"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestGatewayRedirectsAuthenticatedOffAuthPages(t *testing.T) {
	sessions, users, alice := setupGateway(t)
	cookie := sessionCookie(t, sessions, alice)

	handler := Gateway(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/login", "/signup"} {
		req := httptest.NewRequest("GET", path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "/" {
			t.Errorf("%s: location = %q, want /", path, got)
		}
	}
}

func TestGatewayPassesIdentityAndRefreshes(t *testing.T) {
	sessions, users, alice := setupGateway(t)
	cookie := sessionCookie(t, sessions, alice)

	var got auth.Identity
	handler := Gateway(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/items/5", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != alice.ID || got.Email != "alice@example.com" {
		t.Errorf("identity = %+v", got)
	}

	// Sliding expiration re-sets the cookie on every authenticated request.
	refreshed := rec.Result().Cookies()
	if len(refreshed) != 1 || refreshed[0].Name != session.CookieName || refreshed[0].Value == "" {
		t.Errorf("expected refreshed session cookie, got %+v", refreshed)
	}
}

func TestGatewayUnresolvableTenantIsAnonymous(t *testing.T) {
	sessions, users, alice := setupGateway(t)

	// A signed session whose external id no longer maps to a user.
	rec := httptest.NewRecorder()
	sessions.Create(rec, session.Payload{
		UserID:     alice.ID,
		ExternalID: "local|gone",
		Email:      alice.Email,
	})
	cookie := rec.Result().Cookies()[0]

	handler := Gateway(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/items/5", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	handler.ServeHTTP(out, req)

	if out.Code != http.StatusSeeOther || out.Header().Get("Location") != "/login" {
		t.Errorf("status = %d location = %q, want 303 /login", out.Code, out.Header().Get("Location"))
	}
}

func TestRequireSession(t *testing.T) {
	sessions, users, alice := setupGateway(t)
	cookie := sessionCookie(t, sessions, alice)

	var got auth.Identity
	handler := RequireSession(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie: 401, no redirect.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/items", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	// Valid cookie: passes with identity.
	req := httptest.NewRequest("GET", "/api/items", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != alice.ID {
		t.Errorf("identity = %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin("admin@example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	withEmail := func(email string) *http.Request {
		req := httptest.NewRequest("GET", "/api/backups", nil)
		return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 1, Email: email}))
	}

	// A regular tenant session is not enough.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withEmail("mallory@example.com"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("tenant status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	// No identity at all.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/backups", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("anonymous status = %d, want 403", rec.Code)
	}

	// The configured admin passes, regardless of email case.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withEmail("Admin@Example.com"))
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}

func TestRequireAdminUnconfigured(t *testing.T) {
	handler := RequireAdmin("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/backups/1/restore", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 1, Email: "anyone@example.com"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
