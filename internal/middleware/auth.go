package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/session"
	"github.com/rfountain/steward/internal/store"
)

// protectedPrefixes are the page subtrees that require a session.
var protectedPrefixes = []string{
	"/items",
	"/rooms",
	"/maintenance",
	"/documentation",
	"/tags",
	"/settings",
}

// publicItemPages are reachable without a session even though they sit
// under /items: the capture flow works before an account exists.
var publicItemPages = map[string]bool{
	"/items/create":    true,
	"/items/ai-upload": true,
}

func isAuthPage(path string) bool {
	return path == "/login" || path == "/signup"
}

func isProtectedPage(path string) bool {
	if path == "/" {
		return true
	}
	if publicItemPages[path] {
		return false
	}
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// resolveIdentity verifies the session cookie and maps its external
// identity to the internal tenant id. Any failure along the way means
// the request proceeds unauthenticated; handlers never see a partial
// identity.
func resolveIdentity(sessions *session.Store, users *store.UserStore, r *http.Request) (auth.Identity, bool) {
	p, err := sessions.Read(r)
	if err != nil {
		return auth.Identity{}, false
	}
	userID, err := users.ResolveTenant(p.ExternalID)
	if err != nil {
		return auth.Identity{}, false
	}
	return auth.Identity{
		UserID:     userID,
		ExternalID: p.ExternalID,
		Email:      p.Email,
		Name:       p.Name,
	}, true
}

// Gateway guards page routes: unauthenticated requests to protected
// pages redirect to /login, authenticated requests to the auth pages
// redirect home, everything else passes through. Valid sessions get
// the sliding refresh and the resolved identity on the context.
// Resource authorization stays in the stores; this is routing only.
func Gateway(sessions *session.Store, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolveIdentity(sessions, users, r)

			if isAuthPage(r.URL.Path) {
				if ok {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				if isProtectedPage(r.URL.Path) {
					http.Redirect(w, r, "/login", http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			sessions.Refresh(w, r)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireSession guards JSON API routes: no redirects, a 401 body
// instead.
func RequireSession(sessions *session.Store, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolveIdentity(sessions, users, r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin guards operator-only routes. Backups and restores touch
// the whole database file, not one tenant's rows, so the session on the
// request must belong to the configured admin account. An empty
// adminEmail locks these routes entirely.
func RequireAdmin(adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok || adminEmail == "" || !strings.EqualFold(id.Email, adminEmail) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "administrator access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
