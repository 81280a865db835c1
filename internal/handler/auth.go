package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/identity"
	"github.com/rfountain/steward/internal/model"
	"github.com/rfountain/steward/internal/session"
	"github.com/rfountain/steward/internal/store"
)

const minPasswordLength = 8

type AuthHandler struct {
	users    *store.UserStore
	sessions *session.Store
	idp      *identity.Client
	baseURL  string
	logger   *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *session.Store, idp *identity.Client, baseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    us,
		sessions: ss,
		idp:      idp,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func isDuplicateEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

func loginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

func signupError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/signup?error="+code, http.StatusSeeOther)
}

func (h *AuthHandler) createSession(w http.ResponseWriter, u *model.User) error {
	ext := ""
	if u.ExternalID != nil {
		ext = *u.ExternalID
	}
	_, err := h.sessions.Create(w, session.Payload{
		UserID:     u.ID,
		ExternalID: ext,
		Email:      u.Email,
		Name:       u.FullName,
	})
	return err
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		loginError(w, r, "missing_credentials")
		return
	}

	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		loginError(w, r, "login_failed")
		return
	}
	if user == nil || user.PasswordHash == nil {
		loginError(w, r, "invalid_credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		loginError(w, r, "invalid_credentials")
		return
	}

	if err := h.createSession(w, user); err != nil {
		h.logger.Error("login session", "error", err)
		loginError(w, r, "login_failed")
		return
	}
	if err := h.users.TouchLastLogin(user.ID); err != nil {
		h.logger.Error("touch last login", "error", err)
	}

	http.Redirect(w, r, "/?login=success", http.StatusSeeOther)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirmPassword")
	fullName := strings.TrimSpace(r.FormValue("fullName"))

	if email == "" || password == "" {
		signupError(w, r, "missing_credentials")
		return
	}
	if password != confirm {
		signupError(w, r, "password_mismatch")
		return
	}
	if len(password) < minPasswordLength {
		signupError(w, r, "password_too_short")
		return
	}

	existing, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("signup lookup", "error", err)
		signupError(w, r, "signup_failed")
		return
	}
	if existing != nil {
		signupError(w, r, "email_exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("signup hash", "error", err)
		signupError(w, r, "signup_failed")
		return
	}

	user, err := h.users.CreateWithPassword(email, string(hash), fullName)
	if err != nil {
		// Concurrent signups can slip past the lookup above and land
		// on the UNIQUE constraint instead.
		if isDuplicateEmail(err) {
			signupError(w, r, "email_exists")
			return
		}
		h.logger.Error("signup create", "error", err)
		signupError(w, r, "signup_failed")
		return
	}

	if err := h.createSession(w, user); err != nil {
		h.logger.Error("signup session", "error", err)
		signupError(w, r, "signup_failed")
		return
	}

	http.Redirect(w, r, "/?signup=success", http.StatusSeeOther)
}

// FederatedLogin bounces the browser to the identity provider. The
// state parameter ties the callback to this flow; we use a random
// value since there is no cross-request storage to validate against
// beyond the provider echoing it back.
func (h *AuthHandler) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	h.federatedRedirect(w, r, "")
}

func (h *AuthHandler) FederatedSignup(w http.ResponseWriter, r *http.Request) {
	h.federatedRedirect(w, r, "signup")
}

func (h *AuthHandler) federatedRedirect(w http.ResponseWriter, r *http.Request, screenHint string) {
	if !h.idp.Configured() {
		loginError(w, r, "login_failed")
		return
	}
	dest := h.idp.AuthorizeURL(
		h.baseURL+"/api/auth/callback",
		uuid.NewString(),
		r.URL.Query().Get("connection"),
		screenHint,
	)
	http.Redirect(w, r, dest, http.StatusFound)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		loginError(w, r, "login_failed")
		return
	}

	token, err := h.idp.Exchange(r.Context(), code, h.baseURL+"/api/auth/callback")
	if err != nil {
		h.logger.Error("callback exchange", "error", err)
		loginError(w, r, "login_failed")
		return
	}

	profile, err := h.idp.UserInfo(r.Context(), token)
	if err != nil {
		h.logger.Error("callback userinfo", "error", err)
		loginError(w, r, "login_failed")
		return
	}

	user, err := h.users.UpsertFederated(profile.Sub, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		h.logger.Error("callback upsert", "error", err)
		loginError(w, r, "login_failed")
		return
	}

	if err := h.createSession(w, user); err != nil {
		h.logger.Error("callback session", "error", err)
		loginError(w, r, "login_failed")
		return
	}
	if err := h.users.TouchLastLogin(user.ID); err != nil {
		h.logger.Error("touch last login", "error", err)
	}

	http.Redirect(w, r, "/?login=success", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Session reports the current session as JSON, or 401 when the request
// carries none. Identity is resolved by the middleware before this
// handler runs.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     id.UserID,
		"external_id": id.ExternalID,
		"email":       id.Email,
		"name":        id.Name,
	})
}
