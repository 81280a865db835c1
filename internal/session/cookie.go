package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie written on login and signup.
const CookieName = "session_token"

// Store persists tokens in an HTTP-only cookie tied to each request.
type Store struct {
	codec  *Codec
	secure bool
}

// NewStore creates a cookie store. secure should be true in production
// so the cookie is only sent over TLS.
func NewStore(codec *Codec, secure bool) *Store {
	return &Store{codec: codec, secure: secure}
}

// Codec exposes the underlying codec for direct verification.
func (s *Store) Codec() *Codec {
	return s.codec
}

// Create signs a token for the payload and sets the session cookie.
func (s *Store) Create(w http.ResponseWriter, p Payload) (Payload, error) {
	token, stamped, err := s.codec.Sign(p)
	if err != nil {
		return Payload{}, err
	}
	s.setCookie(w, token, stamped.ExpiresAt)
	return stamped, nil
}

// Read verifies the session cookie on the request. Missing or invalid
// cookies both return ErrInvalidSession.
func (s *Store) Read(r *http.Request) (Payload, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Payload{}, ErrInvalidSession
	}
	return s.codec.Verify(cookie.Value)
}

// Refresh implements sliding expiration: if the request carries a valid
// token, a renewed token is signed and re-set. Invalid or absent
// sessions are left untouched.
func (s *Store) Refresh(w http.ResponseWriter, r *http.Request) {
	p, err := s.Read(r)
	if err != nil {
		return
	}
	token, stamped, err := s.codec.Sign(p)
	if err != nil {
		return
	}
	s.setCookie(w, token, stamped.ExpiresAt)
}

// Clear deletes the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}

func (s *Store) setCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}
