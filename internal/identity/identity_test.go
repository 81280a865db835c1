package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(Config{Domain: "id.example.com", ClientID: "cid", ClientSecret: "secret"})

	raw := c.AuthorizeURL("https://app.example.com/api/auth/callback", "st4te", "google-oauth2", "signup")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "id.example.com" || u.Path != "/authorize" {
		t.Errorf("url = %s", raw)
	}
	q := u.Query()
	for k, want := range map[string]string{
		"response_type": "code",
		"client_id":     "cid",
		"redirect_uri":  "https://app.example.com/api/auth/callback",
		"scope":         "openid profile email",
		"state":         "st4te",
		"connection":    "google-oauth2",
		"screen_hint":   "signup",
	} {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestAuthorizeURLOmitsEmptyParams(t *testing.T) {
	c := NewClient(Config{Domain: "id.example.com", ClientID: "cid", ClientSecret: "secret"})

	u, _ := url.Parse(c.AuthorizeURL("https://app.example.com/cb", "s", "", ""))
	q := u.Query()
	if q.Has("connection") || q.Has("screen_hint") {
		t.Errorf("query carries empty params: %s", u.RawQuery)
	}
}

func TestExchangeAndUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			var req tokenRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.GrantType != "authorization_code" || req.Code != "c0de" || req.ClientSecret != "secret" {
				t.Errorf("token request = %+v", req)
			}
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "at-123", TokenType: "Bearer"})
		case "/userinfo":
			if got := r.Header.Get("Authorization"); got != "Bearer at-123" {
				t.Errorf("authorization = %q", got)
			}
			json.NewEncoder(w).Encode(Profile{
				Sub:   "auth0|abc123",
				Email: "alice@example.com",
				Name:  "Alice",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(Config{Domain: "id.example.com", ClientID: "cid", ClientSecret: "secret", BaseURL: server.URL})

	token, err := c.Exchange(context.Background(), "c0de", "https://app.example.com/cb")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token != "at-123" {
		t.Errorf("token = %q", token)
	}

	profile, err := c.UserInfo(context.Background(), token)
	if err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	if profile.Sub != "auth0|abc123" || profile.Email != "alice@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestExchangeRejectedCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(Config{Domain: "id.example.com", ClientID: "cid", ClientSecret: "secret", BaseURL: server.URL})

	if _, err := c.Exchange(context.Background(), "bad", "https://app.example.com/cb"); err == nil {
		t.Fatal("expected error on rejected code")
	} else if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestExchangeUnconfigured(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.Exchange(context.Background(), "c", "r"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
