package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured is returned when no identity provider is set up;
// the app then only offers local email/password accounts.
var ErrNotConfigured = errors.New("identity: provider not configured")

// Config holds identity provider settings from environment variables.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	BaseURL      string // defaults to https://<domain>
}

// Profile is the subset of the provider's userinfo claims we keep.
type Profile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Client talks to an OIDC-style identity provider for federated login.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" && cfg.Domain != "" {
		cfg.BaseURL = "https://" + cfg.Domain
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether federated login is available.
func (c *Client) Configured() bool {
	return c.cfg.Domain != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// AuthorizeURL builds the provider's authorization redirect.
// connection preselects a provider (e.g. "google-oauth2"); screenHint
// "signup" opens the provider's signup screen instead of login.
func (c *Client) AuthorizeURL(redirectURI, state, connection, screenHint string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "openid profile email")
	q.Set("state", state)
	if connection != "" {
		q.Set("connection", connection)
	}
	if screenHint != "" {
		q.Set("screen_hint", screenHint)
	}
	return c.cfg.BaseURL + "/authorize?" + q.Encode()
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(tokenRequest{
		GrantType:    "authorization_code",
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Code:         code,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}
	return tr.AccessToken, nil
}

// UserInfo fetches the provider's profile for an access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Sub == "" {
		return nil, fmt.Errorf("userinfo missing sub claim")
	}
	return &p, nil
}
