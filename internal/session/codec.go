package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the session validity window. Expiry slides forward on each
// authenticated request (see Refresh).
const TTL = 7 * 24 * time.Hour

// ErrInvalidSession is returned for every failed verification: expired,
// corrupt, unsigned, or tampered tokens are indistinguishable to callers.
var ErrInvalidSession = errors.New("invalid session")

// Payload is the identity carried inside a signed session token.
type Payload struct {
	UserID     int64     `json:"user_id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Picture    string    `json:"picture,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type claims struct {
	UserID     int64  `json:"user_id"`
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture,omitempty"`
	// ExpiresAtMS duplicates the registered exp claim in epoch millis.
	// Verification checks it independently of the library's exp check.
	ExpiresAtMS int64 `json:"expires_at"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with HMAC-SHA256.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec creates a Codec from the shared signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{key: []byte(secret), now: time.Now}
}

// Sign issues a token for the payload, stamping a fresh expiry TTL from
// now. The payload's own ExpiresAt is ignored; the returned payload
// carries the stamped value.
func (c *Codec) Sign(p Payload) (string, Payload, error) {
	expiresAt := c.now().Add(TTL)
	p.ExpiresAt = expiresAt

	cl := claims{
		UserID:      p.UserID,
		ExternalID:  p.ExternalID,
		Email:       p.Email,
		Name:        p.Name,
		Picture:     p.Picture,
		ExpiresAtMS: expiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.key)
	if err != nil {
		return "", Payload{}, err
	}
	return token, p, nil
}

// Verify validates the token signature and the embedded expiry field.
// Signature validity alone is not sufficient: a token whose embedded
// expires_at has passed is rejected even if the registered exp claim
// would still admit it.
func (c *Codec) Verify(token string) (Payload, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return c.key, nil
	})
	if err != nil || !parsed.Valid {
		return Payload{}, ErrInvalidSession
	}

	if cl.ExpiresAtMS == 0 || c.now().UnixMilli() > cl.ExpiresAtMS {
		return Payload{}, ErrInvalidSession
	}

	return Payload{
		UserID:     cl.UserID,
		ExternalID: cl.ExternalID,
		Email:      cl.Email,
		Name:       cl.Name,
		Picture:    cl.Picture,
		ExpiresAt:  time.UnixMilli(cl.ExpiresAtMS),
	}, nil
}
