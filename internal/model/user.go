package model

import "time"

// User is the tenant: every inventory row traces ownership back to a
// user id. Password accounts carry a password hash and a synthetic
// external id; federated accounts carry the provider subject and no
// password.
type User struct {
	ID           int64      `json:"id"`
	ExternalID   *string    `json:"external_id,omitempty"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	FullName     string     `json:"full_name"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
