package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rfountain/steward/internal/model"
)

// ErrTenantNotFound is returned when an external identity has no
// matching user row. Callers must abort rather than fall back to an
// unscoped query.
var ErrTenantNotFound = errors.New("tenant not found")

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var externalID, passwordHash, avatarURL sql.NullString
	var lastLogin sql.NullTime

	err := scanner.Scan(
		&u.ID, &externalID, &u.Email, &passwordHash, &u.FullName,
		&avatarURL, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	if externalID.Valid {
		u.ExternalID = &externalID.String
	}
	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

const userCols = `id, external_id, email, password_hash, full_name, avatar_url, created_at, updated_at, last_login`

// CreateWithPassword creates a password-based account. A synthetic
// external id keeps the tenant-resolution path uniform with federated
// accounts.
func (s *UserStore) CreateWithPassword(email, passwordHash, fullName string) (*model.User, error) {
	externalID := "local|" + uuid.NewString()

	result, err := s.db.Exec(
		`INSERT INTO users (external_id, email, password_hash, full_name, last_login) VALUES (?, ?, ?, ?, datetime('now'))`,
		externalID, email, passwordHash, fullName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// UpsertFederated creates or refreshes a federated account keyed by the
// provider subject, updating profile fields and last_login.
func (s *UserStore) UpsertFederated(externalID, email, fullName, avatarURL string) (*model.User, error) {
	var avatar sql.NullString
	if avatarURL != "" {
		avatar = sql.NullString{String: avatarURL, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO users (external_id, email, full_name, avatar_url, last_login)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (external_id) DO UPDATE SET
		   email = excluded.email,
		   full_name = excluded.full_name,
		   avatar_url = excluded.avatar_url,
		   last_login = datetime('now'),
		   updated_at = datetime('now')`,
		externalID, email, fullName, avatar,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetByExternalID(externalID)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByExternalID(externalID string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

// ResolveTenant maps an external identity to the internal numeric user
// id every query is scoped by.
func (s *UserStore) ResolveTenant(externalID string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM users WHERE external_id = ?`, externalID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrTenantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve tenant: %w", err)
	}
	return id, nil
}

func (s *UserStore) TouchLastLogin(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET last_login = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
