package store

import (
	"database/sql"
	"fmt"

	"github.com/rfountain/steward/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	var sha, errMsg sql.NullString
	err := scanner.Scan(&b.ID, &b.ObjectKey, &b.SizeBytes, &sha, &b.Status, &errMsg, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.SHA256 = sha.String
	b.Error = errMsg.String
	return &b, nil
}

const backupCols = `id, object_key, size_bytes, sha256, status, error, created_at`

func (s *BackupStore) Create(objectKey string) (*model.Backup, error) {
	result, err := s.db.Exec(`INSERT INTO backups (object_key) VALUES (?)`, objectKey)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) MarkComplete(id, sizeBytes int64, sha256 string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, sha256 = ? WHERE id = ?`,
		model.BackupStatusComplete, sizeBytes, sha256, id,
	)
	if err != nil {
		return fmt.Errorf("mark backup complete: %w", err)
	}
	return nil
}

func (s *BackupStore) MarkFailed(id int64, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error = ? WHERE id = ?`,
		model.BackupStatusFailed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("mark backup failed: %w", err)
	}
	return nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

// PruneOlderThan deletes history rows beyond the newest keep entries
// and returns their object keys so the caller can delete the remote
// objects too.
func (s *BackupStore) PruneOlderThan(keep int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT id, object_key FROM backups
		 WHERE status = ? AND id NOT IN (
		   SELECT id FROM backups WHERE status = ? ORDER BY created_at DESC LIMIT ?
		 )`,
		model.BackupStatusComplete, model.BackupStatusComplete, keep,
	)
	if err != nil {
		return nil, fmt.Errorf("prune query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var keys []string
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scan prune row: %w", err)
		}
		ids = append(ids, id)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete pruned backup: %w", err)
		}
	}
	return keys, nil
}
