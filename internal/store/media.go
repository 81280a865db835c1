package store

import (
	"database/sql"
	"fmt"

	"github.com/rfountain/steward/internal/model"
)

// MediaStore manages file references attached to items. Tenancy is
// enforced through the item join: media has no user_id column of its
// own.
type MediaStore struct {
	db *sql.DB
}

func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

func scanMedia(scanner interface{ Scan(...any) error }) (*model.Media, error) {
	var m model.Media
	var fileSize sql.NullInt64
	var mimeType sql.NullString

	err := scanner.Scan(&m.ID, &m.ItemID, &m.MediaType, &m.FilePath, &m.FileName, &fileSize, &mimeType, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if fileSize.Valid {
		m.FileSize = &fileSize.Int64
	}
	m.MimeType = mimeType.String
	return &m, nil
}

const mediaCols = `m.id, m.item_id, m.media_type, m.file_path, m.file_name, m.file_size, m.mime_type, m.created_at`

func (s *MediaStore) Create(userID, itemID int64, mediaType, filePath, fileName string, fileSize *int64, mimeType string) (*model.Media, error) {
	var owner int64
	err := s.db.QueryRow(`SELECT user_id FROM items WHERE id = ?`, itemID).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != userID) {
		return nil, fmt.Errorf("create media: item %d not found", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("create media lookup: %w", err)
	}

	if mediaType == "" {
		mediaType = "photo"
	}
	var size sql.NullInt64
	if fileSize != nil {
		size = sql.NullInt64{Int64: *fileSize, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO media (item_id, media_type, file_path, file_name, file_size, mime_type) VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, mediaType, filePath, fileName, size, nullStr(mimeType),
	)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *MediaStore) GetByID(userID, id int64) (*model.Media, error) {
	row := s.db.QueryRow(
		`SELECT `+mediaCols+` FROM media m JOIN items i ON i.id = m.item_id WHERE m.id = ? AND i.user_id = ?`,
		id, userID,
	)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

func (s *MediaStore) ListForItem(userID, itemID int64) ([]model.Media, error) {
	rows, err := s.db.Query(
		`SELECT `+mediaCols+` FROM media m
		 JOIN items i ON i.id = m.item_id
		 WHERE m.item_id = ? AND i.user_id = ?
		 ORDER BY m.created_at`,
		itemID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var media []model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, *m)
	}
	return media, rows.Err()
}

func (s *MediaStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(
		`DELETE FROM media WHERE id = ? AND item_id IN (SELECT id FROM items WHERE user_id = ?)`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
