package store

import (
	"database/sql"
	"fmt"

	"github.com/rfountain/steward/internal/model"
)

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func scanDocument(scanner interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var description, content, category sql.NullString

	err := scanner.Scan(
		&d.ID, &d.UserID, &d.Title, &description, &content, &category,
		&d.Status, &d.Version, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Description = description.String
	d.Content = content.String
	d.Category = category.String
	return &d, nil
}

const documentCols = `id, user_id, title, description, content, category, status, version, created_at, updated_at`

// Create inserts a document and its initial version row in one
// transaction.
func (s *DocumentStore) Create(userID int64, title, description, content, category, status string) (*model.Document, error) {
	if status == "" {
		status = "draft"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO documents (user_id, title, description, content, category, status) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, title, nullStr(description), nullStr(content), nullStr(category), status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO document_versions (document_id, version_number, content, change_notes) VALUES (?, 1, ?, 'Initial version')`,
		id, nullStr(content),
	)
	if err != nil {
		return nil, fmt.Errorf("insert document version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *DocumentStore) GetByID(userID, id int64) (*model.Document, error) {
	row := s.db.QueryRow(`SELECT `+documentCols+` FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) List(userID int64) ([]model.Document, error) {
	rows, err := s.db.Query(
		`SELECT `+documentCols+` FROM documents WHERE user_id = ? ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// Update writes the new content and appends a version row, bumping the
// document's version counter, all in one transaction.
func (s *DocumentStore) Update(userID, id int64, title, description, content, category, status, changeNotes string) (*model.Document, error) {
	existing, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	newVersion := existing.Version + 1
	_, err = tx.Exec(
		`UPDATE documents SET title = ?, description = ?, content = ?, category = ?, status = ?, version = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		title, nullStr(description), nullStr(content), nullStr(category), status, newVersion, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO document_versions (document_id, version_number, content, change_notes) VALUES (?, ?, ?, ?)`,
		id, newVersion, nullStr(content), nullStr(changeNotes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert document version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *DocumentStore) ListVersions(userID, documentID int64) ([]model.DocumentVersion, error) {
	rows, err := s.db.Query(
		`SELECT v.id, v.document_id, v.version_number, v.content, v.change_notes, v.created_at
		 FROM document_versions v
		 JOIN documents d ON d.id = v.document_id
		 WHERE v.document_id = ? AND d.user_id = ?
		 ORDER BY v.version_number DESC`,
		documentID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list document versions: %w", err)
	}
	defer rows.Close()

	var versions []model.DocumentVersion
	for rows.Next() {
		var v model.DocumentVersion
		var content, changeNotes sql.NullString
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &content, &changeNotes, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		v.Content = content.String
		v.ChangeNotes = changeNotes.String
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *DocumentStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
