package model

import "time"

type Document struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DocumentVersion struct {
	ID            int64     `json:"id"`
	DocumentID    int64     `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	Content       string    `json:"content"`
	ChangeNotes   string    `json:"change_notes"`
	CreatedAt     time.Time `json:"created_at"`
}
