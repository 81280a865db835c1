package model

import "time"

// Media is a file reference attached to an item. Only the path is
// stored; the bytes live wherever the path points.
type Media struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	MediaType string    `json:"media_type"`
	FilePath  string    `json:"file_path"`
	FileName  string    `json:"file_name"`
	FileSize  *int64    `json:"file_size,omitempty"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
