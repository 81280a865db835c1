package model

import "time"

const (
	BackupStatusPending  = "pending"
	BackupStatusComplete = "complete"
	BackupStatusFailed   = "failed"
)

type Backup struct {
	ID        int64     `json:"id"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"sha256"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
