package model

import "time"

type Maintenance struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	ItemID          int64      `json:"item_id"`
	MaintenanceType string     `json:"maintenance_type"`
	FrequencyDays   *int       `json:"frequency_days,omitempty"`
	LastPerformed   *time.Time `json:"last_performed,omitempty"`
	NextDue         *time.Time `json:"next_due,omitempty"`
	Instructions    string     `json:"instructions"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// ItemName is populated on reads that join items.
	ItemName string `json:"item_name,omitempty"`
}

type MaintenanceLog struct {
	ID            int64     `json:"id"`
	MaintenanceID int64     `json:"maintenance_id"`
	PerformedAt   time.Time `json:"performed_at"`
	PerformedBy   string    `json:"performed_by"`
	Notes         string    `json:"notes"`
	Cost          *float64  `json:"cost,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
