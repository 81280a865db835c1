package model

import "time"

type Tag struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`

	// ItemCount is populated by listing queries.
	ItemCount int `json:"item_count"`
}
