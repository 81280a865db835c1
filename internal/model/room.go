package model

import "time"

type Room struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FloorNumber int       `json:"floor_number"`
	AreaSqft    *float64  `json:"area_sqft,omitempty"`
	RoomType    string    `json:"room_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ItemCount is populated by listing queries.
	ItemCount int `json:"item_count"`
}
