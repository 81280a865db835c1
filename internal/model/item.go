package model

import "time"

type Item struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	RoomID             *int64     `json:"room_id,omitempty"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	PurchaseDate       *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice      *float64   `json:"purchase_price,omitempty"`
	Condition          string     `json:"condition"`
	Notes              string     `json:"notes"`
	PurchasedFrom      string     `json:"purchased_from"`
	SerialNumber       string     `json:"serial_number"`
	WarrantyProvider   string     `json:"warranty_provider"`
	WarrantyExpiration *time.Time `json:"warranty_expiration,omitempty"`
	StorageLocation    string     `json:"storage_location"`
	CurrentValue       *float64   `json:"current_value,omitempty"`
	HasInsurance       bool       `json:"has_insurance"`
	InsuranceProvider  string     `json:"insurance_provider"`
	NeedsMaintenance   bool       `json:"needs_maintenance"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// RoomName is populated on reads that join rooms.
	RoomName string `json:"room_name,omitempty"`
}
