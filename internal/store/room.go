package store

import (
	"database/sql"
	"fmt"

	"github.com/rfountain/steward/internal/model"
)

type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	var description, roomType sql.NullString
	var areaSqft sql.NullFloat64

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Name, &description, &r.FloorNumber,
		&areaSqft, &roomType, &r.CreatedAt, &r.UpdatedAt, &r.ItemCount,
	)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.RoomType = roomType.String
	if areaSqft.Valid {
		r.AreaSqft = &areaSqft.Float64
	}
	return &r, nil
}

const roomCols = `r.id, r.user_id, r.name, r.description, r.floor_number, r.area_sqft, r.room_type, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM items i WHERE i.room_id = r.id) AS item_count`

func (s *RoomStore) Create(userID int64, name, description string, floorNumber int, areaSqft *float64, roomType string) (*model.Room, error) {
	var area sql.NullFloat64
	if areaSqft != nil {
		area = sql.NullFloat64{Float64: *areaSqft, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO rooms (user_id, name, description, floor_number, area_sqft, room_type) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, name, description, floorNumber, area, roomType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *RoomStore) GetByID(userID, id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms r WHERE r.id = ? AND r.user_id = ?`, id, userID)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) List(userID int64) ([]model.Room, error) {
	rows, err := s.db.Query(
		`SELECT `+roomCols+` FROM rooms r WHERE r.user_id = ? ORDER BY r.floor_number, r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func (s *RoomStore) Update(userID, id int64, name, description string, floorNumber int, areaSqft *float64, roomType string) (*model.Room, error) {
	var area sql.NullFloat64
	if areaSqft != nil {
		area = sql.NullFloat64{Float64: *areaSqft, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE rooms SET name = ?, description = ?, floor_number = ?, area_sqft = ?, room_type = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		name, description, floorNumber, area, roomType, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *RoomStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM rooms WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
