package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rfountain/steward/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemDraft carries the writable fields of an item.
type ItemDraft struct {
	Name               string
	Description        string
	Category           string
	PurchaseDate       *time.Time
	PurchasePrice      *float64
	Condition          string
	Notes              string
	PurchasedFrom      string
	SerialNumber       string
	WarrantyProvider   string
	WarrantyExpiration *time.Time
	StorageLocation    string
	CurrentValue       *float64
	HasInsurance       bool
	InsuranceProvider  string
	NeedsMaintenance   bool
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var roomID sql.NullInt64
	var description, category, condition, notes sql.NullString
	var purchasedFrom, serialNumber, warrantyProvider, storageLocation, insuranceProvider sql.NullString
	var purchaseDate, warrantyExpiration sql.NullTime
	var purchasePrice, currentValue sql.NullFloat64
	var hasInsurance, needsMaintenance int
	var roomName sql.NullString

	err := scanner.Scan(
		&it.ID, &it.UserID, &roomID, &it.Name, &description, &category,
		&purchaseDate, &purchasePrice, &condition, &notes,
		&purchasedFrom, &serialNumber, &warrantyProvider, &warrantyExpiration,
		&storageLocation, &currentValue, &hasInsurance, &insuranceProvider,
		&needsMaintenance, &it.CreatedAt, &it.UpdatedAt, &roomName,
	)
	if err != nil {
		return nil, err
	}

	if roomID.Valid {
		it.RoomID = &roomID.Int64
	}
	it.Description = description.String
	it.Category = category.String
	it.Condition = condition.String
	it.Notes = notes.String
	it.PurchasedFrom = purchasedFrom.String
	it.SerialNumber = serialNumber.String
	it.WarrantyProvider = warrantyProvider.String
	it.StorageLocation = storageLocation.String
	it.InsuranceProvider = insuranceProvider.String
	it.RoomName = roomName.String
	if purchaseDate.Valid {
		it.PurchaseDate = &purchaseDate.Time
	}
	if warrantyExpiration.Valid {
		it.WarrantyExpiration = &warrantyExpiration.Time
	}
	if purchasePrice.Valid {
		it.PurchasePrice = &purchasePrice.Float64
	}
	if currentValue.Valid {
		it.CurrentValue = &currentValue.Float64
	}
	it.HasInsurance = hasInsurance != 0
	it.NeedsMaintenance = needsMaintenance != 0
	return &it, nil
}

const itemCols = `i.id, i.user_id, i.room_id, i.name, i.description, i.category,
	i.purchase_date, i.purchase_price, i.condition, i.notes,
	i.purchased_from, i.serial_number, i.warranty_provider, i.warranty_expiration,
	i.storage_location, i.current_value, i.has_insurance, i.insurance_provider,
	i.needs_maintenance, i.created_at, i.updated_at, r.name AS room_name`

const itemFrom = ` FROM items i LEFT JOIN rooms r ON r.id = i.room_id`

func draftArgs(userID int64, d ItemDraft) []any {
	return []any{
		userID, d.Name, nullStr(d.Description), nullStr(d.Category),
		nullTime(d.PurchaseDate), nullFloat(d.PurchasePrice), nullStr(d.Condition), nullStr(d.Notes),
		nullStr(d.PurchasedFrom), nullStr(d.SerialNumber), nullStr(d.WarrantyProvider), nullTime(d.WarrantyExpiration),
		nullStr(d.StorageLocation), nullFloat(d.CurrentValue), boolInt(d.HasInsurance), nullStr(d.InsuranceProvider),
		boolInt(d.NeedsMaintenance),
	}
}

const itemInsert = `INSERT INTO items (
	user_id, name, description, category,
	purchase_date, purchase_price, condition, notes,
	purchased_from, serial_number, warranty_provider, warranty_expiration,
	storage_location, current_value, has_insurance, insurance_provider,
	needs_maintenance
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts an item, optionally assigning it to a room in the same
// transaction so a failed assignment never leaves an orphaned item.
// A room id belonging to another tenant aborts the whole operation.
func (s *ItemStore) Create(userID int64, d ItemDraft, roomID *int64) (*model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(itemInsert, draftArgs(userID, d)...)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if roomID != nil {
		if err := assignRoomTx(tx, userID, id, *roomID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(userID, id)
}

func assignRoomTx(tx *sql.Tx, userID, itemID, roomID int64) error {
	var owner int64
	err := tx.QueryRow(`SELECT user_id FROM rooms WHERE id = ?`, roomID).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != userID) {
		return fmt.Errorf("assign room: room %d not found", roomID)
	}
	if err != nil {
		return fmt.Errorf("assign room lookup: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE items SET room_id = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		roomID, itemID, userID,
	)
	if err != nil {
		return fmt.Errorf("assign room: %w", err)
	}
	return nil
}

func (s *ItemStore) GetByID(userID, id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+itemFrom+` WHERE i.id = ? AND i.user_id = ?`, id, userID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (s *ItemStore) List(userID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+itemFrom+` WHERE i.user_id = ? ORDER BY i.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (s *ItemStore) ListByRoom(userID, roomID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+itemFrom+` WHERE i.user_id = ? AND i.room_id = ? ORDER BY i.name`,
		userID, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items by room: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(userID, id int64, d ItemDraft) (*model.Item, error) {
	args := append(draftArgs(userID, d)[1:], id, userID)
	_, err := s.db.Exec(
		`UPDATE items SET
			name = ?, description = ?, category = ?,
			purchase_date = ?, purchase_price = ?, condition = ?, notes = ?,
			purchased_from = ?, serial_number = ?, warranty_provider = ?, warranty_expiration = ?,
			storage_location = ?, current_value = ?, has_insurance = ?, insurance_provider = ?,
			needs_maintenance = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(userID, id)
}

// AssignRoom moves the item into a room (or out of any room when
// roomID is nil).
func (s *ItemStore) AssignRoom(userID, itemID int64, roomID *int64) (*model.Item, error) {
	if roomID == nil {
		_, err := s.db.Exec(
			`UPDATE items SET room_id = NULL, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
			itemID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("unassign room: %w", err)
		}
		return s.GetByID(userID, itemID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := assignRoomTx(tx, userID, itemID, *roomID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(userID, itemID)
}

func (s *ItemStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
