package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rfountain/steward/internal/model"
)

type MaintenanceStore struct {
	db *sql.DB
}

func NewMaintenanceStore(db *sql.DB) *MaintenanceStore {
	return &MaintenanceStore{db: db}
}

func scanMaintenance(scanner interface{ Scan(...any) error }) (*model.Maintenance, error) {
	var m model.Maintenance
	var frequencyDays sql.NullInt64
	var lastPerformed, nextDue sql.NullTime
	var instructions sql.NullString
	var itemName sql.NullString

	err := scanner.Scan(
		&m.ID, &m.UserID, &m.ItemID, &m.MaintenanceType, &frequencyDays,
		&lastPerformed, &nextDue, &instructions, &m.CreatedAt, &m.UpdatedAt, &itemName,
	)
	if err != nil {
		return nil, err
	}

	if frequencyDays.Valid {
		f := int(frequencyDays.Int64)
		m.FrequencyDays = &f
	}
	if lastPerformed.Valid {
		m.LastPerformed = &lastPerformed.Time
	}
	if nextDue.Valid {
		m.NextDue = &nextDue.Time
	}
	m.Instructions = instructions.String
	m.ItemName = itemName.String
	return &m, nil
}

const maintenanceCols = `m.id, m.user_id, m.item_id, m.maintenance_type, m.frequency_days,
	m.last_performed, m.next_due, m.instructions, m.created_at, m.updated_at, i.name AS item_name`

const maintenanceFrom = ` FROM maintenance m JOIN items i ON i.id = m.item_id`

// Create registers a maintenance schedule for an item the tenant owns.
func (s *MaintenanceStore) Create(userID, itemID int64, maintenanceType string, frequencyDays *int, nextDue *time.Time, instructions string) (*model.Maintenance, error) {
	var owner int64
	err := s.db.QueryRow(`SELECT user_id FROM items WHERE id = ?`, itemID).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != userID) {
		return nil, fmt.Errorf("create maintenance: item %d not found", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("create maintenance lookup: %w", err)
	}

	var freq sql.NullInt64
	if frequencyDays != nil {
		freq = sql.NullInt64{Int64: int64(*frequencyDays), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO maintenance (user_id, item_id, maintenance_type, frequency_days, next_due, instructions)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, itemID, maintenanceType, freq, nullTime(nextDue), nullStr(instructions),
	)
	if err != nil {
		return nil, fmt.Errorf("insert maintenance: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *MaintenanceStore) GetByID(userID, id int64) (*model.Maintenance, error) {
	row := s.db.QueryRow(`SELECT `+maintenanceCols+maintenanceFrom+` WHERE m.id = ? AND m.user_id = ?`, id, userID)
	m, err := scanMaintenance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance: %w", err)
	}
	return m, nil
}

func (s *MaintenanceStore) List(userID int64) ([]model.Maintenance, error) {
	rows, err := s.db.Query(
		`SELECT `+maintenanceCols+maintenanceFrom+` WHERE m.user_id = ?
		 ORDER BY m.next_due IS NULL, m.next_due`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

// ListDue returns schedules due on or before the given time.
func (s *MaintenanceStore) ListDue(userID int64, by time.Time) ([]model.Maintenance, error) {
	rows, err := s.db.Query(
		`SELECT `+maintenanceCols+maintenanceFrom+`
		 WHERE m.user_id = ? AND m.next_due IS NOT NULL AND m.next_due <= ?
		 ORDER BY m.next_due`,
		userID, by.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due maintenance: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func (s *MaintenanceStore) ListForItem(userID, itemID int64) ([]model.Maintenance, error) {
	rows, err := s.db.Query(
		`SELECT `+maintenanceCols+maintenanceFrom+` WHERE m.user_id = ? AND m.item_id = ? ORDER BY m.created_at`,
		userID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list maintenance for item: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func collectMaintenance(rows *sql.Rows) ([]model.Maintenance, error) {
	var out []model.Maintenance
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *MaintenanceStore) Update(userID, id int64, maintenanceType string, frequencyDays *int, nextDue *time.Time, instructions string) (*model.Maintenance, error) {
	var freq sql.NullInt64
	if frequencyDays != nil {
		freq = sql.NullInt64{Int64: int64(*frequencyDays), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE maintenance SET maintenance_type = ?, frequency_days = ?, next_due = ?, instructions = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		maintenanceType, freq, nullTime(nextDue), nullStr(instructions), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update maintenance: %w", err)
	}
	return s.GetByID(userID, id)
}

// Complete records a log entry and advances next_due by frequency_days
// in a single transaction.
func (s *MaintenanceStore) Complete(userID, id int64, performedBy, notes string, cost *float64) (*model.Maintenance, error) {
	m, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO maintenance_logs (maintenance_id, performed_at, performed_by, notes, cost) VALUES (?, ?, ?, ?, ?)`,
		id, now, nullStr(performedBy), nullStr(notes), nullFloat(cost),
	)
	if err != nil {
		return nil, fmt.Errorf("insert maintenance log: %w", err)
	}

	var nextDue sql.NullTime
	if m.FrequencyDays != nil {
		nextDue = sql.NullTime{Time: now.AddDate(0, 0, *m.FrequencyDays), Valid: true}
	}
	_, err = tx.Exec(
		`UPDATE maintenance SET last_performed = ?, next_due = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		now, nextDue, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("advance maintenance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *MaintenanceStore) ListLogs(userID, maintenanceID int64) ([]model.MaintenanceLog, error) {
	rows, err := s.db.Query(
		`SELECT l.id, l.maintenance_id, l.performed_at, l.performed_by, l.notes, l.cost, l.created_at
		 FROM maintenance_logs l
		 JOIN maintenance m ON m.id = l.maintenance_id
		 WHERE l.maintenance_id = ? AND m.user_id = ?
		 ORDER BY l.performed_at DESC`,
		maintenanceID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list maintenance logs: %w", err)
	}
	defer rows.Close()

	var logs []model.MaintenanceLog
	for rows.Next() {
		var l model.MaintenanceLog
		var performedBy, notes sql.NullString
		var cost sql.NullFloat64
		if err := rows.Scan(&l.ID, &l.MaintenanceID, &l.PerformedAt, &performedBy, &notes, &cost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan maintenance log: %w", err)
		}
		l.PerformedBy = performedBy.String
		l.Notes = notes.String
		if cost.Valid {
			l.Cost = &cost.Float64
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *MaintenanceStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM maintenance WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete maintenance: %w", err)
	}
	return nil
}
