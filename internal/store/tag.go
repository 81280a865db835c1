package store

import (
	"database/sql"
	"fmt"

	"github.com/rfountain/steward/internal/model"
)

type TagStore struct {
	db *sql.DB
}

func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

func scanTag(scanner interface{ Scan(...any) error }) (*model.Tag, error) {
	var t model.Tag
	var color sql.NullString
	err := scanner.Scan(&t.ID, &t.UserID, &t.Name, &color, &t.CreatedAt, &t.ItemCount)
	if err != nil {
		return nil, err
	}
	t.Color = color.String
	return &t, nil
}

const tagCols = `t.id, t.user_id, t.name, t.color, t.created_at,
	(SELECT COUNT(*) FROM item_tags it WHERE it.tag_id = t.id) AS item_count`

func (s *TagStore) Create(userID int64, name, color string) (*model.Tag, error) {
	result, err := s.db.Exec(
		`INSERT INTO tags (user_id, name, color) VALUES (?, ?, ?)`,
		userID, name, nullStr(color),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *TagStore) GetByID(userID, id int64) (*model.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagCols+` FROM tags t WHERE t.id = ? AND t.user_id = ?`, id, userID)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

func (s *TagStore) List(userID int64) ([]model.Tag, error) {
	rows, err := s.db.Query(`SELECT `+tagCols+` FROM tags t WHERE t.user_id = ? ORDER BY t.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func (s *TagStore) Update(userID, id int64, name, color string) (*model.Tag, error) {
	_, err := s.db.Exec(
		`UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?`,
		name, nullStr(color), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *TagStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM tags WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// TagItem links a tag to an item. Both must belong to the tenant; a
// cross-tenant pair matches zero rows in the ownership checks and the
// link is refused.
func (s *TagStore) TagItem(userID, itemID, tagID int64) error {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO item_tags (item_id, tag_id)
		 SELECT i.id, t.id FROM items i, tags t
		 WHERE i.id = ? AND i.user_id = ? AND t.id = ? AND t.user_id = ?`,
		itemID, userID, tagID, userID,
	)
	if err != nil {
		return fmt.Errorf("tag item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Either already tagged or not owned; re-check ownership.
		var exists int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM item_tags it
			 JOIN items i ON i.id = it.item_id
			 WHERE it.item_id = ? AND it.tag_id = ? AND i.user_id = ?`,
			itemID, tagID, userID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("tag item check: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("tag item: item %d or tag %d not found", itemID, tagID)
		}
	}
	return nil
}

func (s *TagStore) UntagItem(userID, itemID, tagID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM item_tags
		 WHERE item_id = ? AND tag_id = ?
		   AND item_id IN (SELECT id FROM items WHERE user_id = ?)`,
		itemID, tagID, userID,
	)
	if err != nil {
		return fmt.Errorf("untag item: %w", err)
	}
	return nil
}

func (s *TagStore) ListForItem(userID, itemID int64) ([]model.Tag, error) {
	rows, err := s.db.Query(
		`SELECT `+tagCols+` FROM tags t
		 JOIN item_tags it ON it.tag_id = t.id
		 JOIN items i ON i.id = it.item_id
		 WHERE it.item_id = ? AND i.user_id = ? AND t.user_id = ?
		 ORDER BY t.name`,
		itemID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags for item: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}
