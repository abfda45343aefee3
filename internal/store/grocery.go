package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rdouglass/larder/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// Replace persists a freshly generated list, fully overwriting any previous
// list for the same week. Regeneration is a whole-list overwrite, never an
// incremental merge, so check-off state does not survive it.
func (s *GroceryStore) Replace(list model.GroceryList) error {
	ids, err := json.Marshal(list.PlannedRecipeIDs)
	if err != nil {
		return fmt.Errorf("marshal planned ids: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM grocery_items WHERE week_id = ?`, list.WeekID); err != nil {
		return fmt.Errorf("clear old items: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO grocery_lists (week_id, planned_recipe_ids, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(week_id) DO UPDATE SET planned_recipe_ids = excluded.planned_recipe_ids, generated_at = excluded.generated_at`,
		list.WeekID, string(ids), list.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert list: %w", err)
	}

	for i, item := range list.Items {
		_, err := tx.Exec(
			`INSERT INTO grocery_items (week_id, name, quantity, category, checked, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
			list.WeekID, item.Name, item.Quantity, item.Category, boolToInt(item.Checked), i,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Get loads the persisted list for a week, or nil if none was generated.
func (s *GroceryStore) Get(weekID string) (*model.GroceryList, error) {
	var idsJSON string
	list := model.GroceryList{WeekID: weekID}
	err := s.db.QueryRow(
		`SELECT planned_recipe_ids, generated_at FROM grocery_lists WHERE week_id = ?`, weekID,
	).Scan(&idsJSON, &list.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	list.PlannedRecipeIDs = []string{}
	json.Unmarshal([]byte(idsJSON), &list.PlannedRecipeIDs)

	rows, err := s.db.Query(
		`SELECT id, name, quantity, category, checked FROM grocery_items WHERE week_id = ? ORDER BY sort_order ASC`,
		weekID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	list.Items = []model.GroceryItem{}
	for rows.Next() {
		var item model.GroceryItem
		var checked int
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &checked); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Checked = checked != 0
		list.Items = append(list.Items, item)
	}
	return &list, rows.Err()
}

// ToggleChecked flips one item's checked state and returns the updated item,
// or nil if the item does not belong to the week's list.
func (s *GroceryStore) ToggleChecked(weekID string, itemID int64) (*model.GroceryItem, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET checked = 1 - checked WHERE id = ? AND week_id = ?`,
		itemID, weekID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle checked: %w", err)
	}

	var item model.GroceryItem
	var checked int
	err = s.db.QueryRow(
		`SELECT id, name, quantity, category, checked FROM grocery_items WHERE id = ? AND week_id = ?`,
		itemID, weekID,
	).Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &checked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	item.Checked = checked != 0
	return &item, nil
}

// Delete removes a week's list and, via the foreign key cascade, its items.
func (s *GroceryStore) Delete(weekID string) error {
	if _, err := s.db.Exec(`DELETE FROM grocery_lists WHERE week_id = ?`, weekID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
