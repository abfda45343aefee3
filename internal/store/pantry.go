package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rdouglass/larder/internal/model"
)

type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

const pantryCols = `id, name, quantity, created_at, updated_at`

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var p model.PantryItem
	err := scanner.Scan(&p.ID, &p.Name, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PantryStore) Create(name, quantity string) (*model.PantryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO pantry_items (name, quantity) VALUES (?, ?)`, name, quantity)
	if err != nil {
		return nil, fmt.Errorf("insert pantry item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryStore) GetByID(id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(`SELECT `+pantryCols+` FROM pantry_items WHERE id = ?`, id)
	p, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return p, nil
}

func (s *PantryStore) List() ([]model.PantryItem, error) {
	rows, err := s.db.Query(`SELECT ` + pantryCols + ` FROM pantry_items ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		p, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (s *PantryStore) Update(id int64, name, quantity string) (*model.PantryItem, error) {
	_, err := s.db.Exec(
		`UPDATE pantry_items SET name = ?, quantity = ?, updated_at = ? WHERE id = ?`,
		name, quantity, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update pantry item: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}
