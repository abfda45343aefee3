package store

import (
	"database/sql"
	"fmt"

	"github.com/rdouglass/larder/internal/model"
)

type PlannerStore struct {
	db *sql.DB
}

func NewPlannerStore(db *sql.DB) *PlannerStore {
	return &PlannerStore{db: db}
}

const plannerCols = `id, week_id, date, recipe_id, created_at`

func scanEntry(scanner interface{ Scan(...any) error }) (*model.PlannerEntry, error) {
	var e model.PlannerEntry
	err := scanner.Scan(&e.ID, &e.WeekID, &e.Date, &e.RecipeID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Assign sets the recipe for a date, replacing any previous assignment.
// One recipe per date; last writer wins.
func (s *PlannerStore) Assign(weekID, date, recipeID string) (*model.PlannerEntry, error) {
	_, err := s.db.Exec(
		`INSERT INTO planner_entries (week_id, date, recipe_id) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET recipe_id = excluded.recipe_id, week_id = excluded.week_id`,
		weekID, date, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("assign recipe: %w", err)
	}
	return s.GetByDate(date)
}

func (s *PlannerStore) GetByDate(date string) (*model.PlannerEntry, error) {
	row := s.db.QueryRow(`SELECT `+plannerCols+` FROM planner_entries WHERE date = ?`, date)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get planner entry: %w", err)
	}
	return e, nil
}

// Unassign removes the assignment for a date, if any.
func (s *PlannerStore) Unassign(date string) error {
	if _, err := s.db.Exec(`DELETE FROM planner_entries WHERE date = ?`, date); err != nil {
		return fmt.Errorf("unassign date: %w", err)
	}
	return nil
}

// WeekEntries returns a week's assignments in date order. Date order doubles
// as first-seen order when the grocery aggregator collapses duplicates.
func (s *PlannerStore) WeekEntries(weekID string) ([]model.PlannerEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+plannerCols+` FROM planner_entries WHERE week_id = ? ORDER BY date ASC`, weekID)
	if err != nil {
		return nil, fmt.Errorf("week entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PlannerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planner entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *PlannerStore) ClearWeek(weekID string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM planner_entries WHERE week_id = ?`, weekID)
	if err != nil {
		return 0, fmt.Errorf("clear week: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
