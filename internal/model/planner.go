package model

import "time"

// PlannerEntry assigns one recipe to one calendar date. WeekID is the ISO
// date of the Monday beginning the planning week and keys all per-week data.
type PlannerEntry struct {
	ID        int64     `json:"id"`
	WeekID    string    `json:"week_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	RecipeID  string    `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}
