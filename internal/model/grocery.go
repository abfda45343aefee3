package model

import "time"

// GroceryItem is one merged line on a generated shopping list. Quantity is
// display text, not a parsed amount: duplicates across recipes are joined
// with ", " rather than summed.
type GroceryItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Checked  bool   `json:"checked"`
}

// GroceryList is the shopping list derived from one week's meal plan.
// Regenerating a week replaces the whole list; there is no incremental merge.
type GroceryList struct {
	WeekID           string        `json:"week_id"`
	Items            []GroceryItem `json:"items"`
	PlannedRecipeIDs []string      `json:"planned_recipe_ids"`
	GeneratedAt      time.Time     `json:"generated_at"`
}
