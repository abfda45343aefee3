package grocery

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rdouglass/larder/internal/model"
)

// ExtractLines flattens the ingredient lines of the given recipes into one
// sequence, recipe order preserved. A recipe with no ingredients contributes
// nothing.
func ExtractLines(recipes []model.Recipe) []string {
	var lines []string
	for _, r := range recipes {
		lines = append(lines, r.Ingredients...)
	}
	return lines
}

// Merge deduplicates normalized ingredients by case-insensitive name. The
// first occurrence's casing becomes the display name; quantities of later
// duplicates are appended as display text, joined with ", ". Output keeps
// first-occurrence insertion order.
func Merge(items []NormalizedIngredient) []model.GroceryItem {
	var merged []model.GroceryItem
	index := make(map[string]int)

	for _, in := range items {
		key := strings.ToLower(in.Name)
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, model.GroceryItem{
				Name:     in.Name,
				Quantity: in.Quantity,
			})
			continue
		}
		if in.Quantity == "" {
			continue
		}
		if merged[i].Quantity == "" {
			merged[i].Quantity = in.Quantity
		} else {
			merged[i].Quantity += ", " + in.Quantity
		}
	}

	return merged
}

// Build assembles the grocery list for one week. Plan entries must be in
// date order; duplicate recipe ids collapse to the first occurrence. Ids
// with no matching catalog recipe contribute no ingredients but are still
// recorded in PlannedRecipeIDs.
func Build(weekID string, entries []model.PlannerEntry, catalog []model.Recipe, now time.Time) model.GroceryList {
	byID := make(map[string]model.Recipe, len(catalog))
	for _, r := range catalog {
		byID[r.ID] = r
	}

	plannedIDs := []string{}
	seen := make(map[string]bool)
	var recipes []model.Recipe
	for _, e := range entries {
		if e.RecipeID == "" || seen[e.RecipeID] {
			continue
		}
		seen[e.RecipeID] = true
		plannedIDs = append(plannedIDs, e.RecipeID)
		if r, ok := byID[e.RecipeID]; ok {
			recipes = append(recipes, r)
		}
	}

	lines := ExtractLines(recipes)
	normalized := make([]NormalizedIngredient, 0, len(lines))
	for _, line := range lines {
		normalized = append(normalized, Normalize(line))
	}

	items := Merge(normalized)
	if items == nil {
		items = []model.GroceryItem{}
	}
	for i := range items {
		items[i].Category = Categorize(items[i].Name)
	}
	sortItems(items)

	return model.GroceryList{
		WeekID:           weekID,
		Items:            items,
		PlannedRecipeIDs: plannedIDs,
		GeneratedAt:      now.UTC(),
	}
}

// sortItems orders items by (category, name), both ascending, using
// locale-aware collation. The sort is stable so equal keys keep merge order.
func sortItems(items []model.GroceryItem) {
	c := collate.New(language.English)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(items[i].Category, items[j].Category); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(items[i].Name, items[j].Name) < 0
	})
}
