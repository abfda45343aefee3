package grocery

import (
	"testing"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rdouglass/larder/internal/model"
)

func TestMergeDeduplicatesCaseInsensitively(t *testing.T) {
	merged := Merge([]NormalizedIngredient{
		{Name: "Tomatoes", Quantity: "2 cups"},
		{Name: "tomatoes", Quantity: "1 can"},
	})
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged item, got %d", len(merged))
	}
	got := merged[0]
	if got.Name != "Tomatoes" {
		t.Errorf("name = %q, want first-seen casing %q", got.Name, "Tomatoes")
	}
	if got.Quantity != "2 cups, 1 can" {
		t.Errorf("quantity = %q, want %q", got.Quantity, "2 cups, 1 can")
	}
	if got.Checked {
		t.Error("merged item should start unchecked")
	}
}

func TestMergeQuantityRules(t *testing.T) {
	tests := []struct {
		name    string
		in      []NormalizedIngredient
		wantQty string
	}{
		{
			"empty incoming quantity leaves existing alone",
			[]NormalizedIngredient{{Name: "Salt", Quantity: "1 tsp"}, {Name: "salt"}},
			"1 tsp",
		},
		{
			"empty existing quantity takes incoming",
			[]NormalizedIngredient{{Name: "Salt"}, {Name: "salt", Quantity: "1 tsp"}},
			"1 tsp",
		},
		{
			"identical quantities concatenate, not sum",
			[]NormalizedIngredient{{Name: "Milk", Quantity: "2 cups"}, {Name: "milk", Quantity: "2 cups"}},
			"2 cups, 2 cups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.in)
			if len(merged) != 1 {
				t.Fatalf("expected 1 item, got %d", len(merged))
			}
			if merged[0].Quantity != tt.wantQty {
				t.Errorf("quantity = %q, want %q", merged[0].Quantity, tt.wantQty)
			}
		})
	}
}

func TestMergeKeepsInsertionOrder(t *testing.T) {
	merged := Merge([]NormalizedIngredient{
		{Name: "Zucchini"},
		{Name: "Apples"},
		{Name: "zucchini", Quantity: "2"},
	})
	if len(merged) != 2 {
		t.Fatalf("expected 2 items, got %d", len(merged))
	}
	if merged[0].Name != "Zucchini" || merged[1].Name != "Apples" {
		t.Errorf("order = [%s, %s], want first-occurrence order", merged[0].Name, merged[1].Name)
	}
}

func TestExtractLines(t *testing.T) {
	recipes := []model.Recipe{
		{ID: "a", Ingredients: []string{"2 eggs", "1 cup flour"}},
		{ID: "b"}, // no ingredients contributes nothing
		{ID: "c", Ingredients: []string{"salt"}},
	}
	lines := ExtractLines(recipes)
	want := []string{"2 eggs", "1 cup flour", "salt"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func buildFixture() ([]model.PlannerEntry, []model.Recipe) {
	entries := []model.PlannerEntry{
		{WeekID: "2026-08-24", Date: "2026-08-24", RecipeID: "r1"},
		{WeekID: "2026-08-24", Date: "2026-08-25", RecipeID: "r2"},
		{WeekID: "2026-08-24", Date: "2026-08-26", RecipeID: "r1"},    // duplicate
		{WeekID: "2026-08-24", Date: "2026-08-27", RecipeID: "ghost"}, // unresolved
	}
	catalog := []model.Recipe{
		{ID: "r1", Title: "Tacos", Ingredients: []string{"2 cups diced tomatoes", "1 lb chicken breast"}},
		{ID: "r2", Title: "Soup", Ingredients: []string{"1 can tomatoes", "salt"}},
	}
	return entries, catalog
}

func TestBuild(t *testing.T) {
	entries, catalog := buildFixture()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	list := Build("2026-08-24", entries, catalog, now)

	if list.WeekID != "2026-08-24" {
		t.Errorf("week id = %q", list.WeekID)
	}
	if !list.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %v, want %v", list.GeneratedAt, now)
	}

	// Unresolved ids stay in the planned list even though they contribute
	// no ingredients.
	wantIDs := []string{"r1", "r2", "ghost"}
	if len(list.PlannedRecipeIDs) != len(wantIDs) {
		t.Fatalf("planned ids = %v, want %v", list.PlannedRecipeIDs, wantIDs)
	}
	for i := range wantIDs {
		if list.PlannedRecipeIDs[i] != wantIDs[i] {
			t.Errorf("planned ids[%d] = %q, want %q", i, list.PlannedRecipeIDs[i], wantIDs[i])
		}
	}

	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(list.Items), list.Items)
	}

	// Sorted by (category, name): Meat & Seafood < Produce < Spices & Seasonings.
	if list.Items[0].Name != "Chicken breast" || list.Items[0].Category != "Meat & Seafood" {
		t.Errorf("items[0] = %+v", list.Items[0])
	}
	if list.Items[1].Name != "Tomatoes" || list.Items[1].Quantity != "2 cups, 1 can" {
		t.Errorf("items[1] = %+v", list.Items[1])
	}
	if list.Items[2].Name != "Salt" || list.Items[2].Category != "Spices & Seasonings" {
		t.Errorf("items[2] = %+v", list.Items[2])
	}
}

func TestBuildSortIsNonDecreasing(t *testing.T) {
	entries, catalog := buildFixture()
	list := Build("2026-08-24", entries, catalog, time.Now())

	c := collate.New(language.English)
	for i := 1; i < len(list.Items); i++ {
		prev, cur := list.Items[i-1], list.Items[i]
		if cmp := c.CompareString(prev.Category, cur.Category); cmp > 0 {
			t.Errorf("categories out of order at %d: %q > %q", i, prev.Category, cur.Category)
		} else if cmp == 0 && c.CompareString(prev.Name, cur.Name) > 0 {
			t.Errorf("names out of order at %d: %q > %q", i, prev.Name, cur.Name)
		}
	}
}

func TestBuildNoResolvableRecipes(t *testing.T) {
	entries := []model.PlannerEntry{
		{WeekID: "2026-08-24", Date: "2026-08-24", RecipeID: "missing-1"},
		{WeekID: "2026-08-24", Date: "2026-08-25", RecipeID: "missing-2"},
	}

	list := Build("2026-08-24", entries, nil, time.Now())

	if len(list.Items) != 0 {
		t.Errorf("expected no items, got %d", len(list.Items))
	}
	if list.Items == nil {
		t.Error("items should be an empty slice, not nil")
	}
	if len(list.PlannedRecipeIDs) != 2 {
		t.Errorf("planned ids = %v, want both unresolved ids kept", list.PlannedRecipeIDs)
	}
}

func TestBuildEmptyPlan(t *testing.T) {
	list := Build("2026-08-24", nil, nil, time.Now())
	if len(list.Items) != 0 || len(list.PlannedRecipeIDs) != 0 {
		t.Errorf("empty plan produced %+v", list)
	}
}
