package store

import (
	"database/sql"
	"testing"

	"github.com/rdouglass/larder/internal/database"
	"github.com/rdouglass/larder/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecipeCRUD(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))

	created, err := rs.Create(&model.Recipe{
		Title:       "Weeknight Tacos",
		Description: "Fast and forgiving.",
		Ingredients: []string{"1 lb ground beef", "8 tortillas"},
		Tags:        []string{"dinner"},
		PrepMinutes: 10,
		CookMinutes: 15,
		Servings:    4,
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Title != "Weeknight Tacos" {
		t.Errorf("title = %q", created.Title)
	}
	if len(created.Ingredients) != 2 {
		t.Errorf("ingredients = %v", created.Ingredients)
	}
	if created.Instructions == nil {
		t.Error("instructions should default to empty slice")
	}

	got, err := rs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got == nil || got.Title != "Weeknight Tacos" {
		t.Fatalf("got = %+v", got)
	}

	got.Title = "Taco Night"
	got.Ingredients = append(got.Ingredients, "salsa")
	updated, err := rs.Update(got)
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated.Title != "Taco Night" {
		t.Errorf("updated title = %q", updated.Title)
	}
	if len(updated.Ingredients) != 3 {
		t.Errorf("updated ingredients = %v", updated.Ingredients)
	}

	recipes, err := rs.List()
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}

	if err := rs.Delete(created.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	got, err = rs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRecipeGetMissing(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))

	got, err := rs.GetByID("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestRecipeSearch(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))

	for _, title := range []string{"Chicken Curry", "Chickpea Salad", "Beef Stew"} {
		if _, err := rs.Create(&model.Recipe{Title: title}); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}

	results, err := rs.Search("chick")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].Title != "Chicken Curry" {
		t.Errorf("results[0] = %q, want alphabetical order", results[0].Title)
	}
}

func TestRecipeGetByIDsPreservesOrderAndDropsMisses(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))

	a, _ := rs.Create(&model.Recipe{Title: "A"})
	b, _ := rs.Create(&model.Recipe{Title: "B"})

	recipes, err := rs.GetByIDs([]string{b.ID, "ghost", a.ID})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].Title != "B" || recipes[1].Title != "A" {
		t.Errorf("order = [%s, %s], want input order", recipes[0].Title, recipes[1].Title)
	}
}
