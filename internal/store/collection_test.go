package store

import (
	"testing"

	"github.com/rdouglass/larder/internal/model"
)

func TestCollectionCRUD(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCollectionStore(db)

	created, err := cs.Create("Weeknight", "Quick dinners")
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if created.ID == "" || created.Name != "Weeknight" {
		t.Fatalf("created = %+v", created)
	}
	if created.RecipeCount != 0 {
		t.Errorf("recipe count = %d, want 0", created.RecipeCount)
	}

	updated, err := cs.Update(created.ID, "Weeknight Dinners", "")
	if err != nil {
		t.Fatalf("update collection: %v", err)
	}
	if updated.Name != "Weeknight Dinners" {
		t.Errorf("name = %q", updated.Name)
	}

	collections, err := cs.List()
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(collections) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(collections))
	}

	if err := cs.Delete(created.ID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}
	got, _ := cs.GetByID(created.ID)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestCollectionMembership(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCollectionStore(db)
	rs := NewRecipeStore(db)

	col, _ := cs.Create("Favorites", "")
	a, _ := rs.Create(&model.Recipe{Title: "A"})
	b, _ := rs.Create(&model.Recipe{Title: "B"})

	if err := cs.AddRecipe(col.ID, b.ID); err != nil {
		t.Fatalf("add recipe: %v", err)
	}
	if err := cs.AddRecipe(col.ID, a.ID); err != nil {
		t.Fatalf("add recipe: %v", err)
	}
	// Re-adding is a no-op.
	if err := cs.AddRecipe(col.ID, b.ID); err != nil {
		t.Fatalf("re-add recipe: %v", err)
	}

	recipes, err := cs.ListRecipes(col.ID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	// Membership order, not alphabetical.
	if recipes[0].Title != "B" || recipes[1].Title != "A" {
		t.Errorf("order = [%s, %s]", recipes[0].Title, recipes[1].Title)
	}

	got, _ := cs.GetByID(col.ID)
	if got.RecipeCount != 2 {
		t.Errorf("recipe count = %d, want 2", got.RecipeCount)
	}

	if err := cs.RemoveRecipe(col.ID, b.ID); err != nil {
		t.Fatalf("remove recipe: %v", err)
	}
	recipes, _ = cs.ListRecipes(col.ID)
	if len(recipes) != 1 || recipes[0].Title != "A" {
		t.Errorf("after remove = %+v", recipes)
	}
}

func TestCollectionMembershipCascades(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCollectionStore(db)
	rs := NewRecipeStore(db)

	col, _ := cs.Create("Favorites", "")
	r, _ := rs.Create(&model.Recipe{Title: "Gone Soon"})
	cs.AddRecipe(col.ID, r.ID)

	if err := rs.Delete(r.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	recipes, err := cs.ListRecipes(col.ID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("membership should cascade on recipe delete, got %+v", recipes)
	}
}
