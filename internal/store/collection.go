package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rdouglass/larder/internal/model"
)

type CollectionStore struct {
	db *sql.DB
}

func NewCollectionStore(db *sql.DB) *CollectionStore {
	return &CollectionStore{db: db}
}

const collectionCols = `c.id, c.name, c.description, COUNT(cr.recipe_id), c.created_at, c.updated_at`

func scanCollection(scanner interface{ Scan(...any) error }) (*model.Collection, error) {
	var c model.Collection
	err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.RecipeCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CollectionStore) Create(name, description string) (*model.Collection, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO collections (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}
	return s.GetByID(id)
}

func (s *CollectionStore) GetByID(id string) (*model.Collection, error) {
	row := s.db.QueryRow(
		`SELECT `+collectionCols+` FROM collections c
		 LEFT JOIN collection_recipes cr ON cr.collection_id = c.id
		 WHERE c.id = ? GROUP BY c.id`, id)
	c, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return c, nil
}

func (s *CollectionStore) List() ([]model.Collection, error) {
	rows, err := s.db.Query(
		`SELECT ` + collectionCols + ` FROM collections c
		 LEFT JOIN collection_recipes cr ON cr.collection_id = c.id
		 GROUP BY c.id ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

func (s *CollectionStore) Update(id, name, description string) (*model.Collection, error) {
	_, err := s.db.Exec(
		`UPDATE collections SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	return s.GetByID(id)
}

func (s *CollectionStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// AddRecipe appends a recipe to the collection. Re-adding an existing member
// is a no-op rather than an error.
func (s *CollectionStore) AddRecipe(collectionID, recipeID string) error {
	var next int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM collection_recipes WHERE collection_id = ?`,
		collectionID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO collection_recipes (collection_id, recipe_id, position) VALUES (?, ?, ?)
		 ON CONFLICT(collection_id, recipe_id) DO NOTHING`,
		collectionID, recipeID, next,
	)
	if err != nil {
		return fmt.Errorf("add recipe to collection: %w", err)
	}
	return nil
}

func (s *CollectionStore) RemoveRecipe(collectionID, recipeID string) error {
	_, err := s.db.Exec(
		`DELETE FROM collection_recipes WHERE collection_id = ? AND recipe_id = ?`,
		collectionID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("remove recipe from collection: %w", err)
	}
	return nil
}

// ListRecipes returns the collection's recipes in membership order.
func (s *CollectionStore) ListRecipes(collectionID string) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+prefixedRecipeCols+` FROM recipes r
		 JOIN collection_recipes cr ON cr.recipe_id = r.id
		 WHERE cr.collection_id = ?
		 ORDER BY cr.position ASC`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list collection recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

const prefixedRecipeCols = `r.id, r.title, r.description, r.ingredients, r.instructions, r.tags, r.prep_minutes, r.cook_minutes, r.servings, r.created_at, r.updated_at`
