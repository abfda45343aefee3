package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rdouglass/larder/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeCols = `id, title, description, ingredients, instructions, tags, prep_minutes, cook_minutes, servings, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, instructions, tags string
	err := scanner.Scan(
		&r.ID, &r.Title, &r.Description, &ingredients, &instructions, &tags,
		&r.PrepMinutes, &r.CookMinutes, &r.Servings, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Malformed stored JSON degrades to an empty slice via Normalize.
	json.Unmarshal([]byte(ingredients), &r.Ingredients)
	json.Unmarshal([]byte(instructions), &r.Instructions)
	json.Unmarshal([]byte(tags), &r.Tags)
	r.Normalize()
	return &r, nil
}

func marshalLines(lines []string) string {
	if lines == nil {
		lines = []string{}
	}
	data, _ := json.Marshal(lines)
	return string(data)
}

func (s *RecipeStore) Create(r *model.Recipe) (*model.Recipe, error) {
	r.Normalize()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO recipes (id, title, description, ingredients, instructions, tags, prep_minutes, cook_minutes, servings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Description, marshalLines(r.Ingredients), marshalLines(r.Instructions), marshalLines(r.Tags),
		r.PrepMinutes, r.CookMinutes, r.Servings, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RecipeStore) GetByID(id string) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) List() ([]model.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeCols + ` FROM recipes ORDER BY created_at DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// Search matches recipes whose title contains the query, case-insensitively.
func (s *RecipeStore) Search(query string) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE title LIKE ? COLLATE NOCASE ORDER BY title ASC`,
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// GetByIDs resolves ids to recipes, preserving input order. Ids with no
// matching recipe are silently dropped.
func (s *RecipeStore) GetByIDs(ids []string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	for _, id := range ids {
		r, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes, nil
}

func (s *RecipeStore) Update(r *model.Recipe) (*model.Recipe, error) {
	r.Normalize()
	_, err := s.db.Exec(
		`UPDATE recipes SET title = ?, description = ?, ingredients = ?, instructions = ?, tags = ?, prep_minutes = ?, cook_minutes = ?, servings = ?, updated_at = ? WHERE id = ?`,
		r.Title, r.Description, marshalLines(r.Ingredients), marshalLines(r.Instructions), marshalLines(r.Tags),
		r.PrepMinutes, r.CookMinutes, r.Servings, time.Now().UTC(), r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RecipeStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func collectRecipes(rows *sql.Rows) ([]model.Recipe, error) {
	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}
