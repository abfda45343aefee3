package model

import (
	"strings"
	"time"
)

// Recipe is a catalog entry. Ingredients are kept as free-text lines
// ("2 cups diced tomatoes") and only parsed when a grocery list is built.
type Recipe struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Tags         []string  `json:"tags"`
	PrepMinutes  int       `json:"prep_minutes"`
	CookMinutes  int       `json:"cook_minutes"`
	Servings     int       `json:"servings"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Normalize defaults missing fields where external data enters the system,
// so downstream code never has to nil-check.
func (r *Recipe) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Servings < 0 {
		r.Servings = 0
	}
}
