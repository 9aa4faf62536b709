package recipe

import (
	"fmt"
	"strings"
	"time"

	"matplan/internal/tag"
)

const (
	maxTitleLength = 100
	minIcon        = 1
	maxIcon        = 10
)

// Instruction is a single numbered step of a recipe.
type Instruction struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

// Recipe is a household-owned recipe, or a read-only system catalog recipe
// when HouseholdID is empty.
type Recipe struct {
	ID           string        `json:"id"`
	HouseholdID  string        `json:"household_id,omitempty"`
	Title        string        `json:"title"`
	Servings     float64       `json:"servings"`
	Icon         int           `json:"icon"`
	Description  string        `json:"description,omitempty"`
	SourceURL    string        `json:"source_url,omitempty"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	Tags         []string      `json:"tags"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsSystem reports whether the recipe belongs to the shared system catalog.
func (r *Recipe) IsSystem() bool {
	return r.HouseholdID == ""
}

// Validate checks the recipe fields and normalizes defaults in place:
// a zero icon becomes 1, tags are trimmed and lowercased, ingredient
// strings are trimmed and empty ones dropped.
func (r *Recipe) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if len([]rune(r.Title)) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}

	if r.Servings <= 0 {
		return fmt.Errorf("servings must be positive")
	}

	if r.Icon == 0 {
		r.Icon = minIcon
	}
	if r.Icon < minIcon || r.Icon > maxIcon {
		return fmt.Errorf("icon must be between %d and %d", minIcon, maxIcon)
	}

	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ing = strings.TrimSpace(ing)
		if ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	r.Ingredients = ingredients

	for i, ins := range r.Instructions {
		if ins.Step <= 0 {
			return fmt.Errorf("instruction %d: step must be a positive integer", i)
		}
	}

	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		name := tag.Normalize(t)
		if name != "" {
			tags = append(tags, name)
		}
	}
	r.Tags = tags

	return nil
}
