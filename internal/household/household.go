package household

import (
	"fmt"
	"strings"
	"time"
)

// MaxMembers caps how many users can share one household.
const MaxMembers = 8

// DefaultCategories is the initial ordered set of shopping list category
// names for a new household. The last entry is the fallback bucket.
var DefaultCategories = []string{
	"Frukt og grønt",
	"Bakevarer",
	"Meieri",
	"Kjøtt og fisk",
	"Tørrvarer",
	"Frossent",
	"Annet",
}

// Household is a group of users sharing recipes and shopping lists.
type Household struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DefaultServings int       `json:"default_servings"`
	Categories      []string  `json:"categories"`
	CreatedAt       time.Time `json:"created_at"`
}

// Member is a user belonging to a household.
type Member struct {
	HouseholdID string    `json:"household_id" db:"household_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// Validate checks the household settings.
func (h *Household) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("household name must not be empty")
	}
	if h.DefaultServings <= 0 {
		return fmt.Errorf("default servings must be positive")
	}
	if len(h.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seen := make(map[string]struct{}, len(h.Categories))
	for _, c := range h.Categories {
		name := strings.TrimSpace(c)
		if name == "" {
			return fmt.Errorf("category name must not be empty")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
