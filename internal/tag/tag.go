package tag

import "strings"

// Tag is a named label in a household's tag registry. Names are unique per
// household, compared case-insensitively.
type Tag struct {
	ID          string `json:"id" db:"id"`
	HouseholdID string `json:"-" db:"household_id"`
	Name        string `json:"name" db:"name"`
}

// Normalize trims and lowercases a tag name the way it is stored on recipes.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
