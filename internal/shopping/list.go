package shopping

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a shopping list's generation job.
type Status string

const (
	// StatusPending means generation has been dispatched but not completed.
	StatusPending Status = "pending"
	// StatusReady means the list document is populated and mutable.
	StatusReady Status = "ready"
	// StatusFailed means generation failed; the list can be retried.
	StatusFailed Status = "failed"
)

// Category is a named bucket of shopping list items. Items are plain display
// strings like "500 g mel"; they carry no stable identity beyond their value.
type Category struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Document is the persisted shopping list content: ordered categories plus
// the set of checked item strings.
type Document struct {
	Categories   []Category `json:"categories"`
	CheckedItems []string   `json:"checked_items,omitempty"`
}

// List is a shopping list row. Document is nil while generation is pending
// or failed. Selections are the generation request that produced the list,
// kept so a failed generation can be retried server-side.
type List struct {
	ID          string      `json:"id"`
	HouseholdID string      `json:"-"`
	Title       string      `json:"title"`
	Status      Status      `json:"status"`
	Error       string      `json:"error,omitempty"`
	Selections  []Selection `json:"-"`
	Document    *Document   `json:"shopping_list"`
	ShareToken  string      `json:"share_token,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Shared reports whether the list currently has a share token.
func (l *List) Shared() bool {
	return l.ShareToken != ""
}

// Selection is one recipe chosen for list generation, with the user's target
// serving count.
type Selection struct {
	RecipeID string  `json:"id"`
	Table    string  `json:"table"`
	Servings float64 `json:"servings"`
}

// GenerationMessage is the queue payload dispatched when a list is generated.
type GenerationMessage struct {
	ListID      string      `json:"list_id"`
	HouseholdID string      `json:"household_id"`
	Title       string      `json:"title"`
	Selections  []Selection `json:"selections"`
}

// ValidateDocument rejects malformed list documents at the storage boundary.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	for i, cat := range d.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d has an empty name", i)
		}
		for j, item := range cat.Items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("category %q has an empty item at index %d", cat.Name, j)
			}
		}
	}
	return nil
}
