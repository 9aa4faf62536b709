package shopping

import (
	"errors"
	"strings"
)

var (
	// ErrCategoryNotFound is returned when a mutation names an unknown category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrIndexOutOfRange is returned when a mutation addresses a nonexistent
	// item index, typically because another actor changed the list first.
	ErrIndexOutOfRange = errors.New("item index out of range")
	// ErrEmptyItem is returned when an added or edited item is blank.
	ErrEmptyItem = errors.New("item must not be empty")
)

// The mutation functions below are pure: they never modify their input and
// return a fresh document. Items are addressed by category name + index;
// the checked set is keyed by item string value, so duplicate strings share
// checked state.

func (d Document) clone() Document {
	out := Document{
		Categories:   make([]Category, len(d.Categories)),
		CheckedItems: append([]string(nil), d.CheckedItems...),
	}
	for i, cat := range d.Categories {
		out.Categories[i] = Category{
			Name:  cat.Name,
			Items: append([]string(nil), cat.Items...),
		}
	}
	return out
}

// Checked reports whether the given item string is in the checked set.
func (d Document) Checked(item string) bool {
	for _, it := range d.CheckedItems {
		if it == item {
			return true
		}
	}
	return false
}

func (d Document) findCategory(name string) int {
	for i, cat := range d.Categories {
		if cat.Name == name {
			return i
		}
	}
	return -1
}

// Toggle flips membership of the item string in the checked set. Toggling
// operates on the value, not the position: every occurrence of the string,
// in any category, shares the same checked state.
func Toggle(d Document, item string) Document {
	out := d.clone()
	for i, it := range out.CheckedItems {
		if it == item {
			out.CheckedItems = append(out.CheckedItems[:i], out.CheckedItems[i+1:]...)
			return out
		}
	}
	out.CheckedItems = append(out.CheckedItems, item)
	return out
}

// Edit replaces the item at the given position within the named category.
// The checked set is left untouched; a checked entry for the old value
// lingers until the value reappears or is removed.
func Edit(d Document, category string, index int, value string) (Document, error) {
	if strings.TrimSpace(value) == "" {
		return Document{}, ErrEmptyItem
	}

	ci := d.findCategory(category)
	if ci < 0 {
		return Document{}, ErrCategoryNotFound
	}
	if index < 0 || index >= len(d.Categories[ci].Items) {
		return Document{}, ErrIndexOutOfRange
	}

	out := d.clone()
	out.Categories[ci].Items[index] = value
	return out, nil
}

// Add appends an item to the named category, creating the category at the
// end of the list if it does not exist yet.
func Add(d Document, category, item string) (Document, error) {
	if strings.TrimSpace(item) == "" {
		return Document{}, ErrEmptyItem
	}
	if strings.TrimSpace(category) == "" {
		return Document{}, ErrCategoryNotFound
	}

	out := d.clone()
	ci := out.findCategory(category)
	if ci < 0 {
		out.Categories = append(out.Categories, Category{Name: category, Items: []string{item}})
		return out, nil
	}
	out.Categories[ci].Items = append(out.Categories[ci].Items, item)
	return out, nil
}

// Remove deletes the item at the given position. A category that becomes
// empty is dropped. The removed string is purged from the checked set
// unconditionally, which also un-checks any surviving duplicate of the
// same string.
func Remove(d Document, category string, index int) (Document, error) {
	ci := d.findCategory(category)
	if ci < 0 {
		return Document{}, ErrCategoryNotFound
	}
	if index < 0 || index >= len(d.Categories[ci].Items) {
		return Document{}, ErrIndexOutOfRange
	}

	out := d.clone()
	removed := out.Categories[ci].Items[index]
	out.Categories[ci].Items = append(out.Categories[ci].Items[:index], out.Categories[ci].Items[index+1:]...)

	if len(out.Categories[ci].Items) == 0 {
		out.Categories = append(out.Categories[:ci], out.Categories[ci+1:]...)
	}

	checked := out.CheckedItems[:0]
	for _, it := range out.CheckedItems {
		if it != removed {
			checked = append(checked, it)
		}
	}
	out.CheckedItems = checked

	return out, nil
}
