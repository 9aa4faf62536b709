package shopping

import (
	"errors"
	"reflect"
	"testing"
)

func sampleDocument() Document {
	return Document{
		Categories: []Category{
			{Name: "Meieri", Items: []string{"4 dl melk", "200 g smør"}},
			{Name: "Tørrvarer", Items: []string{"500 g mel"}},
		},
		CheckedItems: []string{"500 g mel"},
	}
}

func TestToggle(t *testing.T) {
	t.Run("checks an unchecked item", func(t *testing.T) {
		doc := sampleDocument()
		out := Toggle(doc, "4 dl melk")

		if !out.Checked("4 dl melk") {
			t.Error("expected item to be checked")
		}
		if doc.Checked("4 dl melk") {
			t.Error("input document was modified")
		}
	})

	t.Run("unchecks a checked item", func(t *testing.T) {
		out := Toggle(sampleDocument(), "500 g mel")
		if out.Checked("500 g mel") {
			t.Error("expected item to be unchecked")
		}
	})

	t.Run("twice returns to the original state", func(t *testing.T) {
		doc := sampleDocument()
		out := Toggle(Toggle(doc, "4 dl melk"), "4 dl melk")

		if !reflect.DeepEqual(out.CheckedItems, doc.CheckedItems) {
			t.Errorf("got checked items %v, want %v", out.CheckedItems, doc.CheckedItems)
		}
	})

	t.Run("duplicates share checked state", func(t *testing.T) {
		doc := Document{
			Categories: []Category{
				{Name: "Meieri", Items: []string{"2 egg"}},
				{Name: "Annet", Items: []string{"2 egg"}},
			},
		}
		out := Toggle(doc, "2 egg")
		if len(out.CheckedItems) != 1 {
			t.Errorf("got %d checked entries, want 1 shared entry", len(out.CheckedItems))
		}
	})
}

func TestEdit(t *testing.T) {
	t.Run("replaces the addressed item", func(t *testing.T) {
		out, err := Edit(sampleDocument(), "Meieri", 0, "6 dl melk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := out.Categories[0].Items[0]; got != "6 dl melk" {
			t.Errorf("got %q, want %q", got, "6 dl melk")
		}
	})

	t.Run("leaves the checked set untouched", func(t *testing.T) {
		out, err := Edit(sampleDocument(), "Tørrvarer", 0, "750 g mel")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The stale entry for the old value lingers.
		if !reflect.DeepEqual(out.CheckedItems, []string{"500 g mel"}) {
			t.Errorf("checked set changed: %v", out.CheckedItems)
		}
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		_, err := Edit(sampleDocument(), "Frossent", 0, "x")
		if !errors.Is(err, ErrCategoryNotFound) {
			t.Errorf("got %v, want ErrCategoryNotFound", err)
		}
	})

	t.Run("rejects an out-of-range index", func(t *testing.T) {
		_, err := Edit(sampleDocument(), "Meieri", 5, "x")
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("got %v, want ErrIndexOutOfRange", err)
		}
	})

	t.Run("rejects a blank value", func(t *testing.T) {
		_, err := Edit(sampleDocument(), "Meieri", 0, "   ")
		if !errors.Is(err, ErrEmptyItem) {
			t.Errorf("got %v, want ErrEmptyItem", err)
		}
	})
}

func TestAdd(t *testing.T) {
	t.Run("appends to an existing category", func(t *testing.T) {
		out, err := Add(sampleDocument(), "Meieri", "1 boks rømme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items := out.Categories[0].Items
		if items[len(items)-1] != "1 boks rømme" {
			t.Errorf("item not appended: %v", items)
		}
	})

	t.Run("creates an unknown category at the end", func(t *testing.T) {
		out, err := Add(sampleDocument(), "Frossent", "1 pose frosne erter")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := out.Categories[len(out.Categories)-1]
		if last.Name != "Frossent" || len(last.Items) != 1 {
			t.Errorf("got %+v, want new category with one item", last)
		}
	})

	t.Run("rejects a blank item", func(t *testing.T) {
		if _, err := Add(sampleDocument(), "Meieri", ""); !errors.Is(err, ErrEmptyItem) {
			t.Errorf("got %v, want ErrEmptyItem", err)
		}
	})
}

func TestRemove(t *testing.T) {
	t.Run("deletes the addressed item", func(t *testing.T) {
		out, err := Remove(sampleDocument(), "Meieri", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(out.Categories[0].Items, []string{"200 g smør"}) {
			t.Errorf("got %v", out.Categories[0].Items)
		}
	})

	t.Run("drops a category that empties", func(t *testing.T) {
		out, err := Remove(sampleDocument(), "Tørrvarer", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.findCategory("Tørrvarer") >= 0 {
			t.Error("emptied category was not dropped")
		}
	})

	t.Run("purges the removed string from the checked set", func(t *testing.T) {
		out, err := Remove(sampleDocument(), "Tørrvarer", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Checked("500 g mel") {
			t.Error("checked entry for removed item survived")
		}
	})

	t.Run("rejects an out-of-range index", func(t *testing.T) {
		if _, err := Remove(sampleDocument(), "Meieri", 2); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("got %v, want ErrIndexOutOfRange", err)
		}
	})
}

func TestAddRemoveRoundTrip(t *testing.T) {
	doc := sampleDocument()

	added, err := Add(doc, "Frossent", "1 pose frosne erter")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	removed, err := Remove(added, "Frossent", 0)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if !reflect.DeepEqual(removed.Categories, doc.Categories) {
		t.Errorf("round trip changed categories:\ngot  %+v\nwant %+v", removed.Categories, doc.Categories)
	}
}

// Interleaved edits and removes from two stale actors must never corrupt the
// document; a loser gets an error and re-fetches.
func TestConcurrentEditRemoveStaysWellFormed(t *testing.T) {
	doc := sampleDocument()

	afterRemove, err := Remove(doc, "Meieri", 1)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	// Second actor still addresses the old index.
	if _, err := Edit(afterRemove, "Meieri", 1, "300 g smør"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v, want ErrIndexOutOfRange", err)
	}

	if err := ValidateDocument(&afterRemove); err != nil {
		t.Errorf("document is not well-formed: %v", err)
	}
}
