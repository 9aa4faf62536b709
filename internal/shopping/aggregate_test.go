package shopping

import (
	"reflect"
	"testing"
)

var testCategories = []string{
	"Frukt og grønt", "Bakevarer", "Meieri", "Kjøtt og fisk", "Tørrvarer", "Frossent", "Annet",
}

func findItems(t *testing.T, doc Document, category string) []string {
	t.Helper()
	for _, cat := range doc.Categories {
		if cat.Name == category {
			return cat.Items
		}
	}
	t.Fatalf("category %q not found in %+v", category, doc.Categories)
	return nil
}

func TestAggregateScaling(t *testing.T) {
	t.Run("doubles quantities when servings double", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			Title:            "Pannekaker",
			BaselineServings: 2,
			TargetServings:   4,
			Ingredients:      []string{"2 dl melk", "1 egg"},
		}}, testCategories)

		items := findItems(t, doc, "Meieri")
		if !reflect.DeepEqual(items, []string{"4 dl melk", "2 egg"}) {
			t.Errorf("got %v", items)
		}
	})

	t.Run("keeps the decimal comma of the source", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   3,
			Ingredients:      []string{"0,5 l melk"},
		}}, testCategories)

		items := findItems(t, doc, "Meieri")
		if items[0] != "0,75 l melk" {
			t.Errorf("got %q, want %q", items[0], "0,75 l melk")
		}
	})

	t.Run("scales simple fractions", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 4,
			TargetServings:   8,
			Ingredients:      []string{"1/2 ts salt"},
		}}, testCategories)

		items := findItems(t, doc, "Tørrvarer")
		if items[0] != "1 ts salt" {
			t.Errorf("got %q, want %q", items[0], "1 ts salt")
		}
	})

	t.Run("passes unparsed lines through unscaled", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   6,
			Ingredients:      []string{"salt og pepper etter smak"},
		}}, testCategories)

		items := findItems(t, doc, "Tørrvarer")
		if items[0] != "salt og pepper etter smak" {
			t.Errorf("got %q", items[0])
		}
	})
}

func TestAggregateMerging(t *testing.T) {
	t.Run("sums matching lines across recipes", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{
			{BaselineServings: 2, TargetServings: 2, Ingredients: []string{"2 dl melk"}},
			{BaselineServings: 4, TargetServings: 4, Ingredients: []string{"3 dl Melk"}},
		}, testCategories)

		items := findItems(t, doc, "Meieri")
		if !reflect.DeepEqual(items, []string{"5 dl melk"}) {
			t.Errorf("got %v, want one merged line", items)
		}
	})

	t.Run("keeps different units apart", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{
			{BaselineServings: 2, TargetServings: 2, Ingredients: []string{"2 dl melk", "1 l melk"}},
		}, testCategories)

		items := findItems(t, doc, "Meieri")
		if len(items) != 2 {
			t.Errorf("got %v, want two lines", items)
		}
	})

	t.Run("merges unparsed lines only when identical", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{
			{BaselineServings: 2, TargetServings: 2, Ingredients: []string{"salt etter smak"}},
			{BaselineServings: 2, TargetServings: 2, Ingredients: []string{"salt etter smak", "litt pepper"}},
		}, testCategories)

		items := findItems(t, doc, "Tørrvarer")
		if len(items) != 2 {
			t.Errorf("got %v, want deduplicated salt plus pepper", items)
		}
	})
}

func TestAggregateCategorization(t *testing.T) {
	t.Run("unmatched ingredients land in the fallback", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   2,
			Ingredients:      []string{"1 boks kokosmelk fra mars"},
		}}, []string{"Meieri", "Annet"})

		// "kokosmelk" contains "melk" but here the household has Meieri
		// configured, so keyword matching wins; verify fallback with a
		// genuinely unknown ingredient instead.
		doc2 := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   2,
			Ingredients:      []string{"2 stk stjerneanis"},
		}}, []string{"Meieri", "Annet"})

		if len(findItems(t, doc, "Meieri")) != 1 {
			t.Errorf("keyword match failed: %+v", doc.Categories)
		}
		if len(findItems(t, doc2, "Annet")) != 1 {
			t.Errorf("fallback failed: %+v", doc2.Categories)
		}
	})

	t.Run("keyword category not configured falls back", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   2,
			Ingredients:      []string{"400 g kjøttdeig"},
		}}, []string{"Meieri", "Annet"})

		if len(findItems(t, doc, "Annet")) != 1 {
			t.Errorf("got %+v, want kjøttdeig in Annet", doc.Categories)
		}
	})

	t.Run("category order follows the household configuration", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   2,
			Ingredients:      []string{"500 g mel", "2 dl melk", "1 løk"},
		}}, testCategories)

		var names []string
		for _, cat := range doc.Categories {
			names = append(names, cat.Name)
		}
		if !reflect.DeepEqual(names, []string{"Frukt og grønt", "Meieri", "Tørrvarer"}) {
			t.Errorf("got order %v", names)
		}
	})

	t.Run("melk resolves to dairy not flour", func(t *testing.T) {
		doc := Aggregate([]RecipeInput{{
			BaselineServings: 2,
			TargetServings:   2,
			Ingredients:      []string{"2 dl melk"},
		}}, testCategories)

		if len(findItems(t, doc, "Meieri")) != 1 {
			t.Errorf("got %+v, want melk in Meieri", doc.Categories)
		}
	})
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in    string
		qty   float64
		rest  string
		comma bool
		ok    bool
	}{
		{"2 dl melk", 2, "dl melk", false, true},
		{"0,5 l fløte", 0.5, "l fløte", true, true},
		{"1.5 kg poteter", 1.5, "kg poteter", false, true},
		{"1/2 ts salt", 0.5, "ts salt", false, true},
		{"salt etter smak", 0, "", false, false},
		{"", 0, "", false, false},
	}

	for _, tt := range tests {
		qty, rest, comma, ok := parseQuantity(tt.in)
		if qty != tt.qty || rest != tt.rest || comma != tt.comma || ok != tt.ok {
			t.Errorf("parseQuantity(%q) = (%v, %q, %v, %v), want (%v, %q, %v, %v)",
				tt.in, qty, rest, comma, ok, tt.qty, tt.rest, tt.comma, tt.ok)
		}
	}
}
