package shopping

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FallbackCategory is the bucket for items no configured category matches.
const FallbackCategory = "Annet"

// RecipeInput is one recipe's contribution to list generation: its ingredient
// strings, the serving count they are written for, and the serving count the
// user asked for.
type RecipeInput struct {
	Title            string
	BaselineServings float64
	TargetServings   float64
	Ingredients      []string
}

// categoryKeywords maps ingredient words to category names. Matching is
// case-insensitive substring matching, longest keyword first, so "melk" wins
// over "mel" for "2 dl melk".
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"melk", "Meieri"},
	{"fløte", "Meieri"},
	{"smør", "Meieri"},
	{"ost", "Meieri"},
	{"yoghurt", "Meieri"},
	{"rømme", "Meieri"},
	{"egg", "Meieri"},
	{"mel", "Tørrvarer"},
	{"sukker", "Tørrvarer"},
	{"ris", "Tørrvarer"},
	{"pasta", "Tørrvarer"},
	{"spagetti", "Tørrvarer"},
	{"havregryn", "Tørrvarer"},
	{"linser", "Tørrvarer"},
	{"bønner", "Tørrvarer"},
	{"salt", "Tørrvarer"},
	{"pepper", "Tørrvarer"},
	{"olje", "Tørrvarer"},
	{"buljong", "Tørrvarer"},
	{"brød", "Bakevarer"},
	{"rundstykker", "Bakevarer"},
	{"tortilla", "Bakevarer"},
	{"gjær", "Bakevarer"},
	{"kylling", "Kjøtt og fisk"},
	{"kjøttdeig", "Kjøtt og fisk"},
	{"kjøtt", "Kjøtt og fisk"},
	{"laks", "Kjøtt og fisk"},
	{"torsk", "Kjøtt og fisk"},
	{"fisk", "Kjøtt og fisk"},
	{"bacon", "Kjøtt og fisk"},
	{"skinke", "Kjøtt og fisk"},
	{"pølse", "Kjøtt og fisk"},
	{"biff", "Kjøtt og fisk"},
	{"løk", "Frukt og grønt"},
	{"hvitløk", "Frukt og grønt"},
	{"gulrot", "Frukt og grønt"},
	{"gulrøtter", "Frukt og grønt"},
	{"tomat", "Frukt og grønt"},
	{"agurk", "Frukt og grønt"},
	{"paprika", "Frukt og grønt"},
	{"eple", "Frukt og grønt"},
	{"banan", "Frukt og grønt"},
	{"salat", "Frukt og grønt"},
	{"potet", "Frukt og grønt"},
	{"sitron", "Frukt og grønt"},
	{"brokkoli", "Frukt og grønt"},
	{"squash", "Frukt og grønt"},
	{"frossen", "Frossent"},
	{"frosne", "Frossent"},
	{"frys", "Frossent"},
}

func init() {
	// Longest keyword first so compounds resolve before their substrings.
	for i := 1; i < len(categoryKeywords); i++ {
		for j := i; j > 0 && len(categoryKeywords[j].keyword) > len(categoryKeywords[j-1].keyword); j-- {
			categoryKeywords[j], categoryKeywords[j-1] = categoryKeywords[j-1], categoryKeywords[j]
		}
	}
}

var quantityPattern = regexp.MustCompile(`^(\d+\s*/\s*\d+|\d+(?:[.,]\d+)?)\s+(\S.*)$`)

// parseQuantity splits an ingredient string into a leading numeric quantity
// and the remainder ("2 dl melk" → 2, "dl melk"). Integers, decimals with
// either separator and simple fractions are recognized. ok is false when the
// string has no leading number.
func parseQuantity(s string) (qty float64, rest string, comma bool, ok bool) {
	m := quantityPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, "", false, false
	}

	num := strings.TrimSpace(m[1])
	rest = strings.TrimSpace(m[2])

	if strings.Contains(num, "/") {
		parts := strings.SplitN(num, "/", 2)
		a, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errA != nil || errB != nil || b == 0 {
			return 0, "", false, false
		}
		return a / b, rest, false, true
	}

	comma = strings.Contains(num, ",")
	qty, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
	if err != nil {
		return 0, "", false, false
	}
	return qty, rest, comma, true
}

// formatQuantity renders a quantity rounded to two decimals, without trailing
// zeros, keeping the decimal comma when the source used one.
func formatQuantity(qty float64, comma bool) string {
	rounded := math.Round(qty*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if comma {
		s = strings.ReplaceAll(s, ".", ",")
	}
	return s
}

func categorize(name string, configured []string) string {
	lowered := strings.ToLower(name)

	configuredSet := make(map[string]string, len(configured))
	for _, c := range configured {
		configuredSet[strings.ToLower(c)] = c
	}

	for _, kw := range categoryKeywords {
		if strings.Contains(lowered, kw.keyword) {
			if actual, ok := configuredSet[strings.ToLower(kw.category)]; ok {
				return actual
			}
			break
		}
	}

	if actual, ok := configuredSet[strings.ToLower(FallbackCategory)]; ok {
		return actual
	}
	return FallbackCategory
}

type aggregateLine struct {
	qty      float64
	rest     string
	comma    bool
	scalable bool
	raw      string
}

// Aggregate scales each recipe's ingredients to its target serving count and
// merges them into category-grouped line items. Lines with a parsable leading
// quantity merge by summing when the remainder matches case-insensitively
// within a category; lines without one merge only when identical. Category
// order follows the household's configured ordering, with the fallback bucket
// last unless the household placed it elsewhere.
func Aggregate(recipes []RecipeInput, configuredCategories []string) Document {
	type bucket struct {
		order []string
		lines map[string]*aggregateLine
	}
	buckets := make(map[string]*bucket)
	var bucketOrder []string

	for _, rec := range recipes {
		factor := 1.0
		if rec.BaselineServings > 0 && rec.TargetServings > 0 {
			factor = rec.TargetServings / rec.BaselineServings
		}

		for _, raw := range rec.Ingredients {
			ing := strings.TrimSpace(raw)
			if ing == "" {
				continue
			}

			qty, rest, comma, ok := parseQuantity(ing)

			var category, key string
			if ok {
				category = categorize(rest, configuredCategories)
				key = strings.ToLower(rest)
			} else {
				category = categorize(ing, configuredCategories)
				key = "raw:" + strings.ToLower(ing)
			}

			b, exists := buckets[category]
			if !exists {
				b = &bucket{lines: make(map[string]*aggregateLine)}
				buckets[category] = b
				bucketOrder = append(bucketOrder, category)
			}

			line, exists := b.lines[key]
			if !exists {
				line = &aggregateLine{rest: rest, scalable: ok, raw: ing}
				b.lines[key] = line
				b.order = append(b.order, key)
			}
			if ok {
				line.qty += qty * factor
				line.comma = line.comma || comma
			}
		}
	}

	ordered := orderCategories(configuredCategories, bucketOrder)

	doc := Document{Categories: make([]Category, 0, len(ordered))}
	for _, name := range ordered {
		b := buckets[name]
		cat := Category{Name: name, Items: make([]string, 0, len(b.order))}
		for _, key := range b.order {
			line := b.lines[key]
			if line.scalable {
				cat.Items = append(cat.Items, formatQuantity(line.qty, line.comma)+" "+line.rest)
			} else {
				cat.Items = append(cat.Items, line.raw)
			}
		}
		doc.Categories = append(doc.Categories, cat)
	}

	return doc
}

func orderCategories(configured, seen []string) []string {
	inConfigured := make(map[string]bool, len(configured))
	var ordered []string
	for _, c := range configured {
		inConfigured[c] = true
		for _, s := range seen {
			if s == c {
				ordered = append(ordered, c)
				break
			}
		}
	}
	for _, s := range seen {
		if !inConfigured[s] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
