package meals

import "strings"

// unitGrams maps a display unit to grams per unit. Volume units assume
// water density and are flagged approximate.
var unitGrams = map[string]struct {
	grams       float64
	approximate bool
}{
	"g":    {1, false},
	"kg":   {1000, false},
	"lb":   {454, false},
	"oz":   {28.35, false},
	"tbsp": {15, true},
	"tsp":  {5, true},
	"ml":   {1, true},
	"l":    {1000, true},
}

// convertToGrams converts a display quantity to grams. ok is false for
// unknown units.
func convertToGrams(quantity float64, unit string) (grams float64, approximate bool, ok bool) {
	u, found := unitGrams[strings.ToLower(unit)]
	if !found {
		return 0, false, false
	}
	return quantity * u.grams, u.approximate, true
}
