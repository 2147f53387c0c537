package ingredient

import (
	"strconv"
	"strings"
)

// Metric to US conversion factors.
const (
	mlToTeaspoon    = 0.202884
	mlToTablespoon  = 0.067628
	mlToFluidOunce  = 0.033814
	mlToCup         = 0.00422675
	literToCup      = 4.22675
	literToPint     = 2.11338
	literToQuart    = 1.05669
	literToGallon   = 0.264172
	gramToOunce     = 0.035274
	gramToPound     = 0.00220462
	kilogramToOunce = 35.274
	kilogramToPound = 2.20462
)

// ToUS converts a metric measurement to the most readable US unit.
// Units that are not metric are returned unchanged, lower-cased.
func ToUS(value float64, unit string) (float64, string) {
	unit = strings.ToLower(strings.TrimSpace(unit))

	switch unit {
	case "ml", "milliliter", "millilitre":
		switch {
		case value < 5:
			return value * mlToTeaspoon, "teaspoon"
		case value < 15:
			return value * mlToTablespoon, "tablespoon"
		case value < 240:
			return value * mlToFluidOunce, "fluid ounce"
		default:
			return value * mlToCup, "cup"
		}
	case "l", "liter", "litre":
		switch {
		case value < 0.25:
			return value * literToCup, "cup"
		case value < 0.5:
			return value * literToPint, "pint"
		case value < 1:
			return value * literToQuart, "quart"
		default:
			return value * literToGallon, "gallon"
		}
	case "g", "gram":
		if value < 100 {
			return value * gramToOunce, "ounce"
		}
		return value * gramToPound, "pound"
	case "kg", "kilogram":
		if value < 0.5 {
			return value * kilogramToOunce, "ounce"
		}
		return value * kilogramToPound, "pound"
	}
	return value, unit
}

// Format renders a measurement with at most two decimals and a plural unit
// when value is not exactly 1. Abbreviations are never pluralized.
func Format(value float64, unit string) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")

	if value != 1 {
		switch {
		case strings.HasSuffix(unit, "ch"):
			unit += "es"
		case unit != "tsp" && unit != "tbsp":
			unit += "s"
		}
	}
	return s + " " + unit
}
