package ingredient

import (
	"math"
	"testing"
)

// TestToUS tests metric to US conversion thresholds.
func TestToUS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     float64
		unit      string
		wantValue float64
		wantUnit  string
	}{
		{name: "small volume becomes teaspoons", value: 2.5, unit: "ml", wantValue: 0.50721, wantUnit: "teaspoon"},
		{name: "medium volume becomes tablespoons", value: 10, unit: "milliliter", wantValue: 0.67628, wantUnit: "tablespoon"},
		{name: "larger volume becomes fluid ounces", value: 100, unit: "millilitre", wantValue: 3.3814, wantUnit: "fluid ounce"},
		{name: "large volume becomes cups", value: 250, unit: "ML", wantValue: 1.0566875, wantUnit: "cup"},
		{name: "small liters become cups", value: 0.2, unit: "l", wantValue: 0.84535, wantUnit: "cup"},
		{name: "liters become pints", value: 0.3, unit: "liter", wantValue: 0.634014, wantUnit: "pint"},
		{name: "liters become quarts", value: 0.75, unit: "litre", wantValue: 0.7925175, wantUnit: "quart"},
		{name: "many liters become gallons", value: 2, unit: "l", wantValue: 0.528344, wantUnit: "gallon"},
		{name: "grams become ounces", value: 50, unit: "g", wantValue: 1.7637, wantUnit: "ounce"},
		{name: "many grams become pounds", value: 500, unit: "gram", wantValue: 1.10231, wantUnit: "pound"},
		{name: "small kilograms become ounces", value: 0.25, unit: "kg", wantValue: 8.8185, wantUnit: "ounce"},
		{name: "kilograms become pounds", value: 1, unit: "kilogram", wantValue: 2.20462, wantUnit: "pound"},
		{name: "us units pass through lower-cased", value: 2, unit: "Cup", wantValue: 2, wantUnit: "cup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotValue, gotUnit := ToUS(tt.value, tt.unit)
			if gotUnit != tt.wantUnit {
				t.Errorf("expected unit %q, got %q", tt.wantUnit, gotUnit)
			}
			if math.Abs(gotValue-tt.wantValue) > 1e-6 {
				t.Errorf("expected value %v, got %v", tt.wantValue, gotValue)
			}
		})
	}
}

// TestFormat tests measurement rendering.
func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		unit  string
		want  string
	}{
		{name: "singular", value: 1, unit: "cup", want: "1 cup"},
		{name: "plural", value: 2, unit: "cup", want: "2 cups"},
		{name: "decimals are trimmed", value: 1.50, unit: "pound", want: "1.5 pounds"},
		{name: "rounded to two places", value: 0.50721, unit: "teaspoon", want: "0.51 teaspoons"},
		{name: "ch ending takes es", value: 2, unit: "pinch", want: "2 pinches"},
		{name: "abbreviations stay singular", value: 3, unit: "tbsp", want: "3 tbsp"},
		{name: "zero is plural", value: 0, unit: "cup", want: "0 cups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Format(tt.value, tt.unit); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
