package ingredient

import (
	"math/big"
	"testing"
)

func strPtr(s string) *string { return &s }

// TestParserParse tests quantity and unit extraction.
func TestParserParse(t *testing.T) {
	t.Parallel()

	p := NewParser()

	tests := []struct {
		name    string
		input   string
		want    string
		measure *string
		unit    *string
	}{
		{name: "whole number with plural unit", input: "1 cup flour", want: "flour", measure: strPtr("1"), unit: strPtr("cup")},
		{name: "mixed number", input: "1 1/2 cups milk", want: "milk", measure: strPtr("1 1/2"), unit: strPtr("cup")},
		{name: "simple fraction", input: "1/2 teaspoon salt", want: "salt", measure: strPtr("1/2"), unit: strPtr("teaspoon")},
		{name: "vulgar fraction", input: "½ teaspoon cumin", want: "cumin", measure: strPtr("1/2"), unit: strPtr("teaspoon")},
		{name: "spaced vulgar fraction", input: "1 ½ teaspoons garlic powder", want: "garlic powder", measure: strPtr("1 1/2"), unit: strPtr("teaspoon")},
		{name: "third", input: "⅓ cup sour cream (or plain Greek yogurt)", want: "sour cream (or plain Greek yogurt)", measure: strPtr("1/3"), unit: strPtr("cup")},
		{name: "abbreviation prefers the longer match", input: "500 gr frieten", want: "frieten", measure: strPtr("500"), unit: strPtr("gram")},
		{name: "no unit keeps the adjective", input: "3 large eggs", want: "large eggs", measure: strPtr("3")},
		{name: "count unit with trailing note", input: "2 cloves garlic, minced", want: "garlic, minced", measure: strPtr("2"), unit: strPtr("clove")},
		{name: "unit glued to quantity", input: "250g butter", want: "butter", measure: strPtr("250"), unit: strPtr("gram")},
		{name: "upper case unit", input: "2 TBSP honey", want: "honey", measure: strPtr("2"), unit: strPtr("tablespoon")},
		{name: "capital T is a teaspoon", input: "1 T sugar", want: "sugar", measure: strPtr("1"), unit: strPtr("teaspoon")},
		{name: "two word unit", input: "8 fl oz cream", want: "cream", measure: strPtr("8"), unit: strPtr("fluid ounce")},
		{name: "decimal becomes fraction", input: "1.5 kg potatoes", want: "potatoes", measure: strPtr("3/2"), unit: strPtr("kilogram")},
		{name: "leading comma is stripped", input: "2 cups, sifted flour", want: "sifted flour", measure: strPtr("2"), unit: strPtr("cup")},
		{name: "unit first", input: "cup 2 yellow onion", want: "yellow onion", measure: strPtr("2"), unit: strPtr("cup")},
		{name: "no quantity", input: "salt and pepper to taste", want: "salt and pepper to taste"},
		{name: "unit without quantity", input: "Cup yellow onion, diced", want: "Cup yellow onion, diced"},
		{name: "whitespace is collapsed", input: "  salt \t and   pepper ", want: "salt and pepper"},
		{name: "empty line", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := p.Parse(tt.input)
			if got.Name != tt.want {
				t.Errorf("expected name %q, got %q", tt.want, got.Name)
			}
			if !equalPtr(got.Measurement, tt.measure) {
				t.Errorf("expected measurement %v, got %v", deref(tt.measure), deref(got.Measurement))
			}
			if !equalPtr(got.UnitType, tt.unit) {
				t.Errorf("expected unit %v, got %v", deref(tt.unit), deref(got.UnitType))
			}
		})
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

// TestParserParseAll tests that lines keep their order.
func TestParserParseAll(t *testing.T) {
	t.Parallel()

	got := NewParser().ParseAll([]string{"1 cup flour", "salt"})
	if len(got) != 2 || got[0].Name != "flour" || got[1].Name != "salt" {
		t.Errorf("unexpected result %+v", got)
	}
}

// TestNormalizeText tests fraction normalization.
func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "¾ cup", want: "3/4 cup"},
		{input: "⅞ cup", want: "7/8 cup"},
		{input: "2.0 cups", want: "2 cups"},
		{input: "0.3333333333333333 cup", want: "1/3 cup"},
		{input: "15.25 ounce", want: "61/4 ounce"},
		{input: "1½ cups", want: "21/2 cups"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := normalizeText(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestLimitDenominator tests the continued fraction approximation.
func TestLimitDenominator(t *testing.T) {
	t.Parallel()

	pi, _ := new(big.Rat).SetString("3.141592653589793")

	tests := []struct {
		name   string
		maxDen int64
		want   string
	}{
		{name: "small bound", maxDen: 10, want: "22/7"},
		{name: "medium bound", maxDen: 100, want: "311/99"},
		{name: "large bound", maxDen: 1000, want: "355/113"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := limitDenominator(pi, big.NewInt(tt.maxDen)).RatString(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestQuantity tests measurement string evaluation.
func TestQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{name: "whole number", in: "3", want: 3, wantOK: true},
		{name: "simple fraction", in: "1/2", want: 0.5, wantOK: true},
		{name: "mixed number", in: "1 1/2", want: 1.5, wantOK: true},
		{name: "decimal", in: "2.5", want: 2.5, wantOK: true},
		{name: "empty string", in: "", wantOK: false},
		{name: "words", in: "a few", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Quantity(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Quantity(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Quantity(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
