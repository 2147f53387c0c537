package model

import (
	"fmt"
	"strings"
)

// URLType is the syntactic class a URL falls into.
type URLType int

const (
	// URLTypeUnknown means neither the recipe nor the category threshold was reached.
	// This is data, not an error: unknown links are still crawled at the lowest priority.
	URLTypeUnknown URLType = iota

	// URLTypeRecipe marks a URL that most likely points at a single recipe.
	URLTypeRecipe

	// URLTypeCategory marks a listing page (category, diet, cuisine, index).
	URLTypeCategory

	// URLTypeExclude marks a URL that must never be crawled
	// (media, account, legal, feed, pagination, admin, bare date archives).
	URLTypeExclude
)

// String returns the lower-case name of the URL type.
func (t URLType) String() string {
	switch t {
	case URLTypeRecipe:
		return "recipe"
	case URLTypeCategory:
		return "category"
	case URLTypeExclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON output uses names.
func (t URLType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *URLType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "recipe":
		*t = URLTypeRecipe
	case "category":
		*t = URLTypeCategory
	case "exclude":
		*t = URLTypeExclude
	case "unknown", "":
		*t = URLTypeUnknown
	default:
		return fmt.Errorf("unknown url type %q", string(text))
	}
	return nil
}

// DateComponents holds the date segments of a date-based URL.
// Day is empty when the URL only carries year and month.
type DateComponents struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day,omitempty"`
}

// URLClassification is the result of classifying a URL by its path alone.
type URLClassification struct {
	// URL is the classified URL as given.
	URL string `json:"url"`

	// Type is the winning class. Exclude takes precedence over everything.
	Type URLType `json:"type"`

	// Score is the confidence within Type, 0-100.
	Score int `json:"score"`

	// Features lists the matched signals in evaluation order.
	Features []string `json:"features,omitempty"`

	// Date is set when a date-segmented recipe pattern matched.
	Date *DateComponents `json:"date_components,omitempty"`
}

// IsDateBased reports whether the date override matched.
func (c URLClassification) IsDateBased() bool {
	return c.Date != nil
}

// ContentClassification is the result of analyzing a page's HTML.
// It is computed per fetch and never cached.
type ContentClassification struct {
	// IsRecipe is always Confidence >= the configured threshold.
	IsRecipe bool `json:"is_recipe"`

	// Confidence is the weighted sum of the sub-scores, clamped to [0,100].
	Confidence float64 `json:"confidence"`

	// Features lists each signal with its sub-score, e.g. "heading_score:60".
	Features []string `json:"features,omitempty"`

	// SubScores keeps the raw sub-scores keyed by signal name.
	SubScores map[string]int `json:"sub_scores,omitempty"`
}
