package model

import (
	"net/url"
	"strings"
	"time"
)

// Ingredient is one parsed ingredient line.
// Measurement and UnitType are nil when the parser could not find them;
// the raw text then ends up in Name.
type Ingredient struct {
	Name        string  `json:"name"`
	Measurement *string `json:"measurement"`
	UnitType    *string `json:"unit_type"`
}

// Recipe is a recipe in its stored, standardized form.
type Recipe struct {
	// ID is the storage identifier. Zero until the recipe has been stored.
	ID int64 `json:"id,omitempty"`

	// URL is the source page. At most one stored recipe exists per URL.
	URL string `json:"url"`

	Title string `json:"title"`

	// TotalTime is the total preparation time in minutes, nil when unknown.
	TotalTime *int `json:"total_time"`

	// Yields is the free-form yield text, e.g. "9 servings".
	Yields string `json:"yields,omitempty"`

	Ingredients []Ingredient `json:"ingredients"`

	// Instructions are newline separated steps.
	Instructions string `json:"instructions"`

	Image string `json:"image,omitempty"`

	// Host is the source hostname without a leading "www.".
	Host string `json:"host"`

	Nutrients map[string]any `json:"nutrients"`

	// Notes holds additional information such as language or the strategy that found the URL.
	Notes map[string]any `json:"notes"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// HostFromURL returns the lower-case hostname of rawURL without "www.".
// Returns empty string for unparseable URLs.
func HostFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IngredientNames returns the ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}
