package config

// Thresholds holds the classifier constants.
// The values were tuned against real recipe sites; they are kept as named,
// overridable settings so behavior stays compatible unless a user opts out.
type Thresholds struct {
	// PatternScore is awarded for the first matching recipe or category path pattern.
	PatternScore int `yaml:"pattern_score,omitempty"`

	// KeywordPoints is awarded per distinct keyword in the last path segment.
	KeywordPoints int `yaml:"keyword_points,omitempty"`

	// KeywordCap caps the keyword contribution.
	KeywordCap int `yaml:"keyword_cap,omitempty"`

	// RecipeURLMin is the minimum recipe score for a Recipe classification.
	RecipeURLMin int `yaml:"recipe_url_min,omitempty"`

	// CategoryURLMin is used by the IsLikelyCategory helper.
	CategoryURLMin int `yaml:"category_url_min,omitempty"`

	// DateOverrideScore is the floor applied when a date-segmented URL forces Recipe.
	DateOverrideScore int `yaml:"date_override_score,omitempty"`

	// ContentRecipeMin is the confidence at or above which a page is a recipe.
	ContentRecipeMin float64 `yaml:"content_recipe_min,omitempty"`

	// Weights for the content sub-scores.
	StructuredWeight  float64 `yaml:"structured_weight,omitempty"`
	HeadingWeight     float64 `yaml:"heading_weight,omitempty"`
	IngredientWeight  float64 `yaml:"ingredient_weight,omitempty"`
	InstructionWeight float64 `yaml:"instruction_weight,omitempty"`
	MetadataWeight    float64 `yaml:"metadata_weight,omitempty"`
}

// DefaultThresholds returns the standard classifier constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PatternScore:      40,
		KeywordPoints:     10,
		KeywordCap:        30,
		RecipeURLMin:      30,
		CategoryURLMin:    30,
		DateOverrideScore: 70,
		ContentRecipeMin:  60,
		StructuredWeight:  0.40,
		HeadingWeight:     0.20,
		IngredientWeight:  0.20,
		InstructionWeight: 0.15,
		MetadataWeight:    0.05,
	}
}

// Merge returns t with every non-zero field of o applied on top.
func (t Thresholds) Merge(o Thresholds) Thresholds {
	if o.PatternScore != 0 {
		t.PatternScore = o.PatternScore
	}
	if o.KeywordPoints != 0 {
		t.KeywordPoints = o.KeywordPoints
	}
	if o.KeywordCap != 0 {
		t.KeywordCap = o.KeywordCap
	}
	if o.RecipeURLMin != 0 {
		t.RecipeURLMin = o.RecipeURLMin
	}
	if o.CategoryURLMin != 0 {
		t.CategoryURLMin = o.CategoryURLMin
	}
	if o.DateOverrideScore != 0 {
		t.DateOverrideScore = o.DateOverrideScore
	}
	if o.ContentRecipeMin != 0 {
		t.ContentRecipeMin = o.ContentRecipeMin
	}
	if o.StructuredWeight != 0 {
		t.StructuredWeight = o.StructuredWeight
	}
	if o.HeadingWeight != 0 {
		t.HeadingWeight = o.HeadingWeight
	}
	if o.IngredientWeight != 0 {
		t.IngredientWeight = o.IngredientWeight
	}
	if o.InstructionWeight != 0 {
		t.InstructionWeight = o.InstructionWeight
	}
	if o.MetadataWeight != 0 {
		t.MetadataWeight = o.MetadataWeight
	}
	return t
}

// Validate reports ErrInvalidThresholds when a score is outside 0-100
// or a weight is negative.
func (t Thresholds) Validate() error {
	scores := []int{t.PatternScore, t.KeywordPoints, t.KeywordCap, t.RecipeURLMin, t.CategoryURLMin, t.DateOverrideScore}
	for _, s := range scores {
		if s < 0 || s > 100 {
			return ErrInvalidThresholds
		}
	}
	if t.ContentRecipeMin < 0 || t.ContentRecipeMin > 100 {
		return ErrInvalidThresholds
	}
	weights := []float64{t.StructuredWeight, t.HeadingWeight, t.IngredientWeight, t.InstructionWeight, t.MetadataWeight}
	for _, w := range weights {
		if w < 0 {
			return ErrInvalidThresholds
		}
	}
	return nil
}
