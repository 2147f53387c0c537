package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/model"
)

// pattern pairs a compiled expression with its source, which is reported in features.
type pattern struct {
	source string
	re     *regexp.Regexp
}

func compilePatterns(sources ...string) []pattern {
	out := make([]pattern, 0, len(sources))
	for _, s := range sources {
		out = append(out, pattern{source: s, re: regexp.MustCompile(s)})
	}
	return out
}

// recipePatterns are tried from most to least specific; only the first match scores.
var recipePatterns = compilePatterns(
	`/\d{4}/\d{2}/\d{2}/[a-z0-9-]+/?$`,
	`/\d{4}/\d{2}/[a-z0-9-]+/?$`,
	`/\d{4}/[a-z0-9-]+/?$`,
	`/[a-z0-9-]+-[a-z0-9-]+-[a-z0-9-]+/?$`,
	`/recipes?/\d+/[a-z0-9-]+/?$`,
	`/recipes?/[a-z0-9-]+/\d+/?$`,
	`/recipes?/[a-z0-9-]+/?$`,
	`/[a-z0-9-]+/recipes?/[a-z0-9-]+/?$`,
)

var categoryPatterns = compilePatterns(
	`/category/[a-z0-9-]+/?$`,
	`/categories/[a-z0-9-]+/?$`,
	`/recipes/category/[a-z0-9-]+/?$`,
	`/[a-z0-9-]+-recipes/?$`,
	`/diet/[a-z0-9-]+/?$`,
	`/cuisine/[a-z0-9-]+/?$`,
	`/course/[a-z0-9-]+/?$`,
	`/meal/[a-z0-9-]+/?$`,
	`/recipes/?$`,
	`/recipe-index/?$`,
)

var excludePatterns = compilePatterns(
	// media
	`\.(jpg|jpeg|png|gif|pdf|zip|mp3|mp4)$`,
	// site chrome
	`/about/?$`, `/contact/?$`, `/privacy/?$`, `/terms/?$`,
	`/search/?$`, `/tag/[a-z0-9-]+/?$`, `/author/[a-z0-9-]+/?$`,
	`/page/\d+/?$`, `/comment-page-\d+/?$`, `/trackback/?$`,
	`/feed/?$`, `/wp-content/`, `/wp-admin/`, `/wp-includes/`,
	`/cdn-cgi/`, `/wp-json/`, `/xmlrpc\.php`, `/wp-login\.php`,
	// shop and account
	`/cart/?$`, `/checkout/?$`, `/account/?$`, `/login/?$`,
	`/register/?$`, `/my-account/?$`, `/shop/?$`, `/store/?$`,
	// sharing
	`/share/?$`, `/print/?$`, `/email/?$`, `/subscribe/?$`,
	`/newsletter/?$`, `/follow/?$`,
	// bare archives
	`/\d{4}/\d{2}/?$`,
	`/\d{4}/?$`,
)

// datePattern forces Recipe for blog-style /YYYY/MM[/DD]/slug/ URLs.
var datePattern = regexp.MustCompile(`/(\d{4})/(\d{2})(?:/(\d{2}))?/[a-z0-9-]+/?$`)

// recipeKeywords are matched as substrings of the last path segment.
var recipeKeywords = []string{
	"recipe", "dish", "meal", "cake", "bread", "stew", "roast", "bake", "cook",
	"food", "dinner", "lunch", "breakfast", "dessert", "appetizer", "snack",
	"drink", "cocktail", "smoothie", "soup", "salad", "sandwich", "pasta",
	"pizza", "pie", "cookie", "muffin", "brownie", "chicken", "beef", "pork",
	"fish", "vegetarian", "vegan", "gluten-free", "dairy-free", "low-carb",
	"nut-free", "sugar-free", "healthy", "quick", "easy", "simple",
	"traditional", "authentic", "homemade", "from-scratch", "slow-cooker",
	"instant-pot", "pressure-cooker", "grill", "barbecue", "smoke", "fry",
	"sauté", "steam", "boil", "broil", "microwave", "oven", "stovetop",
	"casserole", "wrap", "taco", "burrito", "sushi", "sashimi", "poke",
	"ceviche", "tartare", "carpaccio", "charcuterie", "platter", "board",
	"dip", "spread", "sauce", "condiment", "marinade",
}

// URLClassifier classifies URLs by path alone. It never performs I/O.
// A URLClassifier is immutable and safe for concurrent use.
type URLClassifier struct {
	th config.Thresholds
}

// URLOption configures a URLClassifier.
type URLOption func(*URLClassifier)

// WithURLThresholds replaces the classifier constants.
func WithURLThresholds(th config.Thresholds) URLOption {
	return func(c *URLClassifier) {
		c.th = th
	}
}

// NewURLClassifier creates a URL classifier with the default thresholds.
func NewURLClassifier(opts ...URLOption) *URLClassifier {
	c := &URLClassifier{th: config.DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the classification of rawURL.
//
// Exclude patterns short-circuit with score 100. Otherwise the recipe score
// (first recipe pattern plus capped keyword points) competes with the
// category score (first category pattern), Recipe winning only when strictly
// higher and at least RecipeURLMin. A date-segmented path finally forces
// Recipe with at least DateOverrideScore.
func (c *URLClassifier) Classify(rawURL string) model.URLClassification {
	result := model.URLClassification{
		URL:  rawURL,
		Type: model.URLTypeUnknown,
	}

	path := pathOf(rawURL)

	for _, p := range excludePatterns {
		if p.re.MatchString(path) {
			result.Type = model.URLTypeExclude
			result.Score = 100
			result.Features = append(result.Features, "matched_exclude_pattern:"+p.source)
			return result
		}
	}

	recipeScore := 0
	for _, p := range recipePatterns {
		if p.re.MatchString(path) {
			recipeScore += c.th.PatternScore
			result.Features = append(result.Features, "matched_recipe_pattern:"+p.source)
			break
		}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	hits := 0
	for _, kw := range recipeKeywords {
		if strings.Contains(last, kw) {
			hits++
			result.Features = append(result.Features, "recipe_keyword:"+kw)
		}
	}
	if hits > 0 {
		recipeScore += min(c.th.KeywordCap, hits*c.th.KeywordPoints)
	}

	categoryScore := 0
	for _, p := range categoryPatterns {
		if p.re.MatchString(path) {
			categoryScore += c.th.PatternScore
			result.Features = append(result.Features, "matched_category_pattern:"+p.source)
			break
		}
	}

	switch {
	case recipeScore > categoryScore && recipeScore >= c.th.RecipeURLMin:
		result.Type = model.URLTypeRecipe
		result.Score = recipeScore
	case categoryScore > 0:
		result.Type = model.URLTypeCategory
		result.Score = categoryScore
	}

	if m := datePattern.FindStringSubmatch(path); m != nil {
		result.Type = model.URLTypeRecipe
		result.Score = max(result.Score, c.th.DateOverrideScore)
		result.Features = append(result.Features, "date_based_url")
		result.Date = &model.DateComponents{Year: m[1], Month: m[2], Day: m[3]}
	}

	return result
}

// IsLikelyRecipe reports whether rawURL classifies as Recipe with at least RecipeURLMin.
func (c *URLClassifier) IsLikelyRecipe(rawURL string) bool {
	r := c.Classify(rawURL)
	return r.Type == model.URLTypeRecipe && r.Score >= c.th.RecipeURLMin
}

// IsLikelyCategory reports whether rawURL classifies as Category with at least CategoryURLMin.
func (c *URLClassifier) IsLikelyCategory(rawURL string) bool {
	r := c.Classify(rawURL)
	return r.Type == model.URLTypeCategory && r.Score >= c.th.CategoryURLMin
}

// ShouldExclude reports whether rawURL must never be crawled.
func (c *URLClassifier) ShouldExclude(rawURL string) bool {
	return c.Classify(rawURL).Type == model.URLTypeExclude
}

// IsDatePath reports whether the URL path has the /YYYY/MM[/DD]/slug shape.
func IsDatePath(rawURL string) bool {
	return datePattern.MatchString(pathOf(rawURL))
}

// pathOf returns the lower-cased path of rawURL.
// Unparseable input is treated as a path so classification stays total.
func pathOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Path)
}
