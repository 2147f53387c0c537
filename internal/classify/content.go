package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/model"
)

// Sub-score names, used as feature prefixes and SubScores keys.
const (
	SignalStructuredData = "structured_data"
	SignalHeading        = "heading"
	SignalIngredient     = "ingredient"
	SignalInstruction    = "instruction"
	SignalMetadata       = "metadata"
)

var headingTerms = []string{
	"ingredients", "directions", "instructions", "method", "preparation",
	"steps", "how to make", "what you need", "recipe", "nutrition",
	"cook time", "prep time", "total time", "servings", "yield",
}

// ingredientMarker matches unit words and cooking markers as whole words.
// A leading digit counts as a boundary so "200g" matches.
var ingredientMarker = regexp.MustCompile(
	`(?:^|[^a-z])(cups?|tablespoons?|tbsp|teaspoons?|tsp|ounces?|oz|pounds?|lbs?|grams?|g|kilograms?|kg|ml|milliliters?|liters?|pinch|dash|to taste|cloves?|bunch|bunches|sprigs?)(?:$|[^a-z])`,
)

// schemaTerms are looked up in ld+json script text.
var schemaTerms = []string{
	"Recipe", "recipeIngredient", "recipeInstructions", "recipeYield",
	"cookTime", "prepTime", "totalTime", "nutrition",
}

// propertyTerms are looked up in itemprop and property attribute values.
var propertyTerms = []string{
	"recipe", "ingredients", "recipeIngredient", "recipeInstructions",
	"cookTime", "prepTime", "totalTime", "recipeYield", "nutrition",
}

var instructionTerms = []string{"instruction", "direction", "method", "step"}

var metadataTerms = []string{
	"cook time", "prep time", "preparation time", "total time",
	"servings", "yield", "serves", "difficulty", "cuisine",
}

// Override accepts a page as a recipe without consulting the weighted score.
// Overrides are registered per domain and only consulted by IsRecipePage.
type Override interface {
	Name() string
	Accept(rawURL, html string) bool
}

type siteOverride struct {
	domain   string
	override Override
}

// ContentClassifier scores HTML pages for recipe signals.
// It never performs I/O and is safe for concurrent use.
type ContentClassifier struct {
	th        config.Thresholds
	overrides []siteOverride
}

// ContentOption configures a ContentClassifier.
type ContentOption func(*ContentClassifier)

// WithContentThresholds replaces the weights and the recipe threshold.
func WithContentThresholds(th config.Thresholds) ContentOption {
	return func(c *ContentClassifier) {
		c.th = th
	}
}

// WithSiteOverride registers an override for URLs whose host contains domain.
func WithSiteOverride(domain string, o Override) ContentOption {
	return func(c *ContentClassifier) {
		c.overrides = append(c.overrides, siteOverride{domain: strings.ToLower(domain), override: o})
	}
}

// NewContentClassifier creates a content classifier with the default thresholds.
func NewContentClassifier(opts ...ContentOption) *ContentClassifier {
	c := &ContentClassifier{th: config.DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze scores htmlContent. rawURL is optional context and does not affect the score.
//
// Each sub-score is capped at 100 and computed independently; a sub-score
// whose computation fails on malformed markup is 0. Analyze is idempotent.
func (c *ContentClassifier) Analyze(htmlContent, rawURL string) model.ContentClassification {
	result := model.ContentClassification{
		SubScores: map[string]int{
			SignalStructuredData: 0,
			SignalHeading:        0,
			SignalIngredient:     0,
			SignalInstruction:    0,
			SignalMetadata:       0,
		},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return result
	}

	signals := []struct {
		name   string
		weight float64
		score  func(*goquery.Document) int
	}{
		{SignalStructuredData, c.th.StructuredWeight, structuredDataScore},
		{SignalHeading, c.th.HeadingWeight, headingScore},
		{SignalIngredient, c.th.IngredientWeight, ingredientScore},
		{SignalInstruction, c.th.InstructionWeight, instructionScore},
		{SignalMetadata, c.th.MetadataWeight, metadataScore},
	}

	confidence := 0.0
	for _, s := range signals {
		score := safeScore(doc, s.score)
		result.SubScores[s.name] = score
		if score > 0 {
			result.Features = append(result.Features, fmt.Sprintf("%s_score:%d", s.name, score))
		}
		confidence += float64(score) * s.weight
	}

	result.Confidence = clamp(confidence, 0, 100)
	result.IsRecipe = result.Confidence >= c.th.ContentRecipeMin
	return result
}

// IsRecipePage decides whether the page is a recipe.
// A registered site override that accepts the page wins; otherwise the
// weighted analysis decides. The analysis is returned either way.
func (c *ContentClassifier) IsRecipePage(htmlContent, rawURL string) (bool, model.ContentClassification) {
	analysis := c.Analyze(htmlContent, rawURL)
	if o := c.overrideFor(rawURL); o != nil && o.Accept(rawURL, htmlContent) {
		return true, analysis
	}
	return analysis.IsRecipe, analysis
}

// HasOverride reports whether rawURL belongs to a site with a registered override.
func (c *ContentClassifier) HasOverride(rawURL string) bool {
	return c.overrideFor(rawURL) != nil
}

func (c *ContentClassifier) overrideFor(rawURL string) Override {
	if rawURL == "" || len(c.overrides) == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	for _, so := range c.overrides {
		if strings.Contains(host, so.domain) {
			return so.override
		}
	}
	return nil
}

func safeScore(doc *goquery.Document, f func(*goquery.Document) int) (score int) {
	defer func() {
		if recover() != nil {
			score = 0
		}
	}()
	return min(100, max(0, f(doc)))
}

func structuredDataScore(doc *goquery.Document) int {
	score := 0

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		matches := 0
		for _, term := range schemaTerms {
			if strings.Contains(text, term) {
				matches++
			}
		}
		if matches > 0 {
			score += min(100, matches*25)
		}
	})

	props := 0
	doc.Find("[itemprop], [property]").Each(func(_ int, s *goquery.Selection) {
		prop, ok := s.Attr("itemprop")
		if !ok || prop == "" {
			prop, _ = s.Attr("property")
		}
		if prop != "" && containsAny(prop, propertyTerms) {
			props++
		}
	})
	if props > 0 {
		score += min(100, props*15)
	}

	return min(100, score)
}

func headingScore(doc *goquery.Document) int {
	count := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if containsAny(strings.ToLower(s.Text()), headingTerms) {
			count++
		}
	})
	if count >= 3 {
		return 100
	}
	return count * 30
}

func ingredientScore(doc *goquery.Document) int {
	count := 0

	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		items := list.Find("li")
		total := items.Length()
		if total == 0 {
			return
		}
		like := 0
		items.Each(func(_ int, item *goquery.Selection) {
			if ingredientMarker.MatchString(strings.ToLower(item.Text())) {
				like++
			}
		})
		if like*2 >= total {
			count++
		}
	})

	count += containersMatching(doc, []string{"ingredient"})
	return min(100, count*50)
}

func instructionScore(doc *goquery.Document) int {
	count := doc.Find("ol").Length() + containersMatching(doc, instructionTerms)
	return min(100, count*50)
}

// metadataScore counts the metadata terms found inside a single text node.
// A term split across elements, such as "cook" and "time" in sibling spans,
// does not count.
func metadataScore(doc *goquery.Document) int {
	nodes := visibleTextNodes(doc)
	count := 0
	for _, term := range metadataTerms {
		for _, text := range nodes {
			if strings.Contains(text, term) {
				count++
				break
			}
		}
	}
	return min(100, count*20)
}

// containersMatching counts div and section elements whose class or id
// contains one of terms. Each element counts once.
func containersMatching(doc *goquery.Document, terms []string) int {
	count := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if containsAny(strings.ToLower(class), terms) || containsAny(strings.ToLower(id), terms) {
			count++
		}
	})
	return count
}

// visibleTextNodes returns the lower-cased text nodes outside script, style,
// noscript and template elements.
func visibleTextNodes(doc *goquery.Document) []string {
	var nodes []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				nodes = append(nodes, strings.ToLower(text))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return nodes
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}

// recipeTypePattern finds a Recipe-typed schema.org block.
var recipeTypePattern = regexp.MustCompile(`"@type"\s*:\s*"Recipe"`)

// dayDatePattern is the /YYYY/MM/DD/slug shape used by date-archived blogs.
var dayDatePattern = regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/[a-z0-9-]+/?`)

// DateOrSchemaOverride accepts pages on date-archived blogs whose URL has a
// /YYYY/MM/DD/slug path or whose markup carries a Recipe-typed ld+json block.
type DateOrSchemaOverride struct{}

// Name implements Override.
func (DateOrSchemaOverride) Name() string { return "date_url_or_recipe_schema" }

// Accept implements Override.
func (DateOrSchemaOverride) Accept(rawURL, htmlContent string) bool {
	if dayDatePattern.MatchString(pathOf(rawURL)) {
		return true
	}
	return strings.Contains(htmlContent, "application/ld+json") && recipeTypePattern.MatchString(htmlContent)
}

// IsDayDatePath reports whether rawURL has a /YYYY/MM/DD/slug path.
func IsDayDatePath(rawURL string) bool {
	return dayDatePattern.MatchString(pathOf(rawURL))
}
