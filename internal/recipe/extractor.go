package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/nao1215/recipescout/internal/ingredient"
	"github.com/nao1215/recipescout/internal/model"
)

// ErrNoRecipe is returned when a page carries no recipe with a title.
var ErrNoRecipe = errors.New("no recipe found")

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Extractor builds recipes from recipe pages. It is safe for concurrent use.
type Extractor struct {
	parser   *ingredient.Parser
	mainText func(htmlContent string) string
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithParser sets the ingredient parser.
func WithParser(p *ingredient.Parser) Option {
	return func(e *Extractor) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithMainText replaces the main-text fallback used for instructions.
func WithMainText(fn func(htmlContent string) string) Option {
	return func(e *Extractor) {
		e.mainText = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		parser:   ingredient.NewParser(),
		mainText: trafilaturaText,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractPage extracts the recipe of a fetched page. The stored URL is the
// requested one, so redirects do not create duplicates. A recipe without an
// image takes the page's og:image.
func (e *Extractor) ExtractPage(page *model.Page) (*model.Recipe, error) {
	if page == nil {
		return nil, ErrNoRecipe
	}
	r, err := e.Extract(page.HTML(), page.URL)
	if err != nil {
		return nil, err
	}
	if r.Image == "" {
		r.Image = page.Meta["og:image"]
	}
	return r, nil
}

// Extract builds a recipe from htmlContent fetched from pageURL.
func (e *Extractor) Extract(htmlContent, pageURL string) (*model.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	raw := fromLDJSON(doc)
	source := "ld+json"
	if raw == nil {
		raw = fromMicrodata(doc)
		source = "microdata"
	}
	if raw == nil || raw.title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoRecipe, pageURL)
	}

	if raw.instructions == "" && e.mainText != nil {
		raw.instructions = e.mainText(htmlContent)
		if raw.instructions != "" {
			e.logger.Debug("instructions taken from main text", "url", pageURL)
		}
	}

	r := &model.Recipe{
		URL:          pageURL,
		Title:        raw.title,
		TotalTime:    raw.totalTime,
		Yields:       raw.yields,
		Ingredients:  e.parser.ParseAll(raw.ingredients),
		Instructions: raw.instructions,
		Image:        raw.image,
		Host:         model.HostFromURL(pageURL),
		Nutrients:    raw.nutrients,
		Notes:        map[string]any{"source": source},
	}
	if r.Nutrients == nil {
		r.Nutrients = map[string]any{}
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		r.Notes["language"] = strings.ToLower(lang)
	}
	return r, nil
}

// rawRecipe holds the cleaned fields before ingredient parsing.
type rawRecipe struct {
	title        string
	ingredients  []string
	instructions string
	yields       string
	totalTime    *int
	image        string
	nutrients    map[string]any
}

// fromLDJSON returns the first schema.org Recipe found in ld+json blocks.
// Blocks that fail to decode are skipped.
func fromLDJSON(doc *goquery.Document) *rawRecipe {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return true
		}
		found = findRecipeNode(v)
		return found == nil
	})
	if found == nil {
		return nil
	}

	r := &rawRecipe{
		title:        cleanText(stringValue(found["name"])),
		ingredients:  stringList(firstPresent(found, "recipeIngredient", "ingredients")),
		instructions: strings.Join(instructionSteps(found["recipeInstructions"]), "\n"),
		yields:       yieldsValue(found["recipeYield"]),
		image:        imageValue(found["image"]),
		nutrients:    nutrientsValue(found["nutrition"]),
	}
	r.totalTime = totalMinutes(
		stringValue(found["totalTime"]),
		stringValue(found["prepTime"]),
		stringValue(found["cookTime"]),
	)
	return r
}

// findRecipeNode searches a decoded ld+json value for a Recipe node:
// the value itself, an element of an array, or a member of @graph.
func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	case []any:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

// instructionSteps flattens the recipeInstructions shapes in use: a single
// string, a list of strings, HowToStep objects and HowToSection objects.
func instructionSteps(v any) []string {
	var steps []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := cleanText(line); s != "" {
				steps = append(steps, s)
			}
		}
	case []any:
		for _, item := range t {
			steps = append(steps, instructionSteps(item)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructionSteps(items)
		}
		text := stringValue(t["text"])
		if text == "" {
			text = stringValue(t["name"])
		}
		if s := cleanText(text); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func yieldsValue(v any) string {
	switch t := v.(type) {
	case string:
		return yieldsText(t)
	case float64:
		return yieldsText(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		for _, item := range t {
			if s := yieldsValue(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// yieldsText turns a bare count into "N servings".
func yieldsText(s string) string {
	s = cleanText(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n == 1 {
			return "1 serving"
		}
		return strconv.Itoa(n) + " servings"
	}
	return s
}

func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return stringValue(t["url"])
	}
	return ""
}

func nutrientsValue(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		if strings.HasPrefix(k, "@") {
			continue
		}
		out[k] = val
	}
	return out
}

// totalMinutes prefers the total time and falls back to prep plus cook.
func totalMinutes(total, prep, cook string) *int {
	if n, ok := parseMinutes(total); ok && n > 0 {
		return &n
	}
	p, okPrep := parseMinutes(prep)
	c, okCook := parseMinutes(cook)
	if !okPrep && !okCook {
		return nil
	}
	sum := p + c
	if sum <= 0 {
		return nil
	}
	return &sum
}

// fromMicrodata reads an itemprop scope typed schema.org/Recipe.
func fromMicrodata(doc *goquery.Document) *rawRecipe {
	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil
	}

	prop := func(name string) *goquery.Selection {
		return scope.Find(`[itemprop="` + name + `"]`)
	}

	r := &rawRecipe{
		title:  cleanText(itempropValue(prop("name").First())),
		yields: yieldsText(itempropValue(prop("recipeYield").First())),
		image:  itempropValue(prop("image").First()),
	}

	ingredients := prop("recipeIngredient")
	if ingredients.Length() == 0 {
		ingredients = prop("ingredients")
	}
	ingredients.Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			r.ingredients = append(r.ingredients, text)
		}
	})

	var steps []string
	prop("recipeInstructions").Each(func(_ int, s *goquery.Selection) {
		items := s.Find("li")
		if items.Length() == 0 {
			if text := cleanText(s.Text()); text != "" {
				steps = append(steps, text)
			}
			return
		}
		items.Each(func(_ int, li *goquery.Selection) {
			if text := cleanText(li.Text()); text != "" {
				steps = append(steps, text)
			}
		})
	})
	r.instructions = strings.Join(steps, "\n")

	r.totalTime = totalMinutes(
		itempropValue(prop("totalTime").First()),
		itempropValue(prop("prepTime").First()),
		itempropValue(prop("cookTime").First()),
	)
	return r
}

// itempropValue reads the value of a microdata property the way browsers
// do: content, then datetime, src or href, then the text.
func itempropValue(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime", "src", "href"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(s.Text())
}

// trafilaturaText returns the main text of a page, or "" when none is found.
func trafilaturaText(htmlContent string) string {
	result, err := trafilatura.Extract(strings.NewReader(htmlContent), trafilatura.Options{})
	if err != nil || result == nil {
		return ""
	}
	return strings.TrimSpace(result.ContentText)
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		if len(t) > 0 {
			return stringValue(t[0])
		}
	}
	return ""
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := cleanText(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			if s := cleanText(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// cleanText strips markup, decodes entities and collapses whitespace.
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
