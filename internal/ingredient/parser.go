package ingredient

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/recipescout/internal/model"
)

// quantityPattern matches whole numbers, fractions, mixed numbers and decimals.
const quantityPattern = `\d+(?:/\d+|\s+\d+/\d+|\.\d+)?`

var leadingSeparators = regexp.MustCompile(`^[,\s]+`)

// Parser extracts quantity and unit from ingredient lines.
// It is safe for concurrent use.
type Parser struct {
	quantityFirst *regexp.Regexp
	unitFirst     *regexp.Regexp
	canonical     map[string]string
}

// NewParser creates a parser with the built-in unit table.
func NewParser() *Parser {
	alternatives := make([]string, len(unitVariants))
	canonical := make(map[string]string, len(unitVariants))
	fold := cases.Fold()
	for i, u := range unitVariants {
		alternatives[i] = regexp.QuoteMeta(u.variant)
		canonical[fold.String(u.variant)] = u.canonical
	}
	units := strings.Join(alternatives, "|")

	return &Parser{
		quantityFirst: regexp.MustCompile(`(?i)^\s*(` + quantityPattern + `)\s*(` + units + `)?\b`),
		unitFirst:     regexp.MustCompile(`(?i)^\s*(` + units + `)\s+(` + quantityPattern + `)\b`),
		canonical:     canonical,
	}
}

// Parse splits text into name, quantity and unit. Quantity-first lines
// ("2 cups flour") are tried before unit-first ones ("cup 2 flour"). Lines
// without a leading quantity keep the normalized text as the name.
func (p *Parser) Parse(text string) model.Ingredient {
	normalized := normalizeText(text)

	if m := p.quantityFirst.FindStringSubmatchIndex(normalized); m != nil {
		return p.build(normalized, m, 2, 4)
	}
	if m := p.unitFirst.FindStringSubmatchIndex(normalized); m != nil {
		return p.build(normalized, m, 4, 2)
	}
	return model.Ingredient{Name: normalized}
}

// build assembles the result from submatch indexes; qty and unit are the
// offsets of the quantity and unit groups in m.
func (p *Parser) build(text string, m []int, qty, unit int) model.Ingredient {
	ing := model.Ingredient{
		Name: leadingSeparators.ReplaceAllString(strings.TrimSpace(text[m[1]:]), ""),
	}
	if m[qty] >= 0 {
		q := strings.TrimSpace(text[m[qty]:m[qty+1]])
		ing.Measurement = &q
	}
	if m[unit] >= 0 {
		u := p.canonicalUnit(strings.TrimSpace(text[m[unit]:m[unit+1]]))
		ing.UnitType = &u
	}
	return ing
}

// canonicalUnit maps a unit spelling to its canonical name.
// Unknown spellings are returned unchanged.
func (p *Parser) canonicalUnit(raw string) string {
	// Casers keep state, so each call gets its own.
	if c, ok := p.canonical[cases.Fold().String(raw)]; ok {
		return c
	}
	return raw
}

// ParseAll parses every line in order.
func (p *Parser) ParseAll(lines []string) []model.Ingredient {
	out := make([]model.Ingredient, 0, len(lines))
	for _, line := range lines {
		out = append(out, p.Parse(line))
	}
	return out
}
