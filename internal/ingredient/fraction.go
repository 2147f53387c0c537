package ingredient

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// maxDenominator bounds the denominators produced for decimal quantities.
const maxDenominator = 1_000_000

// vulgarFractions maps Unicode vulgar fraction characters to their values.
var vulgarFractions = map[rune][2]int{
	'¼': {1, 4}, '½': {1, 2}, '¾': {3, 4},
	'⅐': {1, 7}, '⅑': {1, 9}, '⅒': {1, 10},
	'⅓': {1, 3}, '⅔': {2, 3},
	'⅕': {1, 5}, '⅖': {2, 5}, '⅗': {3, 5}, '⅘': {4, 5},
	'⅙': {1, 6}, '⅚': {5, 6},
	'⅛': {1, 8}, '⅜': {3, 8}, '⅝': {5, 8}, '⅞': {7, 8},
}

var (
	decimalPattern    = regexp.MustCompile(`\b\d+\.\d+\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// normalizeText replaces vulgar fractions with decimals, turns every decimal
// into a fraction string and collapses whitespace.
//
// A vulgar fraction glued to a digit ("1½") becomes "10.5" and then "21/2";
// write "1 ½" for one and a half.
func normalizeText(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if f, ok := vulgarFractions[r]; ok {
			sb.WriteString(strconv.FormatFloat(float64(f[0])/float64(f[1]), 'f', -1, 64))
			continue
		}
		sb.WriteRune(r)
	}

	out := decimalPattern.ReplaceAllStringFunc(sb.String(), decimalToFraction)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

// decimalToFraction renders a decimal string as the closest fraction whose
// denominator does not exceed maxDenominator ("1.5" -> "3/2", "2.0" -> "2").
func decimalToFraction(s string) string {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return s
	}
	r = limitDenominator(r, big.NewInt(maxDenominator))
	if r.IsInt() {
		return r.Num().String()
	}
	return r.Num().String() + "/" + r.Denom().String()
}

// limitDenominator finds the closest fraction to a non-negative r with a
// denominator of at most maxDen, using the continued fraction expansion.
func limitDenominator(r *big.Rat, maxDen *big.Int) *big.Rat {
	if r.Denom().Cmp(maxDen) <= 0 {
		return new(big.Rat).Set(r)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())

	for {
		a := new(big.Int).Quo(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(maxDen) > 0 {
			break
		}
		p2 := new(big.Int).Add(p0, new(big.Int).Mul(a, p1))
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}

	k := new(big.Int).Quo(new(big.Int).Sub(maxDen, q0), q1)
	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	diff1 := new(big.Rat).Abs(new(big.Rat).Sub(bound1, r))
	diff2 := new(big.Rat).Abs(new(big.Rat).Sub(bound2, r))
	if diff2.Cmp(diff1) <= 0 {
		return bound2
	}
	return bound1
}

// Quantity returns the numeric value of a measurement produced by the
// parser: "3", "1/2", "1 1/2" or "2.5". Parts are summed.
func Quantity(measurement string) (float64, bool) {
	fields := strings.Fields(measurement)
	if len(fields) == 0 {
		return 0, false
	}
	sum := new(big.Rat)
	for _, f := range fields {
		r, ok := new(big.Rat).SetString(f)
		if !ok || r.Sign() < 0 {
			return 0, false
		}
		sum.Add(sum, r)
	}
	v, _ := sum.Float64()
	return v, true
}
