// Package validation holds the answer comparison strategies shared by live
// answer checking and results grading.
package validation

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/textmatch"
)

// Kind tags the comparison strategy attached to a text-input question.
type Kind string

const (
	KindString              Kind = "string"
	KindNumeric             Kind = "numeric"
	KindNumericWithUnits    Kind = "numeric-with-units"
	KindNumericWithCurrency Kind = "numeric-with-currency"
	KindValidateLater       Kind = "validate-later"
)

// Kinds lists every recognized validation kind.
var Kinds = []Kind{KindString, KindNumeric, KindNumericWithUnits, KindNumericWithCurrency, KindValidateLater}

// IsValid reports whether k is a recognized kind.
func (k Kind) IsValid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

const (
	DefaultFuzzyThreshold   = 0.8
	DefaultPrecision        = 2
	DefaultNumericThreshold = 0.01
	DefaultCurrency         = "$"
)

// Verdict is the tri-state outcome of checking one answer.
type Verdict int

const (
	Incorrect Verdict = iota
	Correct
	// Deferred answers are neither correct nor incorrect and are left out of
	// automatic grading and of the answered count.
	Deferred
)

// Ptr converts the verdict into the optional isCorrect flag of a graded result.
func (v Verdict) Ptr() *bool {
	if v == Deferred {
		return nil
	}
	b := v == Correct
	return &b
}

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Deferred:
		return "deferred"
	default:
		return "incorrect"
	}
}

// Spec is the validation kind plus its options.
type Spec struct {
	Kind    Kind    `json:"kind" yaml:"kind"`
	Options Options `json:"options,omitempty" yaml:"options,omitempty"`
}

// Strategy compares a learner answer with the authoritative answer.
type Strategy func(userAnswer, correctAnswer string, opts Options) bool

var strategies = map[Kind]Strategy{
	KindString:              ValidateString,
	KindNumeric:             ValidateNumeric,
	KindNumericWithUnits:    ValidateNumericWithUnits,
	KindNumericWithCurrency: ValidateNumericWithCurrency,
}

// Check dispatches on spec.Kind. Unknown kinds fall back to string comparison.
func Check(spec Spec, userAnswer, correctAnswer string) Verdict {
	if spec.Kind == KindValidateLater {
		return Deferred
	}
	s, ok := strategies[spec.Kind]
	if !ok {
		s = ValidateString
	}
	if s(userAnswer, correctAnswer, spec.Options) {
		return Correct
	}
	return Incorrect
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	// leading numeric prefix, the way a lenient float parser reads "10.5kg"
	numberPrefixRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ValidateString compares trimmed strings, case-insensitively unless
// caseSensitive is set. With fuzzy enabled, punctuation is stripped and the
// edit-distance similarity must reach the threshold.
func ValidateString(userAnswer, correctAnswer string, opts Options) bool {
	user := strings.TrimSpace(userAnswer)
	correct := strings.TrimSpace(correctAnswer)
	if !opts.Bool("caseSensitive") {
		user = strings.ToLower(user)
		correct = strings.ToLower(correct)
	}

	threshold, fuzzy := fuzzyThreshold(opts)
	if !fuzzy {
		return user == correct
	}

	user = normalizeFuzzy(user)
	correct = normalizeFuzzy(correct)
	if user == correct {
		return true
	}
	return textmatch.Similarity(user, correct) >= threshold
}

func fuzzyThreshold(opts Options) (float64, bool) {
	raw, ok := opts["fuzzy"]
	if !ok || raw == nil {
		return 0, false
	}
	var t float64
	switch v := raw.(type) {
	case bool:
		if !v {
			return 0, false
		}
		return DefaultFuzzyThreshold, true
	case string:
		s := strings.TrimSpace(v)
		if s == "false" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return DefaultFuzzyThreshold, true
		}
		t = f
	default:
		t = opts.Float("fuzzy", DefaultFuzzyThreshold)
	}
	if math.IsNaN(t) {
		return DefaultFuzzyThreshold, true
	}
	return math.Max(0, math.Min(1, t)), true
}

func normalizeFuzzy(s string) string {
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ValidateNumeric rounds both values to precision decimal digits (half away
// from zero) and accepts when they differ by at most threshold.
func ValidateNumeric(userAnswer, correctAnswer string, opts Options) bool {
	user, ok := parseNumber(userAnswer)
	if !ok {
		return false
	}
	correct, ok := parseNumber(correctAnswer)
	if !ok {
		return false
	}
	precision := opts.Int("precision", DefaultPrecision)
	threshold := opts.Float("threshold", DefaultNumericThreshold)
	return math.Abs(round(user, precision)-round(correct, precision)) <= threshold
}

// ValidateNumericWithUnits strips a leading or trailing unit from both sides
// and compares the remaining numbers within threshold. Units are stripped,
// never converted: "5 kg" and "5000 g" are different answers.
func ValidateNumericWithUnits(userAnswer, correctAnswer string, opts Options) bool {
	units := opts.Strings("units")
	return compareStripped(stripUnits(userAnswer, units), stripUnits(correctAnswer, units), opts)
}

// ValidateNumericWithCurrency strips the currency symbol (default "$") and
// compares the remaining numbers within threshold.
func ValidateNumericWithCurrency(userAnswer, correctAnswer string, opts Options) bool {
	symbol := []string{opts.String("currency", DefaultCurrency)}
	return compareStripped(stripUnits(userAnswer, symbol), stripUnits(correctAnswer, symbol), opts)
}

func compareStripped(user, correct string, opts Options) bool {
	u, ok := parseNumber(strings.ReplaceAll(user, ",", "."))
	if !ok {
		return false
	}
	c, ok := parseNumber(strings.ReplaceAll(correct, ",", "."))
	if !ok {
		return false
	}
	return math.Abs(u-c) <= opts.Float("threshold", DefaultNumericThreshold)
}

// stripUnits removes one leading and one trailing occurrence of each unit,
// longest unit first so that "kg" is not half-eaten by "g".
func stripUnits(s string, units []string) string {
	ordered := make([]string, 0, len(units))
	for _, u := range units {
		if u = strings.TrimSpace(u); u != "" {
			ordered = append(ordered, u)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	out := strings.TrimSpace(s)
	for _, u := range ordered {
		q := regexp.QuoteMeta(u)
		out = regexp.MustCompile(`(?i)^\s*`+q+`\s*`).ReplaceAllString(out, "")
		out = regexp.MustCompile(`(?i)\s*`+q+`\s*$`).ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

func parseNumber(s string) (float64, bool) {
	m := numberPrefixRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
