package types

import (
	"strings"
	"unicode"
)

// Category is one of the six fixed interview question types
type Category string

const (
	CategoryAptitude        Category = "aptitude"
	CategoryCodeCompletion  Category = "code-completion"
	CategoryCodingChallenge Category = "coding-challenge"
	CategoryTechSpecific    Category = "tech-specific"
	CategoryTheory          Category = "theory"
	CategoryHRBehavioral    Category = "hr-behavioral"
)

// Categories lists every category in canonical order
var Categories = []Category{
	CategoryAptitude,
	CategoryCodeCompletion,
	CategoryCodingChallenge,
	CategoryTechSpecific,
	CategoryTheory,
	CategoryHRBehavioral,
}

var categoryLabels = map[Category]struct {
	title     string
	modelType string
}{
	CategoryAptitude:        {"Aptitude", "Aptitude"},
	CategoryCodeCompletion:  {"Code Completion", "CodeCompletion"},
	CategoryCodingChallenge: {"Coding Challenge", "TrickyCoding"},
	CategoryTechSpecific:    {"Tech-Specific Coding", "TechCodeCompletion"},
	CategoryTheory:          {"Technical Theory", "Technical"},
	CategoryHRBehavioral:    {"HR & Behavioral", "HR"},
}

// aliases are keyed by the normalized form (lowercase letters and digits only)
var categoryAliases = map[string]Category{
	"aptitude":           CategoryAptitude,
	"codecompletion":     CategoryCodeCompletion,
	"codingchallenge":    CategoryCodingChallenge,
	"trickycoding":       CategoryCodingChallenge,
	"algorithm":          CategoryCodingChallenge,
	"techspecific":       CategoryTechSpecific,
	"techcodecompletion": CategoryTechSpecific,
	"techspecificcoding": CategoryTechSpecific,
	"theory":             CategoryTheory,
	"technical":          CategoryTheory,
	"technicaltheory":    CategoryTheory,
	"hrbehavioral":       CategoryHRBehavioral,
	"hr":                 CategoryHRBehavioral,
	"behavioral":         CategoryHRBehavioral,
}

// Title returns the human readable label
func (c Category) Title() string {
	if l, ok := categoryLabels[c]; ok {
		return l.title
	}
	return string(c)
}

// ModelType returns the label the model is asked to emit in the "type" field
func (c Category) ModelType() string {
	if l, ok := categoryLabels[c]; ok {
		return l.modelType
	}
	return string(c)
}

// Index returns the canonical position of c, or -1 when c is unknown
func (c Category) Index() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the six categories
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// ParseCategory maps a canonical value, display title or model type label to a Category
func ParseCategory(s string) (Category, bool) {
	key := normalizeLabel(s)
	if key == "" {
		return "", false
	}
	c, ok := categoryAliases[key]
	return c, ok
}

func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
