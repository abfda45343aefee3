// Package grocery turns a week's planned recipes into a deduplicated,
// categorized, sorted shopping list. Every function here is pure: degraded
// input (missing ingredients, unresolved recipe ids, empty lines) degrades to
// an empty contribution, never an error.
package grocery

import (
	"regexp"
	"strings"
	"unicode"
)

// NormalizedIngredient is a single parsed ingredient line. Quantity is the
// leading amount+unit span kept verbatim as display text; Name is what
// remains after quantity and preparation words are stripped.
type NormalizedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// quantityPattern matches the leading quantity token of a lowercased line:
// an optional run of digits/fraction/decimal/hyphen characters, optional
// whitespace, then an optional unit word with an optional plural s.
var quantityPattern = regexp.MustCompile(
	`^[\d/.\-]*\s*(?:(?:cup|tbsp|tsp|oz|ounce|lb|pound|g|gram|kg|ml|liter|can|clove|piece|slice|bunch|head|stalk|sprig|pinch|dash|to taste)s?\b)?`)

// prepWordPattern removes whole-word preparation modifiers. Multi-word
// entries come first so they are consumed before their component words.
var prepWordPattern = regexp.MustCompile(
	`\b(?:room temperature|to taste|for garnish|diced|chopped|minced|sliced|crushed|grated|shredded|melted|softened|cold|warm|hot|fresh|dried|frozen|canned|cooked|raw|peeled|seeded|trimmed|boneless|skinless|large|medium|small|optional|finely|roughly|thinly|thickly|divided)\b`)

var punctPattern = regexp.MustCompile(`[,()]`)
var spacePattern = regexp.MustCompile(`\s+`)

// Normalize parses one raw ingredient line into a quantity and a name.
// It is total over all inputs: if stripping would leave an empty name, the
// original untouched line is used as the name instead.
func Normalize(line string) NormalizedIngredient {
	working := strings.TrimSpace(strings.ToLower(line))

	quantity := ""
	if loc := quantityPattern.FindStringIndex(working); loc != nil {
		quantity = strings.TrimSpace(working[:loc[1]])
		working = working[loc[1]:]
	}

	working = prepWordPattern.ReplaceAllString(working, " ")
	working = punctPattern.ReplaceAllString(working, " ")
	working = strings.TrimSpace(spacePattern.ReplaceAllString(working, " "))

	name := capitalize(working)
	if name == "" {
		name = line
	}

	return NormalizedIngredient{Name: name, Quantity: quantity}
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
