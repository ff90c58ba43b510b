package skills

import (
	"strings"
	"unicode"
)

// Stop words never considered for fuzzy matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "i": true, "my": true, "using": true,
	"experience": true, "skills": true, "knowledge": true,
}

// tokenize lowercases text and splits it into tokens made of letters,
// digits, '+' and '#', so that "C++" and "C#" survive intact.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
