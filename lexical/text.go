package lexical

import (
	"strings"
	"unicode"
)

// Function words carry no signal about a project or a profile.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "we": true, "our": true, "will": true,
	"i": true, "my": true, "me": true, "us": true, "your": true,
}

// analyze turns text into index terms: lowercase runs of letters, digits,
// '+' and '#' ("c++" and "c#" survive), minus stop words. Order and
// repeats are kept for term frequency.
func analyze(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	terms := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			terms = append(terms, w)
		}
	}
	return terms
}
