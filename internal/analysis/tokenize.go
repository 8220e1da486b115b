package analysis

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "me": {}, "my": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "using": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "why": {}, "with": {}, "you": {}, "your": {},
}

// tokenize splits a keyword into lowercase letter/digit tokens. '#' and '+'
// stay attached so "c#" and "c++" survive.
func tokenize(keyword string) []string {
	fields := strings.FieldsFunc(strings.ToLower(keyword), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '#' || r == '+')
	})
	return fields
}

func contentTokens(keyword string) []string {
	tokens := tokenize(keyword)
	out := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
