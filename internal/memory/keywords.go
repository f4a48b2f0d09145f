// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"strings"
	"unicode"
)

// maxKeywords caps the number of tokens extracted from a single memory.
const maxKeywords = 10

// stopWords are common tokens that carry no recall value. Tokens of length
// three or less are dropped before this set is consulted, so it only needs
// the longer fillers.
var stopWords = map[string]struct{}{
	"this":    {},
	"that":    {},
	"with":    {},
	"from":    {},
	"have":    {},
	"been":    {},
	"were":    {},
	"will":    {},
	"when":    {},
	"what":    {},
	"then":    {},
	"than":    {},
	"they":    {},
	"them":    {},
	"their":   {},
	"there":   {},
	"where":   {},
	"which":   {},
	"while":   {},
	"would":   {},
	"could":   {},
	"should":  {},
	"about":   {},
	"after":   {},
	"before":  {},
	"because": {},
	"into":    {},
	"over":    {},
	"under":   {},
	"your":    {},
	"only":    {},
	"also":    {},
	"just":    {},
	"some":    {},
	"very":    {},
	"more":    {},
	"most":    {},
	"other":   {},
	"such":    {},
	"each":    {},
	"does":    {},
	"doing":   {},
	"being":   {},
}

// ExtractKeywords derives up to maxKeywords index tokens from memory content.
// The function is pure: the keyword index and the relevance ranker must both
// use it so that indexed tokens and scored tokens never diverge.
//
// Content is lower-cased and split on non-word characters; tokens of length
// three or less, stop words, and duplicates are dropped.
func ExtractKeywords(content string) []string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, maxKeywords)
	for _, token := range fields {
		if len(token) <= 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}
