// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

// stopwords are low-information English words dropped by Simple.
// Read-only after init.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "from": {}, "by": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "should": {}, "could": {}, "may": {}, "might": {}, "can": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "it": {}, "its": {}, "new": {}, "page": {}, "please": {}, "just": {}, "into": {},
	"than": {}, "them": {}, "then": {}, "now": {}, "only": {}, "some": {}, "all": {}, "my": {}, "your": {},
	"our": {}, "their": {},
}

// IsStopword reports whether word (already lowercased) is filtered by Simple.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
