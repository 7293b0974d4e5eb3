package transform

import (
	"regexp"
	"strings"
)

// Rule is one entry in the ordered entity-extraction table. Pattern must have
// at least one capture group; the first group is the extracted entity.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Vocabulary is a configured set of known entities for one domain. When no
// pattern rule matches a question, the extractor falls back to scanning the
// question for a known entity, but only if the question mentions the domain
// marker (e.g. "Champions League").
type Vocabulary struct {
	Domain   string
	Entities []string
}

// Extractor pulls the distinguishing entity (team, person, company) out of a
// market question. Rules are evaluated in priority order and the first match
// wins; the vocabulary fallback runs only when no rule matched. Extraction is
// pure and order-stable.
type Extractor struct {
	rules []Rule
	vocab []Vocabulary
}

// NewExtractor creates an Extractor with the given rule table and vocabulary.
// Pass DefaultRules() and a config-supplied vocabulary in production; tests
// may pass a reduced table to exercise individual rules.
func NewExtractor(rules []Rule, vocab []Vocabulary) *Extractor {
	return &Extractor{rules: rules, vocab: vocab}
}

// Extract returns the entity named in the question, or ok=false when neither
// a rule nor the vocabulary matches. A miss is not an error; the caller treats
// the record as standalone.
func (e *Extractor) Extract(question string) (string, bool) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", false
	}

	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(question)
		if m == nil || len(m) < 2 {
			continue
		}
		entity := trimArticle(strings.TrimSpace(m[1]))
		if entity != "" {
			return entity, true
		}
	}

	for _, v := range e.vocab {
		if !containsFold(question, v.Domain) {
			continue
		}
		for _, entity := range v.Entities {
			if containsFold(question, entity) {
				return entity, true
			}
		}
	}

	return "", false
}

// containsFold reports whether s contains substr, ignoring ASCII case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// trimArticle drops a leading definite article so "the Edmonton Oilers" and
// "Edmonton Oilers" extract to the same entity.
func trimArticle(s string) string {
	for _, prefix := range []string{"the ", "The ", "THE "} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}
