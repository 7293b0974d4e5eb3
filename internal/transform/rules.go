package transform

import "regexp"

// DefaultRules returns the built-in entity-extraction table. Competition and
// office-specific patterns come first; the generic "Will X ..." patterns are
// deliberately last so a specific rule always beats a loose one. The slice is
// freshly allocated on every call so callers may append or reorder safely.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "epl_top_goalscorer",
			Pattern: regexp.MustCompile(`(?i)^will\s+([A-Za-z\s\-'.]+?)\s+be\s+the\s+top\s+(?:goalscorer|scorer)\s+in\s+the\s+(?:EPL|English\s+Premier\s+League)\s*\?`),
		},
		{
			Name:    "champions_league_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+the\s+(?:UEFA\s+)?Champions\s+League\s*\?`),
		},
		{
			Name:    "la_liga_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+(?:the\s+)?La\s+Liga\s*\?`),
		},
		{
			Name:    "premier_league_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+the\s+Premier\s+League\s*\?`),
		},
		{
			Name:    "serie_a_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+Serie\s+A\s*\?`),
		},
		{
			Name:    "bundesliga_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+(?:the\s+)?Bundesliga\s*\?`),
		},
		{
			Name:    "ligue_1_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+Ligue\s+1\s*\?`),
		},
		{
			Name:    "stanley_cup_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(the\s+.+?|.+?)\s+win\s+the\s+(?:\d{4}\s+)?Stanley\s+Cup\s*\?`),
		},
		{
			Name:    "president",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+be\s+(?:elected|the\s+next)\s+president\b`),
		},
		{
			Name:    "oscar_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+the\s+Oscar\s+for\s+(?:Best\s+Picture|Best\s+Director|Best\s+Actor|Best\s+Actress)`),
		},
		{
			Name:    "largest_market_cap",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+be\s+the\s+largest\s+company\s+in\s+the\s+world\s+by\s+market\s+cap`),
		},
		{
			Name:    "election_winner",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\s+the\s+.+?\s+election\s*\?`),
		},

		// Generic fallbacks, lowest priority.
		{
			Name:    "will_be_or_win",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)\s+(?:be|win)\s+`),
		},
		{
			Name:    "proper_noun",
			Pattern: regexp.MustCompile(`^Will\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		},
		{
			Name:    "will_until_preposition",
			Pattern: regexp.MustCompile(`(?i)^will\s+(.+?)(?:\s+in\s+|\s+by\s+|\s+at\s+|\s+on\s+|\?|$)`),
		},
	}
}

// DefaultVocabulary returns the built-in entity vocabulary. Deployments
// normally extend or replace this through the [extractor] config section; the
// built-in set covers the competitions the pipeline was first written for.
func DefaultVocabulary() []Vocabulary {
	return []Vocabulary{
		{
			Domain: "Champions League",
			Entities: []string{
				"Arsenal", "Inter Milan", "Paris Saint-Germain",
				"Barcelona", "Bayern Munich",
			},
		},
		{
			Domain: "Stanley Cup",
			Entities: []string{
				"Carolina Hurricanes", "Edmonton Oilers", "Washington Capitals",
				"Dallas Stars", "Florida Panthers", "Toronto Maple Leafs",
				"Vegas Golden Knights", "Winnipeg Jets",
			},
		},
		{
			Domain: "La Liga",
			Entities: []string{
				"Real Madrid", "Barcelona", "Atletico Madrid", "Athletic Bilbao",
			},
		},
	}
}
