// Package categorize assigns category labels to markets. Two providers are
// available: a keyword matcher that needs no credentials and an OpenAI-backed
// classifier. Both satisfy domain.Categorizer.
package categorize

import (
	"context"
	"strings"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

var _ domain.Categorizer = (*Keyword)(nil)

// Keyword categorizes by scanning the question and description for known
// terms. First category with a hit wins; the scan order puts the more
// distinctive vocabularies first.
type Keyword struct{}

// NewKeyword creates a keyword categorizer.
func NewKeyword() *Keyword {
	return &Keyword{}
}

var keywordTable = []struct {
	category string
	terms    []string
}{
	{domain.CategoryCrypto, []string{
		"bitcoin", "btc", "ethereum", "eth", "solana", "crypto", "blockchain",
		"stablecoin", "token", "defi",
	}},
	{domain.CategorySports, []string{
		"league", "cup", "championship", "nba", "nfl", "nhl", "mlb", "uefa",
		"premier league", "la liga", "serie a", "bundesliga", "goalscorer",
		"super bowl", "world series", "stanley cup", "olympics", "grand slam",
	}},
	{domain.CategoryPolitics, []string{
		"president", "election", "senate", "congress", "parliament", "governor",
		"prime minister", "impeach", "ballot", "vote", "nominee",
	}},
	{domain.CategoryBusiness, []string{
		"market cap", "stock", "ipo", "earnings", "acquisition", "merger",
		"ceo", "revenue", "nasdaq", "s&p",
	}},
	{domain.CategoryTech, []string{
		"ai ", "artificial intelligence", "openai", "iphone", "spacex",
		"launch", "software", "chip", "semiconductor", "app store",
	}},
	{domain.CategoryCulture, []string{
		"oscar", "grammy", "emmy", "box office", "album", "movie", "celebrity",
		"tv series", "billboard",
	}},
}

// Categorize never returns an error; unmatched markets land in news with the
// manual-review flag set.
func (k *Keyword) Categorize(_ context.Context, question, description string) (domain.CategoryResult, error) {
	haystack := strings.ToLower(question + " " + description)
	for _, entry := range keywordTable {
		for _, term := range entry.terms {
			if strings.Contains(haystack, term) {
				return domain.CategoryResult{Category: entry.category}, nil
			}
		}
	}
	return domain.CategoryResult{Category: domain.CategoryNews, NeedsManual: true}, nil
}
