package domain

import "context"

// Market categories recognized by the pipeline. Anything the categorizer
// cannot place confidently falls back to CategoryNews with NeedsManual set.
const (
	CategoryPolitics = "politics"
	CategoryCrypto   = "crypto"
	CategorySports   = "sports"
	CategoryBusiness = "business"
	CategoryCulture  = "culture"
	CategoryTech     = "tech"
	CategoryNews     = "news"
)

// ValidCategories is the closed set of category labels accepted from any
// categorizer implementation.
var ValidCategories = map[string]bool{
	CategoryPolitics: true,
	CategoryCrypto:   true,
	CategorySports:   true,
	CategoryBusiness: true,
	CategoryCulture:  true,
	CategoryTech:     true,
	CategoryNews:     true,
}

// CategoryResult is the outcome of categorizing one market.
type CategoryResult struct {
	Category    string
	NeedsManual bool
}

// Categorizer assigns a category label to a market given its question and
// description.
type Categorizer interface {
	Categorize(ctx context.Context, question, description string) (CategoryResult, error)
}
