package transform

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// entityPlaceholder replaces the extracted entity when building a grouping
// key, so "Will Arsenal win X?" and "Will Barcelona win X?" collapse to the
// same base question.
const entityPlaceholder = "entity"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Member is one market inside a group, together with the entity extracted
// from its question (if any).
type Member struct {
	Record    domain.RawMarket
	Entity    string
	HasEntity bool
}

// Group is a set of markets believed to represent the same underlying event.
// Members preserve the order records appeared in the input batch.
type Group struct {
	// Key is the grouping key: the event id when the source supplied one,
	// otherwise the entity-normalized base question, otherwise the verbatim
	// question.
	Key string
	// ByEvent is true when Key is an explicit source event id.
	ByEvent bool
	Members []Member
}

// Grouper partitions a batch of raw markets into groups representing the same
// underlying event. Grouping is a pure function of record content and does no
// I/O.
type Grouper struct {
	extractor *Extractor
	logger    *slog.Logger
}

// NewGrouper creates a Grouper using the given extractor.
func NewGrouper(extractor *Extractor, logger *slog.Logger) *Grouper {
	return &Grouper{
		extractor: extractor,
		logger:    logger.With(slog.String("component", "grouper")),
	}
}

// Group partitions records into insertion-ordered groups. Records missing an
// id or question are skipped with an error log; they never abort the batch.
func (g *Grouper) Group(records []domain.RawMarket) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, rec := range records {
		if rec.ID == "" || rec.Question == "" {
			g.logger.Error("skipping malformed market record",
				slog.String("id", rec.ID),
				slog.String("question", rec.Question),
			)
			continue
		}

		entity, hasEntity := g.extractor.Extract(rec.Question)

		key := rec.Question
		byEvent := false
		if ev, ok := rec.EventRef(); ok && ev.ID != "" {
			key = ev.ID
			byEvent = true
		} else if hasEntity {
			key = BaseQuestion(rec.Question, entity)
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, ByEvent: byEvent})
		}
		groups[i].Members = append(groups[i].Members, Member{
			Record:    rec,
			Entity:    entity,
			HasEntity: hasEntity,
		})
	}

	return groups
}

// BaseQuestion substitutes the entity in the question with a fixed
// placeholder and normalizes case and whitespace, producing a key that is
// identical for questions differing only in the named entity.
func BaseQuestion(question, entity string) string {
	base := question
	if entity != "" {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(entity))
		if err == nil {
			base = re.ReplaceAllString(question, entityPlaceholder)
		}
	}
	base = strings.ToLower(strings.TrimSpace(base))
	return whitespaceRe.ReplaceAllString(base, " ")
}
