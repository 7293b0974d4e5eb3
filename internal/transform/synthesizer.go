package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// groupIDPrefix namespaces synthesized multi-option market ids so they can
// never collide with source market ids.
const groupIDPrefix = "group_"

var titleRe = regexp.MustCompile(`(?i)^will\s+(.+?)\s+(be|win)\s+(.+?)\s*\?*$`)

// Synthesizer turns a group of binary markets into a single multi-option
// market, or passes the members through unchanged when the group does not
// qualify for merging.
type Synthesizer struct {
	logger *slog.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(logger *slog.Logger) *Synthesizer {
	return &Synthesizer{logger: logger.With(slog.String("component", "synthesizer"))}
}

// Synthesize converts one group into output markets. A group merges into a
// multi-option market only when it has at least two members and every member
// carries a uniform Yes/No outcome set. Otherwise each member passes through
// as a binary market. A member without an extracted entity contributes its
// verbatim question as the option label.
//
// Option images are left unresolved here; the resolver assigns them in a
// separate pass over the full batch.
func (s *Synthesizer) Synthesize(g Group) []domain.TransformedMarket {
	if !s.mergeable(g) {
		out := make([]domain.TransformedMarket, 0, len(g.Members))
		for _, m := range g.Members {
			out = append(out, domain.NewBinary(passThrough(m.Record)))
		}
		return out
	}

	multi := domain.MultiOptionMarket{
		ID:           GroupID(g),
		Title:        groupTitle(g),
		OptionImages: make(map[string]domain.OptionImage),
		Banner:       groupBanner(g),
		Icon:         groupIcon(g),
		Category:     groupCategory(g),
		EventID:      groupEventID(g),
	}

	seen := make(map[string]bool)
	for _, m := range g.Members {
		option := m.Entity
		if option == "" {
			option = m.Record.Question
		}
		if !seen[option] {
			seen[option] = true
			multi.Options = append(multi.Options, option)
			multi.OptionImages[option] = domain.OptionImage{}
		}
		multi.SourceIDs = append(multi.SourceIDs, m.Record.ID)
		if m.Record.EndDate.After(multi.EndDate) {
			multi.EndDate = m.Record.EndDate
		}
	}

	s.logger.Info("synthesized multi-option market",
		slog.String("id", multi.ID),
		slog.String("title", multi.Title),
		slog.Int("options", len(multi.Options)),
	)
	return []domain.TransformedMarket{domain.NewMultiOption(multi)}
}

// mergeable reports whether the group qualifies for merging. Any member with a
// missing outcome list or a non-Yes/No outcome set disqualifies the entire
// group; partial merges are never produced. Extraction failures do not block
// the merge, they only downgrade the option label.
func (s *Synthesizer) mergeable(g Group) bool {
	if len(g.Members) < 2 {
		return false
	}
	for _, m := range g.Members {
		if !m.HasEntity {
			s.logger.Debug("member has no extracted entity, question becomes the option",
				slog.String("key", g.Key),
				slog.String("market_id", m.Record.ID),
			)
		}
		if !yesNoOutcomes(m.Record.Outcomes) {
			s.logger.Debug("group not merged, member outcomes are not Yes/No",
				slog.String("key", g.Key),
				slog.String("market_id", m.Record.ID),
			)
			return false
		}
	}
	return true
}

// yesNoOutcomes reports whether outcomes is exactly the two-element Yes/No
// set, in either order. Comparison is case-sensitive.
func yesNoOutcomes(outcomes []string) bool {
	if len(outcomes) != 2 {
		return false
	}
	return (outcomes[0] == "Yes" && outcomes[1] == "No") ||
		(outcomes[0] == "No" && outcomes[1] == "Yes")
}

// GroupID derives the deterministic id for a synthesized market. Event-keyed
// groups reuse the event id; question-keyed groups hash the normalized key so
// the id is stable across runs and input orderings.
func GroupID(g Group) string {
	if g.ByEvent {
		return groupIDPrefix + g.Key
	}
	sum := sha256.Sum256([]byte(g.Key))
	return groupIDPrefix + hex.EncodeToString(sum[:])[:40]
}

// groupTitle prefers the source event title and falls back to deriving a title
// from the first member's question, e.g. "Will Arsenal win the Champions
// League?" becomes "Champions League Winner".
func groupTitle(g Group) string {
	for _, m := range g.Members {
		if ev, ok := m.Record.EventRef(); ok && ev.Title != "" {
			return ev.Title
		}
	}
	first := g.Members[0]
	return deriveTitle(first.Record.Question, first.Entity)
}

func deriveTitle(question, entity string) string {
	m := titleRe.FindStringSubmatch(question)
	if m == nil {
		return strings.TrimRight(strings.TrimSpace(question), "?")
	}
	subject := strings.TrimSpace(m[3])
	subject = strings.TrimPrefix(subject, "the ")
	subject = strings.TrimPrefix(subject, "The ")
	if strings.EqualFold(m[2], "win") {
		return capitalize(subject) + " Winner"
	}
	return capitalize(subject)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// groupBanner returns the first non-empty event image across members. The
// banner belongs to the event as a whole and is never assigned to an option.
func groupBanner(g Group) string {
	for _, m := range g.Members {
		if ev, ok := m.Record.EventRef(); ok && ev.Image != "" {
			return ev.Image
		}
	}
	return ""
}

func groupIcon(g Group) string {
	for _, m := range g.Members {
		if ev, ok := m.Record.EventRef(); ok && ev.Icon != "" {
			return ev.Icon
		}
	}
	for _, m := range g.Members {
		if m.Record.Icon != "" {
			return m.Record.Icon
		}
	}
	return ""
}

func groupCategory(g Group) string {
	for _, m := range g.Members {
		if ev, ok := m.Record.EventRef(); ok && ev.Category != "" {
			return ev.Category
		}
	}
	for _, m := range g.Members {
		if m.Record.Category != "" {
			return m.Record.Category
		}
	}
	return ""
}

func groupEventID(g Group) string {
	if g.ByEvent {
		return g.Key
	}
	return ""
}

// passThrough maps a raw market onto the binary output shape unchanged.
func passThrough(r domain.RawMarket) domain.BinaryMarket {
	b := domain.BinaryMarket{
		ID:          r.ID,
		Question:    r.Question,
		Description: r.Description,
		Image:       r.Image,
		Icon:        r.Icon,
		Outcomes:    r.Outcomes,
		Category:    r.Category,
		EndDate:     r.EndDate,
	}
	if ev, ok := r.EventRef(); ok {
		b.EventID = ev.ID
		b.EventTitle = ev.Title
	}
	return b
}
