package transform

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGrouper(t *testing.T) *Grouper {
	t.Helper()
	return NewGrouper(NewExtractor(DefaultRules(), DefaultVocabulary()), testLogger())
}

func TestGrouperByEventID(t *testing.T) {
	g := testGrouper(t)

	records := []domain.RawMarket{
		{
			ID:       "m1",
			Question: "Will Arsenal win the Champions League?",
			Events:   []domain.EventRef{{ID: "E1", Title: "Champions League Winner"}},
		},
		{
			ID:       "m2",
			Question: "Will Inter Milan win the Champions League?",
			Events:   []domain.EventRef{{ID: "E1", Title: "Champions League Winner"}},
		},
		{
			ID:       "m3",
			Question: "Will Bitcoin reach $200k in 2026?",
		},
	}

	groups := g.Group(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	first := groups[0]
	if !first.ByEvent || first.Key != "E1" {
		t.Errorf("first group key = %q byEvent = %v, want E1 / true", first.Key, first.ByEvent)
	}
	if len(first.Members) != 2 {
		t.Fatalf("event group has %d members, want 2", len(first.Members))
	}
	if first.Members[0].Entity != "Arsenal" || first.Members[1].Entity != "Inter Milan" {
		t.Errorf("entities = %q, %q", first.Members[0].Entity, first.Members[1].Entity)
	}

	second := groups[1]
	if second.ByEvent || len(second.Members) != 1 {
		t.Errorf("standalone group byEvent = %v members = %d", second.ByEvent, len(second.Members))
	}
}

func TestGrouperByBaseQuestion(t *testing.T) {
	g := testGrouper(t)

	// No event metadata: grouping falls back to the entity-normalized base
	// question, so questions differing only in the team collapse together.
	records := []domain.RawMarket{
		{ID: "m1", Question: "Will Arsenal win the Champions League?"},
		{ID: "m2", Question: "Will Barcelona win the Champions League?"},
		{ID: "m3", Question: "Will Real Madrid win La Liga?"},
	}

	groups := g.Group(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Errorf("champions league group has %d members, want 2", len(groups[0].Members))
	}
	if groups[0].ByEvent {
		t.Error("question-keyed group must not be marked ByEvent")
	}
}

func TestGrouperSkipsMalformedRecords(t *testing.T) {
	g := testGrouper(t)

	records := []domain.RawMarket{
		{ID: "", Question: "Will Arsenal win the Champions League?"},
		{ID: "m2", Question: ""},
		{ID: "m3", Question: "Will Bitcoin reach $200k in 2026?"},
	}

	groups := g.Group(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Members[0].Record.ID != "m3" {
		t.Errorf("surviving record = %q, want m3", groups[0].Members[0].Record.ID)
	}
}

func TestBaseQuestion(t *testing.T) {
	tests := []struct {
		question string
		entity   string
		want     string
	}{
		{
			question: "Will Arsenal win the Champions League?",
			entity:   "Arsenal",
			want:     "will entity win the champions league?",
		},
		{
			question: "Will  Inter   Milan win the Champions League?",
			entity:   "Inter   Milan",
			want:     "will entity win the champions league?",
		},
		{
			question: "No entity here",
			entity:   "",
			want:     "no entity here",
		},
	}

	for _, tt := range tests {
		if got := BaseQuestion(tt.question, tt.entity); got != tt.want {
			t.Errorf("BaseQuestion(%q, %q) = %q, want %q", tt.question, tt.entity, got, tt.want)
		}
	}
}
