package transform

import "testing"

func TestExtractorRules(t *testing.T) {
	ex := NewExtractor(DefaultRules(), DefaultVocabulary())

	tests := []struct {
		name     string
		question string
		want     string
		wantOK   bool
	}{
		{
			name:     "champions league winner",
			question: "Will Arsenal win the Champions League?",
			want:     "Arsenal",
			wantOK:   true,
		},
		{
			name:     "champions league multi-word team",
			question: "Will Inter Milan win the Champions League?",
			want:     "Inter Milan",
			wantOK:   true,
		},
		{
			name:     "uefa prefix accepted",
			question: "Will Bayern Munich win the UEFA Champions League?",
			want:     "Bayern Munich",
			wantOK:   true,
		},
		{
			name:     "stanley cup with article",
			question: "Will the Edmonton Oilers win the Stanley Cup?",
			want:     "Edmonton Oilers",
			wantOK:   true,
		},
		{
			name:     "stanley cup with year",
			question: "Will Florida Panthers win the 2026 Stanley Cup?",
			want:     "Florida Panthers",
			wantOK:   true,
		},
		{
			name:     "la liga",
			question: "Will Real Madrid win La Liga?",
			want:     "Real Madrid",
			wantOK:   true,
		},
		{
			name:     "president",
			question: "Will Gavin Newsom be elected president?",
			want:     "Gavin Newsom",
			wantOK:   true,
		},
		{
			name:     "election winner",
			question: "Will Labour win the next UK election?",
			want:     "Labour",
			wantOK:   true,
		},
		{
			name:     "largest market cap",
			question: "Will Nvidia be the largest company in the world by market cap on December 31?",
			want:     "Nvidia",
			wantOK:   true,
		},
		{
			name:     "generic proper noun fallback",
			question: "Will Bitcoin reach $200k in 2026?",
			want:     "Bitcoin",
			wantOK:   true,
		},
		{
			name:     "vocabulary fallback with domain marker",
			question: "Champions League: Barcelona to lift the trophy",
			want:     "Barcelona",
			wantOK:   true,
		},
		{
			name:     "no match",
			question: "Who scores first?",
			wantOK:   false,
		},
		{
			name:     "empty question",
			question: "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ex.Extract(tt.question)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.question, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestExtractorRulePriority(t *testing.T) {
	ex := NewExtractor(DefaultRules(), nil)

	// The specific competition rule must win over the generic "will X win"
	// fallback, which would capture a shorter span for some questions.
	got, ok := ex.Extract("Will Paris Saint-Germain win the Champions League?")
	if !ok || got != "Paris Saint-Germain" {
		t.Fatalf("Extract = %q, %v; want %q, true", got, ok, "Paris Saint-Germain")
	}
}

func TestExtractorVocabularyRequiresDomain(t *testing.T) {
	ex := NewExtractor(nil, DefaultVocabulary())

	// Entity name alone is not enough; the question must mention the
	// vocabulary's domain marker.
	if got, ok := ex.Extract("Barcelona announces new stadium plans"); ok {
		t.Fatalf("Extract matched %q, want no match without domain marker", got)
	}
}
