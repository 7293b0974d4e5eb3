package transform

import (
	"testing"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

func championsBatch() []domain.RawMarket {
	ev := domain.EventRef{ID: "E1", Title: "Champions League Winner", Image: "https://img/banner.png"}
	return []domain.RawMarket{
		{
			ID: "m1", Question: "Will Arsenal win the Champions League?",
			Image: "https://img/arsenal.png", Outcomes: yesNo,
			Events: []domain.EventRef{ev},
		},
		{
			ID: "m2", Question: "Will Inter Milan win the Champions League?",
			Image: "https://img/inter.png", Outcomes: yesNo,
			Events: []domain.EventRef{ev},
		},
		{
			ID: "m3", Question: "Will Paris Saint-Germain win the Champions League?",
			Image: "https://img/psg.png", Outcomes: yesNo,
			Events: []domain.EventRef{ev},
		},
	}
}

func synthesizeChampions(t *testing.T) []domain.TransformedMarket {
	t.Helper()
	s := NewSynthesizer(testLogger())
	out := s.Synthesize(championsGroup())
	if len(out) != 1 || out[0].Kind != domain.KindMultiOption {
		t.Fatalf("unexpected synthesis output: %+v", out)
	}
	return out
}

func TestResolveAssignsDedicatedImages(t *testing.T) {
	r := NewResolver(testLogger())
	out := synthesizeChampions(t)

	r.Resolve(championsBatch(), out)

	m := out[0].MultiOption
	want := map[string]string{
		"Arsenal":             "https://img/arsenal.png",
		"Inter Milan":         "https://img/inter.png",
		"Paris Saint-Germain": "https://img/psg.png",
	}
	seen := make(map[string]bool)
	for opt, wantURL := range want {
		img := m.OptionImages[opt]
		if !img.Resolved {
			t.Errorf("option %q unresolved", opt)
			continue
		}
		if img.URL != wantURL {
			t.Errorf("option %q image = %q, want %q", opt, img.URL, wantURL)
		}
		if img.URL == m.Banner {
			t.Errorf("option %q assigned the event banner", opt)
		}
		if seen[img.URL] {
			t.Errorf("image %q assigned to more than one option", img.URL)
		}
		seen[img.URL] = true
	}
}

func TestResolveNeverUsesBanner(t *testing.T) {
	r := NewResolver(testLogger())
	out := synthesizeChampions(t)

	// Arsenal's market carries the event banner as its own image, a common
	// upstream data bug. The option must stay unresolved rather than get the
	// banner or a sibling's picture.
	batch := championsBatch()
	batch[0].Image = "https://img/banner.png"

	r.Resolve(batch, out)

	m := out[0].MultiOption
	img := m.OptionImages["Arsenal"]
	if img.Resolved || img.URL != "" {
		t.Errorf("Arsenal image = %+v, want unresolved", img)
	}
	for _, opt := range []string{"Inter Milan", "Paris Saint-Germain"} {
		if got := m.OptionImages[opt]; !got.Resolved || got.URL == m.Banner {
			t.Errorf("option %q image = %+v", opt, got)
		}
	}
}

func TestResolveFallsBackToWiderBatch(t *testing.T) {
	r := NewResolver(testLogger())
	out := synthesizeChampions(t)

	// The member market has no image, but another record in the batch names
	// the same team and carries one.
	batch := championsBatch()
	batch[1].Image = ""
	batch = append(batch, domain.RawMarket{
		ID:       "m9",
		Question: "Will Inter Milan win Serie A?",
		Image:    "https://img/inter-alt.png",
	})

	r.Resolve(batch, out)

	img := out[0].MultiOption.OptionImages["Inter Milan"]
	if !img.Resolved || img.URL != "https://img/inter-alt.png" {
		t.Errorf("Inter Milan image = %+v, want batch fallback", img)
	}
}

func TestResolveIgnoresBinaryMarkets(t *testing.T) {
	r := NewResolver(testLogger())
	out := []domain.TransformedMarket{
		domain.NewBinary(domain.BinaryMarket{ID: "m1", Image: "https://img/a.png"}),
	}

	r.Resolve(nil, out)

	if out[0].Binary.Image != "https://img/a.png" {
		t.Errorf("binary market image changed: %q", out[0].Binary.Image)
	}
}
