package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(NewExtractor(DefaultRules(), DefaultVocabulary()), testLogger())
}

func TestTransformEndToEnd(t *testing.T) {
	e := testEngine()
	ledger := NewMemoryLedger()

	batch := championsBatch()
	batch = append(batch, domain.RawMarket{
		ID:       "m4",
		Question: "Will Bitcoin reach $200k in 2026?",
		Image:    "https://img/btc.png",
		Outcomes: yesNo,
	})

	out, err := e.Transform(context.Background(), batch, ledger)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d outputs, want multi-option plus binary", len(out))
	}

	var multi *domain.MultiOptionMarket
	var binary *domain.BinaryMarket
	for _, m := range out {
		switch m.Kind {
		case domain.KindMultiOption:
			multi = m.MultiOption
		case domain.KindBinary:
			binary = m.Binary
		}
	}
	if multi == nil || binary == nil {
		t.Fatalf("outputs = %+v", out)
	}

	if multi.ID != "group_E1" || len(multi.Options) != 3 {
		t.Errorf("multi = %+v", multi)
	}
	for _, opt := range multi.Options {
		img := multi.OptionImages[opt]
		if !img.Resolved {
			t.Errorf("option %q unresolved", opt)
		}
		if img.URL == multi.Banner {
			t.Errorf("option %q got the banner", opt)
		}
	}
	if binary.ID != "m4" || binary.Image != "https://img/btc.png" {
		t.Errorf("binary = %+v", binary)
	}

	// Every consumed source id is in the ledger.
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		ok, err := ledger.Contains(context.Background(), id)
		if err != nil || !ok {
			t.Errorf("ledger.Contains(%s) = %v, %v", id, ok, err)
		}
	}
}

func TestTransformIdempotent(t *testing.T) {
	e := testEngine()
	ledger := NewMemoryLedger()
	batch := championsBatch()

	first, err := e.Transform(context.Background(), batch, ledger)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first run outputs = %d, want 1", len(first))
	}

	second, err := e.Transform(context.Background(), batch, ledger)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run outputs = %d, want 0", len(second))
	}
}

func TestTransformPartialOverlap(t *testing.T) {
	e := testEngine()
	ledger := NewMemoryLedger()

	if _, err := e.Transform(context.Background(), championsBatch(), ledger); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	// A later batch repeats m1-m3 and adds one new market; only the new one
	// comes out, as a standalone binary.
	batch := append(championsBatch(), domain.RawMarket{
		ID:       "m5",
		Question: "Will Bitcoin reach $200k in 2026?",
		Outcomes: yesNo,
	})

	out, err := e.Transform(context.Background(), batch, ledger)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 1 || out[0].Kind != domain.KindBinary || out[0].Binary.ID != "m5" {
		t.Fatalf("outputs = %+v, want single binary m5", out)
	}
}

func TestTransformResolvesImagesFromConsumedRecords(t *testing.T) {
	e := testEngine()
	ledger := NewMemoryLedger()

	donor := domain.RawMarket{
		ID:       "d1",
		Question: "Will Inter Milan win Serie A?",
		Image:    "https://img/inter-alt.png",
		Outcomes: yesNo,
	}
	if _, err := e.Transform(context.Background(), []domain.RawMarket{donor}, ledger); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	// Inter's own market carries the event banner, so its only dedicated
	// image lives on the donor record consumed in the previous run. The
	// resolver must still find it in the full batch.
	batch := championsBatch()
	batch[1].Image = "https://img/banner.png"
	batch = append(batch, donor)

	out, err := e.Transform(context.Background(), batch, ledger)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 1 || out[0].Kind != domain.KindMultiOption {
		t.Fatalf("outputs = %+v, want single multi-option market", out)
	}

	img := out[0].MultiOption.OptionImages["Inter Milan"]
	if !img.Resolved || img.URL != "https://img/inter-alt.png" {
		t.Errorf("Inter Milan image = %+v, want the consumed donor's image", img)
	}
}

type failingLedger struct {
	containsErr error
	addErr      error
	inner       *MemoryLedger
}

func (l *failingLedger) Contains(ctx context.Context, id string) (bool, error) {
	if l.containsErr != nil {
		return false, l.containsErr
	}
	return l.inner.Contains(ctx, id)
}

func (l *failingLedger) Add(ctx context.Context, id string) error {
	if l.addErr != nil {
		return l.addErr
	}
	return l.inner.Add(ctx, id)
}

func TestTransformLedgerReadFailureDegrades(t *testing.T) {
	e := testEngine()
	ledger := &failingLedger{containsErr: errors.New("redis down"), inner: NewMemoryLedger()}

	out, err := e.Transform(context.Background(), championsBatch(), ledger)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("outputs = %d, want the batch processed as new", len(out))
	}
}

func TestTransformLedgerWriteFailureAborts(t *testing.T) {
	e := testEngine()
	ledger := &failingLedger{addErr: errors.New("redis down"), inner: NewMemoryLedger()}

	if _, err := e.Transform(context.Background(), championsBatch(), ledger); err == nil {
		t.Fatal("want error when the ledger cannot record consumed ids")
	}
}
