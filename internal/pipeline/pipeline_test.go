package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/categorize"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/transform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeSource struct {
	batch []domain.RawMarket
	err   error
}

func (f *fakeSource) ListOpenMarkets(_ context.Context, _ int) ([]domain.RawMarket, error) {
	return f.batch, f.err
}

type fakeBlobWriter struct {
	keys []string
	data map[string][]byte
}

func newFakeBlobWriter() *fakeBlobWriter {
	return &fakeBlobWriter{data: make(map[string][]byte)}
}

func (f *fakeBlobWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.keys = append(f.keys, path)
	f.data[path] = b
	return nil
}

func (f *fakeBlobWriter) PutMultipart(ctx context.Context, path string, data io.Reader, _ int64) error {
	return f.Put(ctx, path, data, "")
}

type fakeBlobReader struct {
	data map[string][]byte
}

func (f *fakeBlobReader) Get(_ context.Context, path string) (io.ReadCloser, error) {
	b, ok := f.data[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeBlobReader) List(_ context.Context, _ string) ([]domain.BlobInfo, error) {
	return nil, nil
}

func (f *fakeBlobReader) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.data[path]
	return ok, nil
}

type memPendingStore struct {
	rows map[string]domain.PendingMarket
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{rows: make(map[string]domain.PendingMarket)}
}

func (s *memPendingStore) Insert(_ context.Context, pm domain.PendingMarket) error {
	if _, ok := s.rows[pm.PolyID]; ok {
		return domain.ErrAlreadyExists
	}
	pm.CreatedAt = time.Now()
	s.rows[pm.PolyID] = pm
	return nil
}

func (s *memPendingStore) Exists(_ context.Context, polyID string) (bool, error) {
	_, ok := s.rows[polyID]
	return ok, nil
}

func (s *memPendingStore) GetByPolyID(_ context.Context, polyID string) (domain.PendingMarket, error) {
	pm, ok := s.rows[polyID]
	if !ok {
		return domain.PendingMarket{}, domain.ErrNotFound
	}
	return pm, nil
}

func (s *memPendingStore) ListUnposted(_ context.Context, limit int) ([]domain.PendingMarket, error) {
	var out []domain.PendingMarket
	for _, pm := range s.rows {
		if !pm.Posted {
			out = append(out, pm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolyID < out[j].PolyID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memPendingStore) MarkPosted(_ context.Context, polyID, slackMessageID string) error {
	pm, ok := s.rows[polyID]
	if !ok {
		return domain.ErrNotFound
	}
	pm.Posted = true
	pm.SlackMessageID = slackMessageID
	s.rows[polyID] = pm
	return nil
}

type memEventStore struct {
	rows map[string]domain.Event
}

func newMemEventStore() *memEventStore {
	return &memEventStore{rows: make(map[string]domain.Event)}
}

func (s *memEventStore) Upsert(_ context.Context, e domain.Event) error {
	s.rows[e.ID] = e
	return nil
}

func (s *memEventStore) GetByID(_ context.Context, id string) (domain.Event, error) {
	e, ok := s.rows[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return e, nil
}

func (s *memEventStore) List(_ context.Context, _ domain.ListOpts) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range s.rows {
		out = append(out, e)
	}
	return out, nil
}

type fakePoster struct {
	posted    []string
	reactions []string
}

func (f *fakePoster) PostMarket(_ context.Context, pm domain.PendingMarket) (string, error) {
	f.posted = append(f.posted, pm.PolyID)
	return "ts-" + pm.PolyID, nil
}

func (f *fakePoster) AddReaction(_ context.Context, messageID, name string) error {
	f.reactions = append(f.reactions, messageID+":"+name)
	return nil
}

// ---------------------------------------------------------------------------
// Fetcher
// ---------------------------------------------------------------------------

func TestFetcherFiltersBatch(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{batch: []domain.RawMarket{
		{ID: "keep", Question: "Q", Image: "i", Icon: "ic", Active: true, EndDate: now.Add(time.Hour)},
		{ID: "closed", Question: "Q", Image: "i", Icon: "ic", Active: true, Closed: true},
		{ID: "archived", Question: "Q", Image: "i", Icon: "ic", Active: true, Archived: true},
		{ID: "inactive", Question: "Q", Image: "i", Icon: "ic"},
		{ID: "expired", Question: "Q", Image: "i", Icon: "ic", Active: true, EndDate: now.Add(-time.Hour)},
		{ID: "no-images", Question: "Q", Active: true},
		{ID: "", Question: "Q", Image: "i", Icon: "ic", Active: true},
	}}

	f := NewFetcher(source, 100, testLogger())
	f.now = func() time.Time { return now }

	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("kept = %+v, want only \"keep\"", got)
	}
}

// ---------------------------------------------------------------------------
// Archiver round trip
// ---------------------------------------------------------------------------

func TestArchiveAndLoadBatch(t *testing.T) {
	writer := newFakeBlobWriter()
	a := NewArchiver(writer, "raw-batches", testLogger())
	a.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	batch := []domain.RawMarket{{ID: "m1", Question: "Q", Outcomes: []string{"Yes", "No"}}}
	key, err := a.Archive(context.Background(), batch)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	const wantPrefix = "raw-batches/2026/08/24/batch-"
	if len(key) <= len(wantPrefix) || key[:len(wantPrefix)] != wantPrefix {
		t.Errorf("key = %q", key)
	}

	reader := &fakeBlobReader{data: writer.data}
	loaded, err := LoadBatch(context.Background(), reader, key)
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "m1" || len(loaded[0].Outcomes) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
}

// ---------------------------------------------------------------------------
// Orchestrator end to end
// ---------------------------------------------------------------------------

func championsRawBatch(now time.Time) []domain.RawMarket {
	ev := domain.EventRef{ID: "E1", Title: "Champions League Winner", Image: "https://img/banner.png", Icon: "https://img/ev-icon.png", Category: "sports"}
	mk := func(id, team, img string) domain.RawMarket {
		return domain.RawMarket{
			ID:       id,
			Question: "Will " + team + " win the Champions League?",
			Image:    img,
			Icon:     img,
			Outcomes: []string{"Yes", "No"},
			Active:   true,
			EndDate:  now.Add(24 * time.Hour),
			Events:   []domain.EventRef{ev},
		}
	}
	return []domain.RawMarket{
		mk("m1", "Arsenal", "https://img/arsenal.png"),
		mk("m2", "Inter Milan", "https://img/inter.png"),
		mk("m3", "Paris Saint-Germain", "https://img/psg.png"),
	}
}

func testOrchestrator(t *testing.T, source MarketSource) (*Orchestrator, *memPendingStore, *memEventStore, *fakePoster) {
	t.Helper()
	logger := testLogger()

	pending := newMemPendingStore()
	events := newMemEventStore()
	slack := &fakePoster{}

	fetcher := NewFetcher(source, 100, logger)
	engine := transform.NewEngine(transform.NewExtractor(transform.DefaultRules(), transform.DefaultVocabulary()), logger)

	o := NewOrchestrator(Deps{
		Fetcher:     fetcher,
		Engine:      engine,
		Ledger:      transform.NewMemoryLedger(),
		Categorizer: categorize.NewKeyword(),
		Concurrency: 2,
		Events:      events,
		Pending:     pending,
		Poster:      NewPoster(pending, slack, nil, logger),
		Interval:    time.Hour,
		Logger:      logger,
	})
	return o, pending, events, slack
}

func TestRunOnceEndToEnd(t *testing.T) {
	now := time.Now()
	o, pending, events, slack := testOrchestrator(t, &fakeSource{batch: championsRawBatch(now)})

	if err := o.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	pm, err := pending.GetByPolyID(context.Background(), "group_E1")
	if err != nil {
		t.Fatalf("pending market not stored: %v", err)
	}
	if len(pm.Options) != 3 {
		t.Errorf("options = %v", pm.Options)
	}
	if pm.Category != domain.CategorySports {
		t.Errorf("category = %q", pm.Category)
	}
	if !pm.Posted || pm.SlackMessageID != "ts-group_E1" {
		t.Errorf("pending = %+v, want posted with message id", pm)
	}
	for _, opt := range pm.Options {
		img := pm.OptionImages[opt]
		if !img.Resolved || img.URL == pm.BannerURL {
			t.Errorf("option %q image = %+v", opt, img)
		}
	}
	if pm.NeedsManual {
		t.Error("fully resolved market should not need manual review")
	}

	ev, err := events.GetByID(context.Background(), "E1")
	if err != nil {
		t.Fatalf("event not upserted: %v", err)
	}
	if ev.BannerURL != "https://img/banner.png" {
		t.Errorf("event banner = %q", ev.BannerURL)
	}

	if len(slack.posted) != 1 {
		t.Errorf("posted = %v", slack.posted)
	}
	if len(slack.reactions) != 2 {
		t.Errorf("reactions = %v", slack.reactions)
	}
}

func TestRunOnceIdempotentAcrossRuns(t *testing.T) {
	now := time.Now()
	source := &fakeSource{batch: championsRawBatch(now)}
	o, _, _, slack := testOrchestrator(t, source)

	if err := o.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := o.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(slack.posted) != 1 {
		t.Errorf("posted %v times, want the market posted exactly once", slack.posted)
	}
}

func TestRunOnceFlagsUnresolvedImagesForManualReview(t *testing.T) {
	now := time.Now()
	batch := championsRawBatch(now)
	// Arsenal's market image duplicates the event banner, so no dedicated
	// option image exists anywhere in the batch.
	batch[0].Image = "https://img/banner.png"

	o, pending, _, _ := testOrchestrator(t, &fakeSource{batch: batch})
	if err := o.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	pm, err := pending.GetByPolyID(context.Background(), "group_E1")
	if err != nil {
		t.Fatalf("pending market not stored: %v", err)
	}
	if !pm.NeedsManual {
		t.Error("market with unresolved option image must need manual review")
	}
	if img := pm.OptionImages["Arsenal"]; img.Resolved || img.URL != "" {
		t.Errorf("Arsenal image = %+v, want unresolved and empty", img)
	}
}

func TestReplayUsesArchivedBatch(t *testing.T) {
	now := time.Now()
	writer := newFakeBlobWriter()
	a := NewArchiver(writer, "raw-batches", testLogger())

	key, err := a.Archive(context.Background(), championsRawBatch(now))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	o, pending, _, _ := testOrchestrator(t, &fakeSource{})
	reader := &fakeBlobReader{data: writer.data}
	if err := o.Replay(context.Background(), reader, key); err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if ok, _ := pending.Exists(context.Background(), "group_E1"); !ok {
		t.Error("replay did not store the synthesized market")
	}
}
