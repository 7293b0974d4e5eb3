package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// Archiver writes the raw fetched batch to object storage before any
// transformation, so a run can be replayed against a fixed input after a rule
// or code change.
type Archiver struct {
	writer domain.BlobWriter
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// NewArchiver creates an Archiver storing batches under the given key prefix.
func NewArchiver(writer domain.BlobWriter, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		prefix: prefix,
		now:    time.Now,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// Archive uploads the batch as a JSON object and returns the storage key.
// Keys are date-partitioned with a random suffix so concurrent runs never
// collide: <prefix>/2026/08/24/batch-<uuid>.json.
func (a *Archiver) Archive(ctx context.Context, batch []domain.RawMarket) (string, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("pipeline: encode batch: %w", err)
	}

	now := a.now().UTC()
	key := fmt.Sprintf("%s/%s/batch-%s.json", a.prefix, now.Format("2006/01/02"), uuid.New())

	if err := a.writer.Put(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return "", fmt.Errorf("pipeline: archive batch: %w", err)
	}

	a.logger.Info("archived raw batch",
		slog.String("key", key),
		slog.Int("records", len(batch)),
		slog.Int("bytes", len(payload)),
	)
	return key, nil
}

// LoadBatch reads an archived batch back from object storage for replay.
func LoadBatch(ctx context.Context, reader domain.BlobReader, key string) ([]domain.RawMarket, error) {
	body, err := reader.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load batch %s: %w", key, err)
	}
	defer body.Close()

	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read batch %s: %w", key, err)
	}

	var batch []domain.RawMarket
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("pipeline: decode batch %s: %w", key, err)
	}
	return batch, nil
}
