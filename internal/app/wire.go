package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/blob/s3"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/cache/redis"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/categorize"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/config"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/notify"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/pipeline"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/platform/polymarket"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/store/postgres"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/transform"
)

// Dependencies bundles the wired collaborators the application modes operate
// on. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Orchestrator *pipeline.Orchestrator
	Poster       *pipeline.Poster

	// Stores
	EventStore   domain.EventStore
	MarketStore  domain.MarketStore
	PendingStore domain.PendingMarketStore
	AuditStore   domain.AuditStore

	// BlobReader backs batch replay; nil when object storage is not
	// configured.
	BlobReader domain.BlobReader

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.EventStore = postgres.NewEventStore(pool)
	deps.MarketStore = postgres.NewMarketStore(pool)
	deps.PendingStore = postgres.NewPendingMarketStore(pool)
	deps.AuditStore = postgres.NewAuditStore(pool)

	// --- Redis (distributed run lock, optionally the ledger) ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	locks := redis.NewLockManager(redisClient)

	var ledger domain.Ledger
	switch strings.ToLower(cfg.Pipeline.Ledger) {
	case "postgres":
		ledger = postgres.NewLedger(pool)
	case "redis":
		ledger = redis.NewLedger(redisClient)
	case "memory":
		ledger = transform.NewMemoryLedger()
	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown ledger backend %q", cfg.Pipeline.Ledger)
	}

	// --- S3 blob storage (batch archive and replay) ---
	var archiver *pipeline.Archiver
	if cfg.Pipeline.ArchiveEnabled || strings.ToLower(cfg.Mode) == "replay" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobReader = s3blob.NewReader(s3Client)
		if cfg.Pipeline.ArchiveEnabled {
			archiver = pipeline.NewArchiver(s3blob.NewWriter(s3Client), cfg.Pipeline.ArchivePrefix, logger)
		}
	}

	// --- Transform engine ---
	vocab := transform.DefaultVocabulary()
	for _, v := range cfg.Extractor.Vocabulary {
		vocab = append(vocab, transform.Vocabulary{Domain: v.Domain, Entities: v.Entities})
	}
	extractor := transform.NewExtractor(transform.DefaultRules(), vocab)
	engine := transform.NewEngine(extractor, logger)

	// --- Categorizer ---
	var categorizer domain.Categorizer
	switch strings.ToLower(cfg.Categorizer.Provider) {
	case "openai":
		categorizer = categorize.NewOpenAI(cfg.Categorizer.OpenAIAPIKey, cfg.Categorizer.OpenAIModel)
	default:
		categorizer = categorize.NewKeyword()
	}

	// --- Slack approval channel and operational notifications ---
	var senders []notify.Sender
	var slack *notify.SlackClient
	if cfg.Slack.BotToken != "" {
		slack = notify.NewSlackClient(cfg.Slack.BotToken, cfg.Slack.ChannelID)
		senders = append(senders, slack)
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	if slack != nil {
		deps.Poster = pipeline.NewPoster(deps.PendingStore, slack, deps.AuditStore, logger)
	}

	// --- Orchestrator ---
	fetcher := pipeline.NewFetcher(
		polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
		cfg.Polymarket.PageSize,
		logger,
	)
	deps.Orchestrator = pipeline.NewOrchestrator(pipeline.Deps{
		Fetcher:     fetcher,
		Archiver:    archiver,
		Engine:      engine,
		Ledger:      ledger,
		Categorizer: categorizer,
		Concurrency: cfg.Categorizer.Concurrency,
		Events:      deps.EventStore,
		Pending:     deps.PendingStore,
		Audit:       deps.AuditStore,
		Poster:      deps.Poster,
		Locks:       locks,
		LockTTL:     cfg.Pipeline.LockTTL.Duration,
		Interval:    cfg.Pipeline.Interval.Duration,
		Notifier:    deps.Notifier,
		Logger:      logger,
	})

	return deps, cleanup, nil
}
