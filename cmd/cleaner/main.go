// Command cleaner is the streaming corpus-cleaning service. It consumes
// raw OCR page events from Kafka, assembles documents, runs the cleaning
// pipeline, persists cleaned pages to PostgreSQL, and republishes them to
// the cleaned-pages topic.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/canonical"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/ingest"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pagecache"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/store"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/config"
	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/health"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/kafka"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/logger"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/postgres"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cleaner: %v\n", err)
		// Fatal errors (missing lexicon, bad dictionary) are configuration
		// problems; exit distinctly so orchestration does not hot-loop.
		if apperrors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("cleaner")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocabStore, err := vocab.LoadCSV(cfg.Vocabulary.LexiconPath, cfg.Vocabulary.TermColumn, cfg.Vocabulary.LabelColumn)
	if err != nil {
		return err
	}
	dict, err := canonical.Load(cfg.Vocabulary.DictionaryPath)
	if err != nil {
		return err
	}
	log.Info("lexicon loaded",
		"terms", vocabStore.Len(),
		"canonical_terms", dict.Len(),
	)

	m := metrics.New()

	var corrector *spell.Corrector
	if cfg.Pipeline.EnableSpellCorrection {
		corrector = spell.NewCorrector(vocabStore, spell.Options{
			MaxCandidates: cfg.Pipeline.MaxCandidates,
			CacheCapacity: cfg.Pipeline.CacheCapacity,
			Metrics:       m,
		})
		stats := corrector.Stats()
		m.VocabularyTerms.Set(float64(stats.TotalWords))
		m.VocabularyTrigrams.Set(float64(stats.TrigramCount))
	}

	checker := health.NewChecker()

	// Redis is optional: without it the pipeline just computes every page.
	var cache pipeline.PageCache
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, page cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cache = pagecache.New(redisClient, cfg.Redis.CacheTTL, m)
		checker.Register("redis", health.PingCheck(redisClient.Ping))
	}

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()

	pipe := pipeline.New(pipeline.OptionsFromConfig(cfg.Pipeline), corrector, dict, cache, m)
	pageStore := store.New(pg, m)
	checker.Register("postgres", health.PingCheck(pageStore.Ping))

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CleanedPages)
	defer producer.Close()

	collector := ingest.NewCollector(pipe, pageStore, producer, m)
	collector.StartJanitor(ctx, time.Minute, 10*time.Minute)

	pageStore.StartPeriodicSnapshot(ctx, cfg.Postgres.SnapshotEvery, func() store.CorpusStats {
		return collectStats(collector, corrector, vocabStore)
	})

	if cfg.Metrics.Enabled {
		startOpsServer(ctx, cfg.Metrics.Port, checker, collector, corrector, log)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RawPages, collector.Handle)
	defer consumer.Close()

	log.Info("cleaner started",
		"raw_topic", cfg.Kafka.Topics.RawPages,
		"cleaned_topic", cfg.Kafka.Topics.CleanedPages,
		"workers", cfg.Pipeline.Workers,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	log.Info("cleaner shut down")
	return nil
}

func collectStats(collector *ingest.Collector, corrector *spell.Corrector, vocabStore *vocab.Store) store.CorpusStats {
	cs := collector.Stats()
	stats := store.CorpusStats{
		Documents:       cs.DocumentsCompleted,
		PagesCleaned:    cs.PagesPublished,
		VocabularyTerms: vocabStore.Len(),
		Timestamp:       time.Now().UTC(),
	}
	if corrector != nil {
		ss := corrector.Stats()
		stats.CacheHits = ss.CacheHits
		stats.CacheMisses = ss.CacheMisses
	}
	return stats
}

// startOpsServer serves metrics, health probes, and a stats endpoint on the
// configured port.
func startOpsServer(ctx context.Context, port int, checker *health.Checker, collector *ingest.Collector, corrector *spell.Corrector, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health/live", checker.LiveHandler())
	mux.HandleFunc("/health/ready", checker.ReadyHandler())
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"collector": collector.Stats()}
		if corrector != nil {
			payload["corrector"] = corrector.Stats()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("ops server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
