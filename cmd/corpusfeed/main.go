// Command corpusfeed publishes synthetic raw-page events to the raw-pages
// topic for load and smoke testing the cleaner. Generated pages carry the
// OCR defects the pipeline targets: repeated headers, ligatures, wedged
// symbols, de-spaced words, and misspelled domain terms.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/ingest"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/config"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/kafka"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/logger"
)

var sentencesPool = []string{
	"the pltta dosha governs digestion and metabolic transformation",
	"vatta imbalance manifests as dryness and irregular movement",
	"kapha provides structure and lubrication to the body",
	"treatment begins with a careful assessment of the patient",
	"herbal preparations are administered after meals with warm water",
	"the classical texts describe seven tissue layers in sequence",
	"seasonal routines align daily conduct with the environment",
	"digestion of food depends on the strength of the digestive fire",
}

var noisePool = []string{
	"|||| #### @@@@ %%%% &&&&",
	"~~~ ... ---",
	"x7 9q 2z",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "corpusfeed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	documents := flag.Int("documents", 10, "number of documents to publish")
	pagesPer := flag.Int("pages", 8, "pages per document")
	rate := flag.Duration("rate", 50*time.Millisecond, "delay between pages")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, "text")
	log := logger.WithComponent("corpusfeed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RawPages)
	defer producer.Close()

	rng := rand.New(rand.NewSource(*seed))
	start := time.Now()
	published := 0

	for d := 0; d < *documents; d++ {
		source := fmt.Sprintf("synthetic-%d-%03d", *seed, d)
		header := fmt.Sprintf("ANCIENT TEXTS VOLUME %d", d+1)
		for p := 1; p <= *pagesPer; p++ {
			event := ingest.RawPageEvent{
				Source:     source,
				Page:       p,
				Text:       generatePage(rng, header, p),
				TotalPages: *pagesPer,
			}
			err := producer.Publish(ctx, kafka.Event{
				Key:   fmt.Sprintf("%s:%d", source, p),
				Value: event,
			})
			if err != nil {
				return fmt.Errorf("publishing %s page %d: %w", source, p, err)
			}
			published++

			select {
			case <-ctx.Done():
				log.Info("interrupted", "published", published)
				return nil
			case <-time.After(*rate):
			}
		}
	}

	log.Info("feed complete",
		"documents", *documents,
		"pages", published,
		"duration", time.Since(start),
	)
	return nil
}

// generatePage assembles a raw page: a repeating header, a page-number
// footer, body sentences, and injected OCR defects.
func generatePage(rng *rand.Rand, header string, pageNum int) string {
	var lines []string
	lines = append(lines, header)

	body := 4 + rng.Intn(4)
	for i := 0; i < body; i++ {
		s := sentencesPool[rng.Intn(len(sentencesPool))]
		switch rng.Intn(5) {
		case 0:
			s = strings.Replace(s, "fi", "ﬁ", 1)
		case 1:
			s = despace(rng, s)
		case 2:
			words := strings.Fields(s)
			j := rng.Intn(len(words))
			if len(words[j]) > 3 {
				words[j] = words[j][:2] + "^" + words[j][2:]
			}
			s = strings.Join(words, " ")
		}
		lines = append(lines, s+".")
	}

	if rng.Intn(3) == 0 {
		lines = append(lines, noisePool[rng.Intn(len(noisePool))])
	}
	lines = append(lines, fmt.Sprintf("- %d -", pageNum))
	return strings.Join(lines, "\n")
}

// despace spreads one word into single spaced characters, mimicking
// per-glyph OCR output.
func despace(rng *rand.Rand, s string) string {
	words := strings.Fields(s)
	i := rng.Intn(len(words))
	words[i] = strings.Join(strings.Split(words[i], ""), " ")
	return strings.Join(words, " ")
}
