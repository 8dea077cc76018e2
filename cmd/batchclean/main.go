// Command batchclean cleans a corpus offline: it reads raw page records
// from a JSONL file (one {"source","page","text"} object per line), runs
// the full pipeline per document, and writes cleaned records as JSONL. No
// Kafka, Redis, or PostgreSQL needed.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/canonical"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/config"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "batchclean: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	inPath := flag.String("in", "", "input JSONL file of raw pages (default stdin)")
	outPath := flag.String("out", "", "output JSONL file of cleaned pages (default stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, "text")
	log := logger.WithComponent("batchclean")

	vocabStore, err := vocab.LoadCSV(cfg.Vocabulary.LexiconPath, cfg.Vocabulary.TermColumn, cfg.Vocabulary.LabelColumn)
	if err != nil {
		return err
	}
	dict, err := canonical.Load(cfg.Vocabulary.DictionaryPath)
	if err != nil {
		return err
	}

	var corrector *spell.Corrector
	if cfg.Pipeline.EnableSpellCorrection {
		corrector = spell.NewCorrector(vocabStore, spell.Options{
			MaxCandidates: cfg.Pipeline.MaxCandidates,
			CacheCapacity: cfg.Pipeline.CacheCapacity,
		})
	}
	pipe := pipeline.New(pipeline.OptionsFromConfig(cfg.Pipeline), corrector, dict, nil, nil)

	in := os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}
	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	docs, order, err := readDocuments(in)
	if err != nil {
		return err
	}

	start := time.Now()
	w := bufio.NewWriter(out)
	defer w.Flush()
	enc := json.NewEncoder(w)

	var pages int
	for _, source := range order {
		cleaned, err := pipe.ProcessDocument(context.Background(), docs[source])
		if err != nil {
			return fmt.Errorf("cleaning %s: %w", source, err)
		}
		for _, page := range cleaned {
			if err := enc.Encode(page); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			pages++
		}
	}

	log.Info("batch complete",
		"documents", len(order),
		"pages", pages,
		"duration", time.Since(start),
	)
	return nil
}

// readDocuments groups input records by source, preserving first-seen
// source order and input page order within a source.
func readDocuments(f *os.File) (map[string][]pipeline.Page, []string, error) {
	docs := make(map[string][]pipeline.Page)
	var order []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var page pipeline.Page
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, nil, fmt.Errorf("input line %d: %w", line, err)
		}
		if page.Source == "" {
			return nil, nil, fmt.Errorf("input line %d: missing source", line)
		}
		if _, ok := docs[page.Source]; !ok {
			order = append(order, page.Source)
		}
		docs[page.Source] = append(docs[page.Source], page)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}
	return docs, order, nil
}
