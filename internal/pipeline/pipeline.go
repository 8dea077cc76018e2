// Package pipeline wires the cleaning stages into a per-document flow:
// repeated-line detection across the document, then per-page filtering,
// normalization, spell correction, and entity extraction.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/canonical"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/noise"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/textnorm"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/config"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Page is one raw OCR page of a source document.
type Page struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// Metadata describes a cleaned page.
type Metadata struct {
	Source   string   `json:"source"`
	Page     int      `json:"page"`
	Entities []string `json:"entities"`
}

// CleanedPage is the pipeline output for one page. Content may be empty
// when the page was skipped or fully filtered away.
type CleanedPage struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Options tune the pipeline. Construct from config with
// OptionsFromConfig.
type Options struct {
	// QualityThreshold skips pages whose raw text is shorter than this
	// many characters (10).
	QualityThreshold int
	// MinRepeatFraction is the page fraction above which a line counts as
	// a header/footer (0.3).
	MinRepeatFraction float64
	// CorrectionThreshold is the minimum similarity for a spell
	// correction to be applied (0.75).
	CorrectionThreshold float64
	// EnableSpellCorrection toggles the fuzzy correction stage.
	EnableSpellCorrection bool
	// PreserveEntities exempts lines containing canonical terms from
	// header/footer removal.
	PreserveEntities bool
	// OCRFix enables character-level repair in normalization.
	OCRFix bool
	// SentencesPerParagraph controls output reflow (3).
	SentencesPerParagraph int
	// Workers bounds per-document page concurrency (NumCPU).
	Workers int
}

// OptionsFromConfig maps the pipeline section of the service config.
func OptionsFromConfig(cfg config.PipelineConfig) Options {
	return Options{
		QualityThreshold:      cfg.QualityThreshold,
		MinRepeatFraction:     cfg.MinRepeatFraction,
		CorrectionThreshold:   cfg.CorrectionThreshold,
		EnableSpellCorrection: cfg.EnableSpellCorrection,
		PreserveEntities:      cfg.PreserveEntities,
		OCRFix:                cfg.EnableOCRFix,
		SentencesPerParagraph: cfg.SentencesPerParagraph,
		Workers:               cfg.Workers,
	}
}

// PageCache memoizes cleaned pages keyed by page content. Implementations
// must call compute on a miss and may serve stale entries until
// invalidated.
type PageCache interface {
	GetOrCompute(ctx context.Context, page Page, compute func() (CleanedPage, error)) (CleanedPage, error)
}

// Pipeline runs the cleaning stages. Safe for concurrent use.
type Pipeline struct {
	opts      Options
	corrector *spell.Corrector
	dict      *canonical.Dictionary
	norm      *textnorm.Normalizer
	cache     PageCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New builds a Pipeline. corrector may be nil when spell correction is
// disabled; cache and m may be nil.
func New(opts Options, corrector *spell.Corrector, dict *canonical.Dictionary, cache PageCache, m *metrics.Metrics) *Pipeline {
	if opts.QualityThreshold <= 0 {
		opts.QualityThreshold = 10
	}
	if opts.MinRepeatFraction <= 0 {
		opts.MinRepeatFraction = 0.3
	}
	if opts.CorrectionThreshold <= 0 {
		opts.CorrectionThreshold = 0.75
	}
	if opts.SentencesPerParagraph <= 0 {
		opts.SentencesPerParagraph = 3
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		opts:      opts,
		corrector: corrector,
		dict:      dict,
		norm: textnorm.New(textnorm.Options{
			OCRFix:                opts.OCRFix,
			SentencesPerParagraph: opts.SentencesPerParagraph,
		}),
		cache:   cache,
		metrics: m,
		logger:  slog.Default().With("component", "pipeline"),
	}
}

// ProcessDocument cleans all pages of one document. Repeated-line
// detection sees every page before any page is cleaned; page cleaning
// then fans out across a bounded worker pool. Results are in input
// order.
func (p *Pipeline) ProcessDocument(ctx context.Context, pages []Page) ([]CleanedPage, error) {
	start := time.Now()

	pageLines := make([][]string, len(pages))
	for i, page := range pages {
		pageLines[i] = strings.Split(page.Text, "\n")
	}
	repeated := noise.DetectRepeated(pageLines, p.opts.MinRepeatFraction)

	out := make([]CleanedPage, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, page := range pages {
		g.Go(func() error {
			cleaned, err := p.processPage(ctx, page, repeated)
			if err != nil {
				return err
			}
			out[i] = cleaned
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(pages) > 0 {
		p.logger.Info("document cleaned",
			"source", pages[0].Source,
			"pages", len(pages),
			"repeated_lines", len(repeated),
			"duration", time.Since(start),
		)
	}
	return out, nil
}

// ProcessPage cleans a single page with no cross-page repeated-line
// context. Intended for standalone pages and tests; documents should go
// through ProcessDocument.
func (p *Pipeline) ProcessPage(ctx context.Context, page Page) (CleanedPage, error) {
	return p.processPage(ctx, page, map[string]struct{}{})
}

func (p *Pipeline) processPage(ctx context.Context, page Page, repeated map[string]struct{}) (CleanedPage, error) {
	if p.cache == nil {
		return p.cleanPage(ctx, page, repeated)
	}
	return p.cache.GetOrCompute(ctx, page, func() (CleanedPage, error) {
		return p.cleanPage(ctx, page, repeated)
	})
}

func (p *Pipeline) cleanPage(ctx context.Context, page Page, repeated map[string]struct{}) (CleanedPage, error) {
	if err := ctx.Err(); err != nil {
		return CleanedPage{}, err
	}
	start := time.Now()

	meta := Metadata{Source: page.Source, Page: page.Page, Entities: []string{}}
	if utf8.RuneCountInString(strings.TrimSpace(page.Text)) < p.opts.QualityThreshold {
		p.observePage("skipped", start)
		return CleanedPage{Metadata: meta}, nil
	}

	var protected []string
	if p.opts.PreserveEntities && p.dict != nil {
		protected = p.dict.Names()
	}
	lines := noise.FilterLines(strings.Split(page.Text, "\n"), repeated, protected, p.observeDrop)
	if len(lines) == 0 {
		p.observePage("filtered", start)
		return CleanedPage{Metadata: meta}, nil
	}

	var termFn textnorm.TermFunc
	if p.dict != nil {
		raw := page.Text
		termFn = func(word string) string {
			return p.dict.NormalizeTerm(word, raw)
		}
	}
	text := p.norm.NormalizeWithContext(strings.Join(lines, "\n"), page.Text, termFn)

	if p.opts.EnableSpellCorrection && p.corrector != nil {
		corrStart := time.Now()
		// Per paragraph, so correction never collapses the reflowed
		// paragraph breaks.
		paras := strings.Split(text, "\n\n")
		for i, para := range paras {
			paras[i] = p.corrector.CorrectText(para, p.opts.CorrectionThreshold)
		}
		text = strings.Join(paras, "\n\n")
		if p.metrics != nil {
			p.metrics.CorrectionDuration.Observe(time.Since(corrStart).Seconds())
		}
	}

	if p.dict != nil {
		meta.Entities = p.dict.ExtractEntities(text)
		if p.metrics != nil {
			p.metrics.EntitiesFoundTotal.Add(float64(len(meta.Entities)))
		}
	}

	p.observePage("cleaned", start)
	return CleanedPage{Content: text, Metadata: meta}, nil
}

func (p *Pipeline) observePage(outcome string, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.PagesProcessedTotal.WithLabelValues(outcome).Inc()
	p.metrics.PageCleanDuration.Observe(time.Since(start).Seconds())
}

func (p *Pipeline) observeDrop(stage noise.Stage) {
	if p.metrics != nil {
		p.metrics.LinesDroppedTotal.WithLabelValues(string(stage)).Inc()
	}
}
