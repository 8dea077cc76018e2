// Package benchmark contains Go benchmarks for the trigram index, the
// fuzzy corrector, and the full page-cleaning pipeline, measuring
// throughput and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/canonical"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell/trigram"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
)

var terms = []string{
	"pitta", "vata", "kapha", "dosha", "agni", "ama", "ojas",
	"prakriti", "vikriti", "dhatu", "srotas", "panchakarma",
	"rasayana", "vipaka", "virya", "triphala", "ashwagandha", "brahmi",
}

func benchVocab(size int) *vocab.Store {
	s := vocab.NewStore()
	for i := 0; i < size; i++ {
		s.Add(fmt.Sprintf("%s%d", terms[i%len(terms)], i), 1+i%100)
	}
	for _, t := range terms {
		s.Add(t, 100)
	}
	return s
}

// BenchmarkTrigramIndexAdd measures per-term insert throughput.
func BenchmarkTrigramIndexAdd(b *testing.B) {
	ix := trigram.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		term := fmt.Sprintf("%s%d", terms[i%len(terms)], i)
		ix.Add(term, term)
	}
}

// BenchmarkTrigramCandidates measures shortlist latency over growing
// vocabulary sizes.
func BenchmarkTrigramCandidates(b *testing.B) {
	for _, size := range []int{1000, 10000, 50000} {
		b.Run(fmt.Sprintf("vocab_%d", size), func(b *testing.B) {
			ix := trigram.New()
			benchVocab(size).ForEach(func(term string, _ int) {
				ix.Add(term, term)
			})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = ix.Candidates("pltta", 50)
			}
		})
	}
}

// BenchmarkCorrectWordCold measures full correction latency with the cache
// defeated by unique inputs.
func BenchmarkCorrectWordCold(b *testing.B) {
	c := spell.NewCorrector(benchVocab(10000), spell.Options{CacheCapacity: 1})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CorrectWord(fmt.Sprintf("pltta%d", i), 0.75)
	}
}

// BenchmarkCorrectWordCached measures the memoized fast path.
func BenchmarkCorrectWordCached(b *testing.B) {
	c := spell.NewCorrector(benchVocab(10000), spell.Options{})
	c.CorrectWord("pltta", 0.75)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CorrectWord("pltta", 0.75)
	}
}

// BenchmarkProcessPage measures end-to-end single-page cleaning.
func BenchmarkProcessPage(b *testing.B) {
	corrector := spell.NewCorrector(benchVocab(10000), spell.Options{})
	dict := canonical.FromMap(map[string][]string{
		"pitta": {"pltta", "pita"},
		"vata":  {"vatta"},
		"kapha": {"kapa"},
	})
	p := pipeline.New(pipeline.Options{Workers: 1}, corrector, dict, nil, nil)

	page := pipeline.Page{
		Source: "bench",
		Page:   1,
		Text: "ANCIENT TEXTS VOLUME ONE\n" +
			"The pltta dosha governs digestion and metabolic transformation.\n" +
			"Vatta imbalance manifests as dryness and irregular movement patterns.\n" +
			"The kapa constitution provides structure and lubrication throughout.\n" +
			"|||| #### @@@@\n" +
			"Treatment begins with careful assessment of the patient history.",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ProcessPage(context.Background(), page); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkProcessDocumentParallelism compares worker pool sizes over a
// 32-page document.
func BenchmarkProcessDocumentParallelism(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			corrector := spell.NewCorrector(benchVocab(10000), spell.Options{})
			dict := canonical.FromMap(map[string][]string{"pitta": {"pltta"}})
			p := pipeline.New(pipeline.Options{Workers: workers}, corrector, dict, nil, nil)

			pages := make([]pipeline.Page, 32)
			for i := range pages {
				pages[i] = pipeline.Page{
					Source: "bench",
					Page:   i + 1,
					Text: fmt.Sprintf("RUNNING HEADER\nThe pltta dosha appears in section %d of the manuscript.\n"+
						"Further discussion of treatment protocols continues on this page.", i),
				}
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.ProcessDocument(context.Background(), pages); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
