// Package question generates quiz questions from uploaded technical
// documents and maintains the per-document question banks.
package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/loader"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// maxAttemptsPerQuestion bounds how many model calls one accepted
// question may cost before the batch gives up on reaching the target.
const maxAttemptsPerQuestion = 5

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator builds generation prompts, parses model output, filters
// near-duplicates against the existing bank, and appends survivors.
type Generator struct {
	llm       Completer
	loader    *loader.Loader
	threshold int
	fallback  bool
}

// NewGenerator creates a Generator. threshold is the fuzzy similarity
// score above which candidates are dropped; fallback enables
// deterministic template questions when model output is unparseable.
func NewGenerator(c Completer, l *loader.Loader, threshold int, fallback bool) *Generator {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Generator{llm: c, loader: l, threshold: threshold, fallback: fallback}
}

// Generate produces up to countPerType new questions of each requested
// type (all three when types is empty) from the named document,
// deduplicated against the document's existing bank and against
// earlier acceptances in the same batch. Rejected duplicates are
// dropped silently, so the result may be smaller than requested. The
// questions are returned unsaved; call SaveBank to merge them into the
// bank.
func (g *Generator) Generate(ctx context.Context, filename string, countPerType int, types ...model.QuestionType) ([]model.Question, error) {
	items, err := g.loader.LoadDocument(filename)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("document has no clauses")
	}

	existing, err := g.loader.LoadBank(loader.BankName(filename))
	if err != nil {
		return nil, err
	}
	slog.Info("loaded existing bank for dedup", "file", filename, "existing", len(existing))

	if len(types) == 0 {
		types = []model.QuestionType{model.TypeSingleChoice, model.TypeJudge, model.TypeSubjective}
	}
	for _, qt := range types {
		if !model.ValidType(qt) {
			return nil, fmt.Errorf("unknown question type %q", qt)
		}
	}

	var accepted []model.Question
	for _, qt := range types {
		got := 0
		attempts := 0
		budget := countPerType * maxAttemptsPerQuestion * 2

		for got < countPerType && attempts < budget {
			if err := ctx.Err(); err != nil {
				return accepted, err
			}
			attempts++
			item := items[rand.Intn(len(items))]

			q, err := g.generateOne(ctx, qt, item)
			if err != nil {
				// ProviderError or ParseError: surface to the caller,
				// no retry. Partial results are still returned.
				return accepted, err
			}

			if IsSimilar(q, append(existing, accepted...), g.threshold) {
				slog.Info("dropped similar question", "type", qt, "question", truncate(q.Question, 30))
				continue
			}

			q.Idx = len(existing) + len(accepted) + 1
			q.SourceFile = filename
			accepted = append(accepted, q)
			got++
		}

		slog.Info("type batch finished", "type", qt, "accepted", got, "attempts", attempts)
	}

	return accepted, nil
}

// generateOne asks the model for a single question and parses it. A
// parse failure either yields the deterministic fallback question or
// propagates as ParseError, depending on configuration.
func (g *Generator) generateOne(ctx context.Context, qt model.QuestionType, item model.SpecItem) (model.Question, error) {
	content, err := g.llm.Complete(ctx, BuildPrompt(qt, item))
	if err != nil {
		return model.Question{}, err
	}
	q, err := Parse(qt, content)
	if err != nil {
		if g.fallback {
			slog.Warn("unparseable model output, using fallback question", "type", qt, "title", item.Title)
			return Fallback(qt, item), nil
		}
		return model.Question{}, err
	}
	return q, nil
}

// SaveBank merges newly generated questions into the bank for the
// source document and writes it back. The merge drops questions whose
// (type, question) identity already exists and re-assigns contiguous
// idx values. Returns the bank name.
func (g *Generator) SaveBank(filename string, newQuestions []model.Question) (string, error) {
	bank := loader.BankName(filename)
	existing, err := g.loader.LoadBank(bank)
	if err != nil {
		return "", err
	}
	merged := loader.Merge(existing, newQuestions)
	if err := g.loader.SaveBank(bank, merged); err != nil {
		return "", err
	}
	slog.Info("bank updated", "bank", bank, "added", len(merged)-len(existing), "total", len(merged))
	return bank, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
