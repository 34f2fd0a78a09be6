// Package pipeline scores an assessment, generates advice for every question
// concurrently and renders the grouped report.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/assessment-advisor/internal/model"
	"github.com/sells-group/assessment-advisor/internal/profile"
	"github.com/sells-group/assessment-advisor/internal/rules"
	"github.com/sells-group/assessment-advisor/internal/scorer"
)

// Options tunes a Pipeline.
type Options struct {
	// MaxConcurrency caps in-flight advice calls. Zero or less is unbounded.
	MaxConcurrency int
}

// Pipeline runs the advice flow for one assessment at a time. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	gen  *Generator
	opts Options
}

// New creates a Pipeline.
func New(gen *Generator, opts Options) *Pipeline {
	return &Pipeline{gen: gen, opts: opts}
}

// Prepare numbers the questions in intake order and scores each against the
// rules stored under its id. It does not modify a.
func Prepare(a *model.Assessment, tbl rules.Table) []model.ScoredQuestion {
	questions := a.Questions()
	out := make([]model.ScoredQuestion, len(questions))
	for i, q := range questions {
		id := model.QuestionID(i)
		count := rules.CountSatisfied(tbl[id], a.ServiceOffering)
		weighted, category := scorer.Score(q.RawScore(), count)
		out[i] = model.ScoredQuestion{
			Field:          q,
			QuestionID:     id,
			SatisfiedRules: count,
			WeightedScore:  weighted,
			Category:       category,
		}
	}
	return out
}

// Advise generates advice for every scored question. Results are returned
// in input order once all calls have finished.
func (p *Pipeline) Advise(ctx context.Context, bp model.BusinessProfile, scored []model.ScoredQuestion) ([]model.AdviceResult, error) {
	results := make([]model.AdviceResult, len(scored))

	g, gCtx := errgroup.WithContext(ctx)
	if p.opts.MaxConcurrency > 0 {
		g.SetLimit(p.opts.MaxConcurrency)
	}

	for i, q := range scored {
		g.Go(func() error {
			results[i] = p.gen.Generate(gCtx, q, &bp)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: advise")
	}
	return results, nil
}

// Run extracts the profile, scores the questions, generates advice and
// renders the report.
func (p *Pipeline) Run(ctx context.Context, a *model.Assessment, tbl rules.Table) (string, error) {
	if a == nil {
		return "", eris.New("pipeline: nil assessment")
	}

	start := time.Now()
	bp := profile.Extract(a.ServiceOffering)
	scored := Prepare(a, tbl)

	results, err := p.Advise(ctx, bp, scored)
	if err != nil {
		return "", err
	}

	zap.L().Info("pipeline: advice generated",
		zap.Int("count", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return FormatReport(results), nil
}
