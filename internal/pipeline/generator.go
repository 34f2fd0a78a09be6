package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
	"github.com/sells-group/assessment-advisor/internal/store"
)

// Fixed texts substituted when a collaborator cannot help.
const (
	NoBaselineAdvice  = "No standard advice found."
	GenerationFailure = "Failed to generate advice due to an error: "
)

// Completion parameters for every advice call.
const (
	AdviceMaxTokens   int64   = 512
	AdviceTemperature float64 = 0.4
)

// Completer is the generation service: a system and user prompt in, a
// single reply out.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error)
}

// Generator produces personalized advice for one scored question.
type Generator struct {
	Store     store.AdviceLookup
	Completer Completer
}

// Generate never fails: a lookup miss or error uses NoBaselineAdvice and a
// completion error is rendered into the advice text.
func (g *Generator) Generate(ctx context.Context, q model.ScoredQuestion, p *model.BusinessProfile) model.AdviceResult {
	log := zap.L().With(
		zap.String("question_id", q.QuestionID),
		zap.String("category", string(q.Category)),
	)

	result := model.AdviceResult{
		PhaseMapping: q.Field.PhaseMapping,
		Category:     q.Field.Category,
		Question:     q.Field.Question,
	}

	baseline := g.baseline(ctx, log, q)

	profile := model.NewBusinessProfile()
	if p != nil {
		profile = *p
	}

	if g.Completer == nil {
		result.Advice = GenerationFailure + "no generation service configured"
		return result
	}

	advice, err := g.Completer.Complete(ctx,
		systemPrompt(profile),
		userPrompt(baseline, q.Field.Question, answerContext(q.Field), q.Category),
		AdviceMaxTokens, AdviceTemperature,
	)
	if err != nil {
		log.Warn("pipeline: advice generation failed", zap.Error(err))
		result.Advice = GenerationFailure + err.Error()
		return result
	}

	result.Advice = advice
	return result
}

func (g *Generator) baseline(ctx context.Context, log *zap.Logger, q model.ScoredQuestion) string {
	if g.Store == nil {
		return NoBaselineAdvice
	}
	text, found, err := g.Store.Lookup(ctx, q.QuestionID, q.Category)
	if err != nil {
		log.Warn("pipeline: baseline lookup failed", zap.Error(err))
		return NoBaselineAdvice
	}
	if !found {
		log.Debug("pipeline: no baseline advice")
		return NoBaselineAdvice
	}
	return text
}

// answerContext prefers the free-text elaboration over the short answer.
func answerContext(f model.AnswerField) string {
	if s := strings.TrimSpace(f.AdditionalText); s != "" {
		return s
	}
	if strings.TrimSpace(f.Answer) != "" {
		return f.Answer
	}
	return model.NotAvailable
}
